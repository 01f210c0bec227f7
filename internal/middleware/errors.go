package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/goldrate/internal/domain/dto"
	"github.com/guttosm/goldrate/internal/logger"
)

// ErrorHandler turns errors attached with c.Error into a 500 JSON response
// when the handler did not write one itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}
	last := c.Errors.Last()
	rid, _ := c.Get(RequestIDKey)
	logger.L().Error().
		Err(last.Err).
		Str("request_id", toString(rid)).
		Str("path", c.Request.URL.Path).
		Msg("request failed")

	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("internal server error", last.Err))
	}
}

// AbortWithError stops the chain and writes status with a dto.ErrorResponse.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(message, err))
}
