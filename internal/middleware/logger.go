package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/goldrate/internal/logger"
)

// RequestLogger is a Gin middleware that logs method, path, query, status,
// latency and request ID (if RequestID() ran first).
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	{"level":"info","request_id":"123e...","method":"GET","path":"/api/v1/quotes","query":"name=London","status":200,"latency_ms":15,"message":"http_request"}
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		rid, _ := c.Get(RequestIDKey)
		status := c.Writer.Status()

		ev := logger.L().Info()
		if status >= 500 {
			ev = logger.L().Error()
		}
		ev.Str("request_id", toString(rid)).
			Str("method", method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
