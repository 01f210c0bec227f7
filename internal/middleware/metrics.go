package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/goldrate/internal/metrics"
)

// Metrics counts every request in metrics.HTTPRequests. Routes are labelled
// by their template (c.FullPath) so path parameters do not blow up the
// label cardinality; unmatched paths share the "unmatched" label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}
