package middleware

import (
	"time"

	"github.com/afivan20/yatube/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request counts, latency and response size per
// route template, so path parameters do not explode label cardinality.
func MetricsMiddleware() gin.HandlerFunc {
	metrics.Initialize()

	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(startTime), c.Writer.Size())

		if c.Writer.Status() >= 500 {
			metrics.RecordError("server_error", route)
		}
	}
}
