package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingMiddleware returns the otelgin handler followed by one that adds
// request attributes while the server span is still open.
func TracingMiddleware(serviceName string) []gin.HandlerFunc {
	return []gin.HandlerFunc{otelgin.Middleware(serviceName), enrichSpan}
}

func enrichSpan(c *gin.Context) {
	c.Next()

	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}

	if userID, ok := c.Get("user_id"); ok {
		if id, ok := userID.(uint); ok {
			span.SetAttributes(attribute.Int64("user.id", int64(id)))
		}
	}
	if requestID := RequestID(c); requestID != "" {
		span.SetAttributes(attribute.String("request.id", requestID))
	}
	if page := c.Query("page"); page != "" {
		span.SetAttributes(attribute.String("feed.page", page))
	}
	if cacheStatus := c.Writer.Header().Get(CacheHeader); cacheStatus != "" {
		span.SetAttributes(attribute.String("cache.status", cacheStatus))
	}

	for _, ginErr := range c.Errors {
		if ginErr.Err != nil {
			span.RecordError(ginErr.Err)
			span.SetStatus(codes.Error, ginErr.Error())
		}
	}
}
