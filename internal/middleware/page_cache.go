package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/afivan20/yatube/internal/cache"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheHeader reports HIT or MISS for cached routes.
const CacheHeader = "X-Cache"

const htmlContentType = "text/html; charset=utf-8"

// PageCacheMiddleware serves GET responses from pc for ttl. Only 200
// responses are stored. The key covers the path, the query string and the
// signed-in user, so one user's navigation bar is never shown to another.
func PageCacheMiddleware(pc *cache.PageCache, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || ttl <= 0 {
			c.Next()
			return
		}

		key := pageCacheKey(pc.Name(), c)
		rendered := false

		body, hit, err := pc.GetOrCompute(c.Request.Context(), key, ttl, func(context.Context) ([]byte, error) {
			rendered = true
			c.Header(CacheHeader, "MISS")

			writer := &cachedResponseWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
			c.Writer = writer
			c.Next()
			c.Writer = writer.ResponseWriter

			if writer.Status() != http.StatusOK || len(c.Errors) > 0 {
				return nil, cache.ErrUncacheable
			}
			return writer.body.Bytes(), nil
		})

		switch {
		case hit:
			c.Header(CacheHeader, "HIT")
			c.Data(http.StatusOK, htmlContentType, body)
			c.Abort()
		case err != nil && !errors.Is(err, cache.ErrUncacheable):
			logger.Log.Warn("Page cache failed", logger.WithCacheKey(key), zap.Error(err))
		}

		if !hit && !rendered {
			c.Next()
		}
	}
}

func pageCacheKey(name string, c *gin.Context) string {
	key := fmt.Sprintf("%s:%s", name, c.Request.URL.Path)
	if query := c.Request.URL.RawQuery; query != "" {
		key += "?" + query
	}
	if userID, ok := c.Get("user_id"); ok {
		key += fmt.Sprintf(":user=%v", userID)
	} else {
		key += ":anonymous"
	}
	return key
}

// cachedResponseWriter copies the body it writes so it can be stored.
type cachedResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *cachedResponseWriter) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *cachedResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
