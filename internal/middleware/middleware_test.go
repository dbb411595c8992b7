package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/afivan20/yatube/internal/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func serve(r *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := serve(r, http.MethodGet, "/")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestGinLoggerMiddlewarePassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(GinLoggerMiddleware(), MetricsMiddleware())
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/boom", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ok").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/boom").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/missing").Code)
}

func TestTracingMiddlewareWithoutProvider(t *testing.T) {
	r := gin.New()
	r.Use(TracingMiddleware("yatube-test")...)
	r.GET("/", func(c *gin.Context) {
		c.Set("user_id", uint(7))
		c.String(http.StatusOK, "ok")
	})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/").Code)
}

func newCachedRouter(t *testing.T, ttl time.Duration) (*gin.Engine, *fakeClock, *atomic.Int32) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := cache.NewMemoryStoreWithClock(clock.Now)
	pc := cache.NewPageCache(store, "index_page")

	var renders atomic.Int32
	r := gin.New()
	r.GET("/", PageCacheMiddleware(pc, ttl), func(c *gin.Context) {
		n := renders.Add(1)
		c.Data(http.StatusOK, htmlContentType, []byte("render "+strconv.Itoa(int(n))))
	})
	r.GET("/fail", PageCacheMiddleware(pc, ttl), func(c *gin.Context) {
		renders.Add(1)
		c.String(http.StatusInternalServerError, "nope")
	})
	return r, clock, &renders
}

func TestPageCacheMiddlewareServesStaleUntilExpiry(t *testing.T) {
	r, clock, renders := newCachedRouter(t, 20*time.Second)

	first := serve(r, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(CacheHeader))
	assert.Equal(t, "render 1", first.Body.String())

	clock.Advance(19 * time.Second)
	second := serve(r, http.MethodGet, "/")
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
	assert.Equal(t, int32(1), renders.Load())

	clock.Advance(time.Second)
	third := serve(r, http.MethodGet, "/")
	assert.Equal(t, "MISS", third.Header().Get(CacheHeader))
	assert.Equal(t, "render 2", third.Body.String())
}

func TestPageCacheMiddlewareKeysByQuery(t *testing.T) {
	r, _, renders := newCachedRouter(t, 20*time.Second)

	serve(r, http.MethodGet, "/")
	w := serve(r, http.MethodGet, "/?page=2")
	assert.Equal(t, "MISS", w.Header().Get(CacheHeader))
	assert.Equal(t, int32(2), renders.Load())
}

func TestPageCacheMiddlewareSkipsErrors(t *testing.T) {
	r, _, renders := newCachedRouter(t, 20*time.Second)

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodGet, "/fail")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "nope", w.Body.String())
	}
	assert.Equal(t, int32(2), renders.Load())
}

func TestPageCacheKeySeparatesUsers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=3", nil)
	anonymous := pageCacheKey("index_page", c)

	c.Set("user_id", uint(4))
	assert.Equal(t, "index_page:/?page=3:anonymous", anonymous)
	assert.Equal(t, "index_page:/?page=3:user=4", pageCacheKey("index_page", c))
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("down")
}
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("down")
}

func TestPageCacheMiddlewareRendersWhenStoreIsDown(t *testing.T) {
	pc := cache.NewPageCache(brokenStore{}, "index_page")
	r := gin.New()
	r.GET("/", PageCacheMiddleware(pc, time.Minute), func(c *gin.Context) {
		c.String(http.StatusOK, "fresh")
	})

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fresh", w.Body.String())
}

func TestRateLimiterBlocksAfterLimit(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimitConfig{
		Limit:   2,
		Window:  time.Minute,
		KeyFunc: func(*gin.Context) string { return "fixed" },
	})
	rl.now = clock.Now

	r := gin.New()
	r.Use(rl.Middleware())
	r.Any("/auth/login/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login/").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login/").Code)

	blocked := serve(r, http.MethodPost, "/auth/login/")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/auth/login/").Code, "GET is never limited")

	clock.Advance(31 * time.Second)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodPost, "/auth/login/").Code)
}

func TestRateLimiterSweepsIdleBuckets(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(RateLimitConfig{Limit: 1, Window: time.Minute})
	rl.now = clock.Now

	allowed, _ := rl.Allow("a")
	require.True(t, allowed)
	clock.Advance(2 * time.Minute)
	allowed, _ = rl.Allow("b")
	require.True(t, allowed)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "a")
	assert.Contains(t, rl.buckets, "b")
}
