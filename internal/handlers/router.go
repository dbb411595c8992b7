package handlers

import (
	"net/http"
	"time"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/cache"
	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/middleware"
	"github.com/afivan20/yatube/internal/web"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configure NewRouter.
type RouterOptions struct {
	// PageCache backs the index page. Nil disables caching.
	PageCache *cache.PageCache
	IndexTTL  time.Duration
	// MediaRoot is served under /media/ when set.
	MediaRoot   string
	CORSOrigins []string
	// Middleware runs before routing, after request id and logging.
	Middleware []gin.HandlerFunc
	// AuthRateLimit guards the login and signup forms. Nil disables it.
	AuthRateLimit gin.HandlerFunc
}

// NewRouter wires every route onto a new gin engine.
func NewRouter(h *Handlers, opts RouterOptions) (*gin.Engine, error) {
	tmpl, err := web.Templates(h.images.URL)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gin.CustomRecovery(h.recover))
	r.Use(opts.Middleware...)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/media/"})))
	r.Use(h.auth.CurrentUser())
	r.Use(feed.Middleware(h.comments))

	r.NoRoute(h.NotFound)

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.MediaRoot != "" {
		r.Static("/media", opts.MediaRoot)
	}

	index := []gin.HandlerFunc{h.Index}
	if opts.PageCache != nil {
		index = append([]gin.HandlerFunc{middleware.PageCacheMiddleware(opts.PageCache, opts.IndexTTL)}, index...)
	}
	r.GET("/", index...)
	r.GET("/group/:slug/", h.GroupPosts)
	r.GET("/profile/:username/", h.Profile)
	r.GET("/posts/:id/", h.PostDetail)

	protected := r.Group("/", auth.RequireAuth())
	{
		protected.GET("/create/", h.PostCreate)
		protected.POST("/create/", h.PostCreate)
		protected.GET("/posts/:id/edit/", h.PostEdit)
		protected.POST("/posts/:id/edit/", h.PostEdit)
		protected.GET("/posts/:id/comment", h.AddComment)
		protected.POST("/posts/:id/comment", h.AddComment)
		protected.GET("/follow/", h.FollowIndex)
		protected.GET("/profile/:username/follow", h.ProfileFollow)
		protected.GET("/profile/:username/unfollow", h.ProfileUnfollow)
	}

	about := r.Group("/about")
	{
		about.GET("/author/", h.AboutAuthor)
		about.GET("/tech/", h.AboutTech)
	}

	authGroup := r.Group("/auth")
	if opts.AuthRateLimit != nil {
		authGroup.Use(opts.AuthRateLimit)
	}
	{
		authGroup.GET("/signup/", h.Signup)
		authGroup.POST("/signup/", h.Signup)
		authGroup.GET("/login/", h.Login)
		authGroup.POST("/login/", h.Login)
		authGroup.GET("/logout/", h.Logout)
	}

	api := r.Group("/api/v1", cors.New(corsConfig(opts.CORSOrigins)))
	{
		api.GET("/posts", h.APIListPosts)
		api.GET("/posts/:id", h.APIGetPost)
		api.GET("/groups/:slug/posts", h.APIGroupPosts)
	}

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	config.AllowOrigins = origins
	return config
}

func (h *Handlers) recover(c *gin.Context, recovered interface{}) {
	logger.Log.Error("Panic recovered",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
		logger.WithRequestID(middleware.RequestID(c)),
	)
	h.render(c, http.StatusInternalServerError, "core/500.html", gin.H{"Title": "Ошибка"})
	c.Abort()
}
