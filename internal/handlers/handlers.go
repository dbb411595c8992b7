// Package handlers serves the HTML pages and the read-only JSON API.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/forms"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/metrics"
	"github.com/afivan20/yatube/internal/middleware"
	"github.com/afivan20/yatube/internal/paginator"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/afivan20/yatube/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	db       *gorm.DB
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	follows  repository.FollowRepository
	feed     *feed.Service
	auth     *auth.Service
	forms    *forms.Validator
	images   storage.ImageStore
	cleanup  ImageCleanup
}

// ImageCleanup deletes replaced images in the background.
type ImageCleanup interface {
	Submit(key string) error
}

// Deps are the collaborators a Handlers needs.
type Deps struct {
	DB       *gorm.DB
	Posts    repository.PostRepository
	Groups   repository.GroupRepository
	Users    repository.UserRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
	Feed     *feed.Service
	Auth     *auth.Service
	Images   storage.ImageStore
	// Cleanup is optional; without it replaced images are deleted inline.
	Cleanup ImageCleanup
}

func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		db:       deps.DB,
		posts:    deps.Posts,
		groups:   deps.Groups,
		users:    deps.Users,
		comments: deps.Comments,
		follows:  deps.Follows,
		feed:     deps.Feed,
		auth:     deps.Auth,
		forms:    forms.NewValidator(deps.Groups),
		images:   deps.Images,
		cleanup:  deps.Cleanup,
	}
}

// render adds the values every page needs and writes the template.
func (h *Handlers) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["User"] = auth.UserFrom(c)
	data["Year"] = time.Now().Year()
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = forms.Errors{}
	}
	c.HTML(status, name, data)
}

// NotFound renders the 404 page.
func (h *Handlers) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "core/404.html", gin.H{
		"Title": "Страница не найдена",
		"Path":  c.Request.URL.Path,
	})
}

// fail maps err to the 404 page or, for anything unexpected, the 500 page.
func (h *Handlers) fail(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		h.NotFound(c)
		return
	}

	logger.Log.Error("Request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		logger.WithRequestID(middleware.RequestID(c)),
	)
	metrics.RecordError("handler", c.FullPath())
	_ = c.Error(err)
	h.render(c, http.StatusInternalServerError, "core/500.html", gin.H{"Title": "Ошибка"})
}

func pageNumber(c *gin.Context) int {
	return paginator.ParseNumber(c.Query("page"))
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}

func postURL(id uint) string {
	return "/posts/" + uintString(id) + "/"
}
