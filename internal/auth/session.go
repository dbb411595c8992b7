package auth

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// CookieName carries the signed session token.
	CookieName = "yatube_session"
	// LoginURL is where anonymous users are sent for protected pages.
	LoginURL = "/auth/login/"

	contextUserKey   = "user"
	contextUserIDKey = "user_id"
)

// CurrentUser loads the user from the session cookie, if any. Invalid or
// expired cookies are cleared and the request continues anonymously.
func (s *Service) CurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		user, err := s.ValidateToken(c.Request.Context(), token)
		if err != nil {
			logger.Log.Debug("Dropping invalid session", zap.Error(err))
			ClearSession(c)
			c.Next()
			return
		}

		SetUser(c, user)
		c.Next()
	}
}

// RequireAuth redirects anonymous users to the login page with ?next= set to
// the requested path.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserFrom(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginRedirect builds the login URL for next. Slashes stay unescaped.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next when it is a local path, fallback otherwise.
// Browsers drop tabs and newlines from URLs, so control characters are
// rejected before the scheme and host checks.
func SafeNext(next, fallback string) string {
	if next == "" || strings.Contains(next, "\\") {
		return fallback
	}
	for i := 0; i < len(next); i++ {
		if next[i] < 0x20 || next[i] == 0x7f {
			return fallback
		}
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return next
}

// StartSession issues a token for user and sets the session cookie.
func (s *Service) StartSession(c *gin.Context, user *models.User) error {
	token, _, err := s.IssueToken(user)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", c.Request.TLS != nil, true)
	SetUser(c, user)
	return nil
}

// ClearSession expires the session cookie.
func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}

// SetUser stores user on the request context.
func SetUser(c *gin.Context, user *models.User) {
	c.Set(contextUserKey, user)
	c.Set(contextUserIDKey, user.ID)
}

// UserFrom returns the signed-in user, or nil for anonymous requests.
func UserFrom(c *gin.Context) *models.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
