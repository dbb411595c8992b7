package handlers

import (
	"errors"
	"net/http"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/forms"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/gin-gonic/gin"
)

const (
	msgUsernameTaken      = "Пользователь с таким именем уже существует."
	msgWeakPassword       = "Пароль должен содержать не менее 8 символов."
	msgInvalidCredentials = "Пожалуйста, введите правильные имя пользователя и пароль. Оба поля могут быть чувствительны к регистру."
)

// Signup registers an account and signs the new user in.
// GET, POST /auth/signup/
func (h *Handlers) Signup(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "users/signup.html", gin.H{
			"Title": "Регистрация",
			"Form":  auth.SignupRequest{},
		})
		return
	}

	req := auth.SignupRequest{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Password:  c.PostForm("password"),
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		errs := forms.Errors{}
		switch {
		case errors.Is(err, auth.ErrUsernameExists):
			errs.Add("username", msgUsernameTaken)
		case errors.Is(err, auth.ErrWeakPassword):
			errs.Add("password", msgWeakPassword)
		case errors.Is(err, repository.ErrInvalidInput):
			errs.Add("username", forms.MsgRequired)
		default:
			h.fail(c, err)
			return
		}
		req.Password = ""
		h.render(c, http.StatusOK, "users/signup.html", gin.H{
			"Title":  "Регистрация",
			"Form":   req,
			"Errors": errs,
		})
		return
	}

	if err := h.auth.StartSession(c, user); err != nil {
		h.fail(c, err)
		return
	}
	logger.Log.Info("User signed up", logger.WithUserID(user.ID), logger.WithUsername(user.Username))
	redirect(c, "/")
}

// Login checks credentials and starts a session.
// GET, POST /auth/login/
func (h *Handlers) Login(c *gin.Context) {
	next := auth.SafeNext(c.Query("next"), "")
	if c.Request.Method != http.MethodPost {
		h.render(c, http.StatusOK, "users/login.html", gin.H{
			"Title":    "Войти",
			"Next":     next,
			"Username": "",
		})
		return
	}

	username := c.PostForm("username")
	user, err := h.auth.Authenticate(c.Request.Context(), username, c.PostForm("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			h.fail(c, err)
			return
		}
		errs := forms.Errors{}
		errs.Add("__all__", msgInvalidCredentials)
		h.render(c, http.StatusOK, "users/login.html", gin.H{
			"Title":    "Войти",
			"Next":     auth.SafeNext(c.PostForm("next"), ""),
			"Username": username,
			"Errors":   errs,
		})
		return
	}

	if err := h.auth.StartSession(c, user); err != nil {
		h.fail(c, err)
		return
	}
	redirect(c, auth.SafeNext(c.PostForm("next"), "/"))
}

// Logout ends the session.
// GET /auth/logout/
func (h *Handlers) Logout(c *gin.Context) {
	auth.ClearSession(c)
	c.Set("user", nil)
	h.render(c, http.StatusOK, "users/logged_out.html", gin.H{"Title": "Вы вышли"})
}
