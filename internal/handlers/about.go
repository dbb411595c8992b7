package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /about/author/
func (h *Handlers) AboutAuthor(c *gin.Context) {
	h.render(c, http.StatusOK, "about/author.html", gin.H{"Title": "Об авторе"})
}

// GET /about/tech/
func (h *Handlers) AboutTech(c *gin.Context) {
	h.render(c, http.StatusOK, "about/tech.html", gin.H{"Title": "Технологии"})
}
