package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/afivan20/yatube/internal/database"
	"github.com/afivan20/yatube/internal/errors"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/util"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Health reports whether the database answers.
// GET /health
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Health(ctx, h.db); err != nil {
		logger.Log.Warn("Health check failed", zap.Error(err))
		util.RespondWithAPIError(c, errors.ServiceUnavailable("database").WithDetails(err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "yatube",
	})
}
