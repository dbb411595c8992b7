package util

import (
	stderrors "errors"

	"github.com/afivan20/yatube/internal/repository"
	"github.com/gin-gonic/gin"
)

// HandleRepoError writes a JSON error for a repository failure.
// Returns true if a response was sent.
func HandleRepoError(c *gin.Context, err error, resourceName string) bool {
	if err == nil {
		return false
	}

	if stderrors.Is(err, repository.ErrNotFound) {
		RespondNotFound(c, resourceName)
		return true
	}

	RespondInternalError(c, "failed to fetch "+resourceName)
	return true
}
