package feed

import (
	"context"
	"strconv"
	"time"

	"github.com/afivan20/yatube/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const loadersKey = contextKey("feed_loaders")

// Loaders batches per-post lookups made while rendering one request.
type Loaders struct {
	CommentCountByPostID *dataloader.Loader
}

// NewLoaders builds request-scoped loaders over comments.
func NewLoaders(comments repository.CommentRepository) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := make([]uint, 0, len(keys))
		for _, key := range keys {
			id, err := strconv.ParseUint(key.String(), 10, 64)
			if err == nil {
				ids = append(ids, uint(id))
			}
		}

		counts, err := comments.CountCommentsByPostIDs(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		for i, key := range keys {
			id, _ := strconv.ParseUint(key.String(), 10, 64)
			results[i] = &dataloader.Result{Data: counts[uint(id)]}
		}
		return results
	}

	return &Loaders{
		CommentCountByPostID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// Middleware puts fresh loaders on every request context.
func Middleware(comments repository.CommentRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithLoaders(c.Request.Context(), NewLoaders(comments))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// LoadersFrom returns the request's loaders, or nil outside a request.
func LoadersFrom(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(loadersKey).(*Loaders)
	return loaders
}

func postKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
