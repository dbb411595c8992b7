// Package kernel holds the long-lived dependencies of a yatube process and
// releases them in reverse order on shutdown.
package kernel

import (
	"context"
	"errors"
	"sync"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/cache"
	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/queue"
	"github.com/afivan20/yatube/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Kernel holds all application dependencies and provides type-safe access.
type Kernel struct {
	db        *gorm.DB
	logger    *zap.Logger
	store     cache.Store
	pageCache *cache.PageCache
	images    storage.ImageStore
	cleanup   *queue.ImageCleanup
	auth      *auth.Service
	feed      *feed.Service

	cleanupFuncs []namedCleanup
	mu           sync.RWMutex
}

type namedCleanup struct {
	name string
	fn   func(context.Context) error
}

// New creates a new empty kernel.
func New() *Kernel {
	return &Kernel{}
}

// SetDB registers the database connection
func (c *Kernel) SetDB(db *gorm.DB) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.db = db
	return c
}

// DB returns the database connection
func (c *Kernel) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// SetLogger registers the logger
func (c *Kernel) SetLogger(l *zap.Logger) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
	return c
}

// Logger returns the logger instance, falling back to the global one.
func (c *Kernel) Logger() *zap.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.logger == nil {
		return logger.Log
	}
	return c.logger
}

// SetCache registers the store behind the page cache.
func (c *Kernel) SetCache(store cache.Store, name string) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = store
	c.pageCache = cache.NewPageCache(store, name)
	return c
}

func (c *Kernel) CacheStore() cache.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

func (c *Kernel) PageCache() *cache.PageCache {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageCache
}

// SetImageStore registers where post images live.
func (c *Kernel) SetImageStore(images storage.ImageStore) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images = images
	return c
}

func (c *Kernel) Images() storage.ImageStore {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.images
}

// SetImageCleanup registers the queue that deletes replaced images.
func (c *Kernel) SetImageCleanup(q *queue.ImageCleanup) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanup = q
	return c
}

func (c *Kernel) ImageCleanup() *queue.ImageCleanup {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cleanup
}

// SetAuthService registers the session service
func (c *Kernel) SetAuthService(service *auth.Service) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = service
	return c
}

func (c *Kernel) Auth() *auth.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// SetFeedService registers the feed builder
func (c *Kernel) SetFeedService(service *feed.Service) *Kernel {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed = service
	return c
}

func (c *Kernel) Feed() *feed.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.feed
}

// OnCleanup registers fn to run at shutdown. Cleanups run last-in first-out.
func (c *Kernel) OnCleanup(name string, fn func(context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, namedCleanup{name: name, fn: fn})
}

// Cleanup runs every registered cleanup, even after a failure, and returns
// the joined errors.
func (c *Kernel) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	var errs []error
	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i].fn(ctx); err != nil {
			c.Logger().Error("Cleanup failed", zap.String("component", funcs[i].name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		c.Logger().Debug("Cleaned up", zap.String("component", funcs[i].name))
	}
	return errors.Join(errs...)
}
