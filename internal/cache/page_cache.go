package cache

import (
	"context"
	"errors"
	"time"

	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/metrics"
	"go.uber.org/zap"
)

// ErrUncacheable is returned by a compute function whose result must be
// served but not stored. GetOrCompute passes it back to the caller.
var ErrUncacheable = errors.New("response not cacheable")

// PageCache memoises rendered pages in a Store.
//
// A stored page is served unchanged until its TTL elapses, even if the data
// it was rendered from has changed since. Store failures degrade to a miss.
type PageCache struct {
	store Store
	name  string
}

func NewPageCache(store Store, name string) *PageCache {
	return &PageCache{store: store, name: name}
}

func (p *PageCache) Name() string {
	return p.name
}

// GetOrCompute returns the stored value for key, or runs compute and stores
// its result for ttl. hit reports whether the value came from the store.
func (p *PageCache) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) ([]byte, error)) (value []byte, hit bool, err error) {
	start := time.Now()
	value, ok, getErr := p.store.Get(ctx, key)
	metrics.RecordCacheOperation("get", p.name, time.Since(start), getErr)

	if getErr != nil {
		logger.Log.Warn("Page cache read failed, rendering",
			logger.WithCacheKey(key),
			zap.Error(getErr),
		)
	} else if ok {
		metrics.RecordCacheHit(p.name)
		return value, true, nil
	}

	metrics.RecordCacheMiss(p.name)

	value, err = compute(ctx)
	if err != nil {
		return value, false, err
	}

	start = time.Now()
	setErr := p.store.Set(ctx, key, value, ttl)
	metrics.RecordCacheOperation("set", p.name, time.Since(start), setErr)
	if setErr != nil {
		logger.Log.Warn("Page cache write failed",
			logger.WithCacheKey(key),
			zap.Error(setErr),
		)
	}
	return value, false, nil
}
