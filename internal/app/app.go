// Package app assembles a kernel from configuration. Both the server and
// the admin CLI start here.
package app

import (
	"context"
	"fmt"

	"github.com/afivan20/yatube/internal/auth"
	"github.com/afivan20/yatube/internal/cache"
	"github.com/afivan20/yatube/internal/config"
	"github.com/afivan20/yatube/internal/database"
	"github.com/afivan20/yatube/internal/feed"
	"github.com/afivan20/yatube/internal/handlers"
	"github.com/afivan20/yatube/internal/kernel"
	"github.com/afivan20/yatube/internal/logger"
	"github.com/afivan20/yatube/internal/middleware"
	"github.com/afivan20/yatube/internal/queue"
	"github.com/afivan20/yatube/internal/repository"
	"github.com/afivan20/yatube/internal/storage"
	"github.com/afivan20/yatube/internal/telemetry"
	"github.com/afivan20/yatube/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IndexCacheName prefixes every index page cache key.
const IndexCacheName = "index_page"

// Repositories bundles the per-entity repositories.
type Repositories struct {
	Users    repository.UserRepository
	Groups   repository.GroupRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Follows  repository.FollowRepository
}

// OpenDatabase connects, migrates and registers the connection on k.
func OpenDatabase(cfg *config.Config, k *kernel.Kernel) error {
	db, err := database.Open(cfg.Database, cfg.Environment)
	if err != nil {
		return err
	}
	k.OnCleanup("database", func(context.Context) error { return database.Close(db) })

	if err := database.Migrate(db); err != nil {
		return err
	}
	k.SetDB(db)
	return nil
}

// Build opens every dependency the web server needs.
func Build(ctx context.Context, cfg *config.Config) (*kernel.Kernel, error) {
	k := kernel.New().SetLogger(logger.Log)

	tp, err := telemetry.InitTracer(ctx, cfg.Telemetry, cfg.Environment)
	if err != nil {
		return k, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	if tp != nil {
		k.OnCleanup("tracer", tp.Shutdown)
	}

	if err := OpenDatabase(cfg, k); err != nil {
		return k, err
	}

	store, err := openCache(cfg.Cache, k)
	if err != nil {
		return k, err
	}
	k.SetCache(store, IndexCacheName)

	images, err := openImageStore(ctx, cfg.Media)
	if err != nil {
		return k, err
	}
	k.SetImageStore(images)

	cleanup := queue.NewImageCleanup(images, 0)
	cleanup.Start()
	k.OnCleanup("image cleanup queue", cleanup.Stop)
	k.SetImageCleanup(cleanup)

	if err := validateServices(ctx, cfg, k); err != nil {
		return k, err
	}

	repos := NewRepositories(k)
	k.SetAuthService(auth.NewService(repos.Users, []byte(cfg.SecretKey)))
	k.SetFeedService(feed.NewService(feed.Deps{
		Posts:    repos.Posts,
		Groups:   repos.Groups,
		Users:    repos.Users,
		Follows:  repos.Follows,
		Comments: repos.Comments,
		PageSize: cfg.PageSize,
	}))
	return k, nil
}

func NewRepositories(k *kernel.Kernel) Repositories {
	db := k.DB()
	return Repositories{
		Users:    repository.NewUserRepository(db),
		Groups:   repository.NewGroupRepository(db),
		Posts:    repository.NewPostRepository(db),
		Comments: repository.NewCommentRepository(db),
		Follows:  repository.NewFollowRepository(db),
	}
}

// Router builds the HTTP handler tree over k.
func Router(cfg *config.Config, k *kernel.Kernel) (*gin.Engine, error) {
	repos := NewRepositories(k)
	deps := handlers.Deps{
		DB:       k.DB(),
		Posts:    repos.Posts,
		Groups:   repos.Groups,
		Users:    repos.Users,
		Comments: repos.Comments,
		Follows:  repos.Follows,
		Feed:     k.Feed(),
		Auth:     k.Auth(),
		Images:   k.Images(),
	}
	if q := k.ImageCleanup(); q != nil {
		deps.Cleanup = q
	}
	h := handlers.NewHandlers(deps)

	opts := handlers.RouterOptions{
		PageCache:     k.PageCache(),
		IndexTTL:      cfg.IndexCacheTTL,
		CORSOrigins:   cfg.CORSOrigins,
		Middleware:    middleware.TracingMiddleware(telemetry.ServiceName),
		AuthRateLimit: middleware.RateLimitAuth(),
	}
	if local, ok := k.Images().(*storage.LocalStore); ok {
		opts.MediaRoot = local.Root()
	}
	return handlers.NewRouter(h, opts)
}

func validateServices(ctx context.Context, cfg *config.Config, k *kernel.Kernel) error {
	sv := validation.NewServiceValidator(cfg.RequiredServices)
	sv.Register("database", func(ctx context.Context) error {
		return database.Health(ctx, k.DB())
	})
	if redisStore, ok := k.CacheStore().(*cache.RedisStore); ok {
		sv.Register("redis", redisStore.Ping)
	}
	if s3Store, ok := k.Images().(*storage.S3Store); ok {
		sv.Register("s3", s3Store.CheckBucketAccess)
	}
	return sv.ValidateServices(ctx)
}

func openCache(cfg config.CacheConfig, k *kernel.Kernel) (cache.Store, error) {
	switch cfg.Backend {
	case "redis":
		store := cache.NewRedisStore(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		k.OnCleanup("redis", func(context.Context) error { return store.Close() })
		logger.Log.Info("Page cache backed by redis", zap.String("addr", cfg.RedisAddr()))
		return store, nil
	case "", "memory":
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

func openImageStore(ctx context.Context, cfg config.MediaConfig) (storage.ImageStore, error) {
	switch cfg.Backend {
	case "s3":
		store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return store, nil
	case "", "local":
		store, err := storage.NewLocalStore(cfg.Root, cfg.URL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported media backend %q", cfg.Backend)
	}
}
