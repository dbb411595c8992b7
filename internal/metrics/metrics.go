package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Cache
	CacheHitsTotal         *prometheus.CounterVec
	CacheMissesTotal       *prometheus.CounterVec
	CacheOperationsTotal   *prometheus.CounterVec
	CacheOperationDuration *prometheus.HistogramVec

	// Feeds
	FeedGenerationTime *prometheus.HistogramVec

	// Database, labelled by yatube table
	DBQueriesTotal  *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	FeedPageQueries prometheus.Counter

	// Content
	PostsCreatedTotal    prometheus.Counter
	PostsEditedTotal     prometheus.Counter
	CommentsCreatedTotal prometheus.Counter
	FollowsTotal         *prometheus.CounterVec

	// Background jobs
	ImageCleanupsTotal *prometheus.CounterVec

	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "yatube_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "route", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "yatube_http_response_size_bytes",
					Help:    "HTTP response body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 6),
				},
				[]string{"method", "route"},
			),
			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_cache_hits_total",
					Help: "Total number of cache hits",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_cache_misses_total",
					Help: "Total number of cache misses",
				},
				[]string{"cache"},
			),
			CacheOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_cache_operations_total",
					Help: "Total number of cache store operations",
				},
				[]string{"operation", "cache", "status"},
			),
			CacheOperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "yatube_cache_operation_duration_seconds",
					Help:    "Cache store operation latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"operation", "cache"},
			),
			FeedGenerationTime: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "yatube_feed_generation_seconds",
					Help:    "Time to assemble one feed page",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
				},
				[]string{"feed"},
			),
			DBQueriesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_db_queries_total",
					Help: "Database statements by table, operation and status",
				},
				[]string{"table", "operation", "status"},
			),
			DBQueryDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "yatube_db_query_duration_seconds",
					Help:    "Database statement latency in seconds",
					Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .5},
				},
				[]string{"table", "operation"},
			),
			FeedPageQueries: promauto.NewCounter(prometheus.CounterOpts{
				Name: "yatube_feed_page_queries_total",
				Help: "Paged SELECTs over posts_post",
			}),
			PostsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "yatube_posts_created_total",
				Help: "Posts created",
			}),
			PostsEditedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "yatube_posts_edited_total",
				Help: "Posts edited by their authors",
			}),
			CommentsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "yatube_comments_created_total",
				Help: "Comments created",
			}),
			FollowsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_follow_actions_total",
					Help: "Follow and unfollow actions",
				},
				[]string{"action"},
			),
			ImageCleanupsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_image_cleanups_total",
					Help: "Replaced post images removed from storage",
				},
				[]string{"status"},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "yatube_errors_total",
					Help: "Errors by type and route",
				},
				[]string{"type", "route"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration, size int) {
	m := Get()
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(method, route, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route, statusStr).Observe(duration.Seconds())
	if size > 0 {
		m.HTTPResponseSize.WithLabelValues(method, route).Observe(float64(size))
	}
}

func RecordCacheHit(cacheName string) {
	Get().CacheHitsTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheMiss(cacheName string) {
	Get().CacheMissesTotal.WithLabelValues(cacheName).Inc()
}

func RecordCacheOperation(operation, cacheName string, duration time.Duration, err error) {
	m := Get()
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CacheOperationsTotal.WithLabelValues(operation, cacheName, status).Inc()
	m.CacheOperationDuration.WithLabelValues(operation, cacheName).Observe(duration.Seconds())
}

func RecordFeedGeneration(feed string, duration time.Duration) {
	Get().FeedGenerationTime.WithLabelValues(feed).Observe(duration.Seconds())
}

// RecordDBQuery counts one statement against a table. Feed pages are also
// counted on their own so list traffic can be told apart from detail lookups.
func RecordDBQuery(table, operation string, feedPage bool, duration time.Duration, err error) {
	m := Get()
	status := "success"
	if err != nil {
		status = "error"
	}
	m.DBQueriesTotal.WithLabelValues(table, operation, status).Inc()
	m.DBQueryDuration.WithLabelValues(table, operation).Observe(duration.Seconds())
	if feedPage {
		m.FeedPageQueries.Inc()
	}
}

func RecordPostCreated() {
	Get().PostsCreatedTotal.Inc()
}

func RecordPostEdited() {
	Get().PostsEditedTotal.Inc()
}

func RecordCommentCreated() {
	Get().CommentsCreatedTotal.Inc()
}

// RecordFollow counts "follow" or "unfollow" actions.
func RecordFollow(action string) {
	Get().FollowsTotal.WithLabelValues(action).Inc()
}

// RecordImageCleanup counts background image deletions by outcome.
func RecordImageCleanup(err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	Get().ImageCleanupsTotal.WithLabelValues(status).Inc()
}

func RecordError(errorType, route string) {
	Get().ErrorsTotal.WithLabelValues(errorType, route).Inc()
}
