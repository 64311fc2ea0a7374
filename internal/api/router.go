package api

import (
	"context"

	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/core/failfast"
	"github.com/fluxorio/todolist/pkg/observability/otel"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
	"github.com/fluxorio/todolist/pkg/web"
	"github.com/fluxorio/todolist/pkg/web/health"
	"github.com/fluxorio/todolist/pkg/web/middleware"
	"github.com/fluxorio/todolist/pkg/web/middleware/security"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ServiceName identifies the API in health reports and traces
const ServiceName = "todo-api"

// Options configures the router around the todo handlers
type Options struct {
	// Prefix is the mount point of /todos, default "/api"
	Prefix string

	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string

	// ExposePanics includes panic values in 500 responses
	ExposePanics bool

	Logger   core.Logger
	Metrics  *prometheus.Metrics
	Gatherer prom.Gatherer
}

// NewRouter builds the full HTTP surface: todo routes, health, metrics and
// the middleware chain.
func NewRouter(store task.Store, opts Options) *web.FastRouter {
	failfast.NotNil(store, "store")
	if opts.Prefix == "" {
		opts.Prefix = "/api"
	}
	if opts.Logger == nil {
		opts.Logger = core.NewDefaultLogger()
	}

	cors := security.DefaultCORSConfig()
	if len(opts.AllowedOrigins) > 0 {
		cors.AllowedOrigins = opts.AllowedOrigins
	}

	router := web.NewFastRouter()
	router.Use(
		otel.HTTPMiddleware(),
		prometheus.FastHTTPMetricsMiddleware(opts.Metrics),
		middleware.RequestLogging(opts.Logger),
		middleware.Recovery(middleware.RecoveryConfig{Logger: opts.Logger, StackTrace: opts.ExposePanics}),
		security.CORS(cors),
		security.Headers(security.DefaultHeadersConfig()),
	)

	Register(router, opts.Prefix, store)

	registry := health.NewRegistry()
	registry.Register("store", func(ctx context.Context) error { return store.Ping(ctx) })
	health.Register(router, "/health", health.NewAggregator(registry, ServiceName))

	prometheus.RegisterMetricsEndpoint(router, "/metrics", opts.Gatherer)
	return router
}
