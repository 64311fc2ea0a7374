package store

import (
	"context"
	"time"

	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/otel"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Instrumented wraps a task.Store with a span, a duration observation and a
// debug log line per operation.
type Instrumented struct {
	next    task.Store
	driver  string
	metrics *prometheus.Metrics
	tracer  trace.Tracer
	logger  core.Logger
}

// Instrument wraps next. A nil metrics uses the process-wide metrics.
func Instrument(next task.Store, driver string, metrics *prometheus.Metrics, logger core.Logger) *Instrumented {
	if metrics == nil {
		metrics = prometheus.GetMetrics()
	}
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	return &Instrumented{
		next:    next,
		driver:  driver,
		metrics: metrics,
		tracer:  otel.Tracer("github.com/fluxorio/todolist/internal/store"),
		logger:  logger,
	}
}

// Unwrap returns the wrapped store
func (s *Instrumented) Unwrap() task.Store {
	return s.next
}

func (s *Instrumented) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	attrs = append(attrs, attribute.String("db.system", s.driver))
	ctx, span := s.tracer.Start(ctx, "store."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))

	return ctx, func(err error) {
		elapsed := time.Since(start)
		s.metrics.RecordStoreOperation(s.driver, op, elapsed, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		fields := map[string]interface{}{"driver": s.driver, "op": op, "dur": elapsed}
		if id := core.GetRequestID(ctx); id != "" {
			fields["request_id"] = id
		}
		if err != nil {
			s.logger.WithFields(fields).Errorf("store operation failed: %v", err)
			return
		}
		s.logger.WithFields(fields).Debug("store operation")
	}
}

func (s *Instrumented) Create(ctx context.Context, d task.Draft) (*task.Task, error) {
	ctx, done := s.observe(ctx, "create")
	t, err := s.next.Create(ctx, d)
	done(err)
	return t, err
}

func (s *Instrumented) List(ctx context.Context) ([]task.Task, error) {
	ctx, done := s.observe(ctx, "list")
	tasks, err := s.next.List(ctx)
	done(err)
	return tasks, err
}

func (s *Instrumented) Update(ctx context.Context, id string, p task.Patch) (*task.Task, error) {
	ctx, done := s.observe(ctx, "update", attribute.String("task.id", id))
	t, err := s.next.Update(ctx, id, p)
	done(err)
	return t, err
}

func (s *Instrumented) Delete(ctx context.Context, id string) error {
	ctx, done := s.observe(ctx, "delete", attribute.String("task.id", id))
	err := s.next.Delete(ctx, id)
	done(err)
	return err
}

func (s *Instrumented) Ping(ctx context.Context) error {
	err := s.next.Ping(ctx)
	s.metrics.SetStoreUp(s.driver, err == nil)
	return err
}

func (s *Instrumented) Close() error {
	return s.next.Close()
}
