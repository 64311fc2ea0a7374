package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/fluxorio/todolist/internal/store/memstore"
	"github.com/fluxorio/todolist/internal/store/sqlstore"
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
)

func TestOpen_Drivers(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"default memory", Config{}, DriverMemory},
		{"sqlite file", Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "todos.db")}, DriverSQLite},
		{"nats down", Config{Driver: DriverNATS, DSN: "nats://127.0.0.1:1"}, DriverNATS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			s, err := Open(context.Background(), tt.cfg, prometheus.NewMetrics(prom.NewRegistry()), core.NewLogger(&logs))
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			if s.driver != tt.want {
				t.Errorf("driver = %q, want %q", s.driver, tt.want)
			}
		})
	}
}

func TestOpen_SQLiteRoundTrip(t *testing.T) {
	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "todos.db")},
		prometheus.NewMetrics(prom.NewRegistry()), core.NewLogger(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, ok := s.Unwrap().(*sqlstore.Store); !ok {
		t.Fatalf("wrapped store is %T", s.Unwrap())
	}
	created, err := s.Create(context.Background(), task.Draft{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	tasks, err := s.List(context.Background())
	if err != nil || len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Errorf("List = %+v, %v", tasks, err)
	}
}

func TestOpen_UnreachableIsLogged(t *testing.T) {
	var logs bytes.Buffer
	s, err := Open(context.Background(), Config{Driver: DriverNATS, DSN: "nats://127.0.0.1:1"},
		prometheus.NewMetrics(prom.NewRegistry()), core.NewLogger(&logs))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if !strings.Contains(logs.String(), "nats store not reachable yet") {
		t.Errorf("logs = %q", logs.String())
	}
	if _, err := s.List(context.Background()); !errors.Is(err, task.ErrNotConnected) {
		t.Errorf("List = %v, want ErrNotConnected", err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mongodb"}, prometheus.NewMetrics(prom.NewRegistry()), nil)
	if !errors.Is(err, core.NewError(core.CodeInvalidConfig, "")) {
		t.Errorf("err = %v", err)
	}
}

type failingStore struct{ task.Store }

func (failingStore) Delete(context.Context, string) error { return errors.New("disk full") }

func TestInstrumented(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	metrics := prometheus.NewMetrics(prom.NewRegistry())
	var logs bytes.Buffer
	s := Instrument(failingStore{memstore.New()}, DriverMemory, metrics, core.NewLogger(&logs))

	ctx := core.WithRequestID(context.Background(), "req-7")
	if _, err := s.Create(ctx, task.Draft{Title: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "x"); err == nil {
		t.Fatal("Delete should fail")
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	spans := recorder.Ended()
	if len(spans) != 2 || spans[0].Name() != "store.create" || spans[1].Name() != "store.delete" {
		t.Fatalf("spans = %v", spans)
	}
	if spans[1].Status().Code.String() != "Error" {
		t.Errorf("delete span status = %v", spans[1].Status())
	}
	if got := testutil.ToFloat64(metrics.StoreErrorsTotal.WithLabelValues(DriverMemory, "delete")); got != 1 {
		t.Errorf("delete errors = %v", got)
	}
	if got := testutil.ToFloat64(metrics.StoreUp.WithLabelValues(DriverMemory)); got != 1 {
		t.Errorf("store up = %v", got)
	}
	if !strings.Contains(logs.String(), "store operation failed: disk full") || !strings.Contains(logs.String(), "request_id=req-7") {
		t.Errorf("logs = %q", logs.String())
	}
}
