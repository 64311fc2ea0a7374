package otel

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fluxorio/todolist/pkg/web"
	"github.com/fluxorio/todolist/pkg/web/webtest"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestInitialize_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
		active  bool
	}{
		{"none", Config{Exporter: "none"}, false, false},
		{"empty", Config{}, false, false},
		{"zipkin without endpoint", Config{Exporter: "zipkin"}, true, false},
		{"unknown", Config{Exporter: "jaeger"}, true, false},
		{"zipkin", Config{Exporter: "zipkin", Endpoint: "http://localhost:9411/api/v2/spans"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Initialize(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if IsInitialized() != tt.active {
				t.Errorf("IsInitialized = %v, want %v", IsInitialized(), tt.active)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("shutdown: %v", err)
			}
		})
	}
}

func TestInitialize_Stdout(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Initialize(context.Background(), Config{
		ServiceName: "todo-api",
		Exporter:    "stdout",
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, span := Tracer("test").Start(context.Background(), "store.create")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "store.create") {
		t.Errorf("exported output missing span: %s", buf.String())
	}
	if IsInitialized() {
		t.Error("IsInitialized should be false after shutdown")
	}
}

func TestHTTPMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var inner trace.SpanContext
	router := web.NewFastRouter()
	router.Use(HTTPMiddleware())
	router.DELETEFast("/api/todos/:id", func(ctx *web.FastRequestContext) error {
		inner = trace.SpanContextFromContext(ctx.Context())
		return ctx.JSON(500, map[string]string{"message": "Error deleting task"})
	})

	server := web.NewFastHTTPServer(router, web.DefaultFastHTTPServerConfig(":0"), nil)
	client := webtest.Serve(t, server.Handler())
	webtest.Do(t, client, "DELETE", "/api/todos/42", nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "DELETE /api/todos/:id" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code.String() != "Error" {
		t.Errorf("status = %v, want Error", spans[0].Status())
	}
	if !inner.IsValid() || inner.SpanID() != spans[0].SpanContext().SpanID() {
		t.Error("handler context does not carry the request span")
	}
}
