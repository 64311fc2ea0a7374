package health

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fluxorio/todolist/pkg/web"
	"github.com/fluxorio/todolist/pkg/web/webtest"
)

func TestHealthEndpoints(t *testing.T) {
	storeErr := error(nil)
	registry := NewRegistry()
	registry.Register("store", func(context.Context) error { return storeErr })
	registry.Register("self", func(context.Context) error { return nil })

	router := web.NewFastRouter()
	Register(router, "/health", NewAggregator(registry, "todo-api"))
	client := webtest.Serve(t, web.NewFastHTTPServer(router, nil, nil).Handler())

	status, body, _ := webtest.Do(t, client, "GET", "/health", nil)
	if status != 200 || string(body) != `{"status":"UP","service":"todo-api"}` {
		t.Errorf("GET /health = %d %s", status, body)
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantState  string
	}{
		{"all up", nil, 200, StatusUp},
		{"store down", errors.New("connection refused"), 503, StatusDown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeErr = tt.err
			status, body, _ := webtest.Do(t, client, "GET", "/health/detailed", nil)
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			var report Report
			if err := json.Unmarshal(body, &report); err != nil {
				t.Fatal(err)
			}
			if report.Status != tt.wantState || report.Checks["store"].Status != tt.wantState || report.Checks["self"].Status != StatusUp {
				t.Errorf("report = %+v", report)
			}
			if tt.err != nil && report.Checks["store"].Error != tt.err.Error() {
				t.Errorf("store error = %q", report.Checks["store"].Error)
			}
		})
	}
}
