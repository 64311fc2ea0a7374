package client_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"github.com/fluxorio/todolist/internal/api"
	"github.com/fluxorio/todolist/internal/client"
	"github.com/fluxorio/todolist/internal/store/memstore"
	"github.com/fluxorio/todolist/internal/task"
	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/observability/prometheus"
	"github.com/fluxorio/todolist/pkg/web"
	"github.com/fluxorio/todolist/pkg/web/webtest"
)

func newTestClient(t *testing.T, store task.Store, prefix string) *client.Client {
	t.Helper()
	return client.New(webtest.BaseURL+prefix, client.WithDoer(newTestServer(t, store, prefix)))
}

func newTestServer(t *testing.T, store task.Store, prefix string) client.Doer {
	t.Helper()
	registry := prom.NewRegistry()
	logger := core.NewLogger(&bytes.Buffer{})
	router := api.NewRouter(store, api.Options{
		Prefix:   prefix,
		Logger:   logger,
		Metrics:  prometheus.NewMetrics(registry),
		Gatherer: registry,
	})
	server := web.NewFastHTTPServer(router, web.DefaultFastHTTPServerConfig(":0"), logger)
	return webtest.Serve(t, server.Handler())
}

func TestClient_Lifecycle(t *testing.T) {
	c := newTestClient(t, memstore.New(), "/api")

	tasks, err := c.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("List() = %v, want empty non-nil", tasks)
	}

	created, err := c.Create(task.Draft{Title: "Buy milk", Description: "<p>2%</p>"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("Create() = %+v, want id and createdAt", created)
	}

	updated, err := c.Update(created.ID, task.Draft{Title: "Buy bread", Description: "<p>2%</p>"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated == nil || updated.Title != "Buy bread" || updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("Update() = %+v", updated)
	}

	tasks, err = c.List()
	if err != nil || len(tasks) != 1 || tasks[0].Title != "Buy bread" {
		t.Fatalf("List() = %+v, %v", tasks, err)
	}

	for i := 0; i < 2; i++ {
		if err := c.Delete(created.ID); err != nil {
			t.Fatalf("Delete() #%d error = %v", i+1, err)
		}
	}
	if tasks, _ := c.List(); len(tasks) != 0 {
		t.Errorf("List() after delete = %+v", tasks)
	}
}

func TestClient_UpdateUnknownReturnsNil(t *testing.T) {
	c := newTestClient(t, memstore.New(), "/api")

	got, err := c.Update("missing-id", task.Draft{Title: "x"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got != nil {
		t.Errorf("Update() = %+v, want nil", got)
	}
}

func TestClient_EmptyPrefix(t *testing.T) {
	c := newTestClient(t, memstore.New(), "/")
	if _, err := c.Create(task.Draft{Title: "root"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if tasks, err := c.List(); err != nil || len(tasks) != 1 {
		t.Errorf("List() = %+v, %v", tasks, err)
	}
}

type downStore struct{ *memstore.Store }

var errDown = errors.New("connection refused")

func (*downStore) Create(context.Context, task.Draft) (*task.Task, error) { return nil, errDown }
func (*downStore) List(context.Context) ([]task.Task, error)              { return nil, errDown }
func (*downStore) Delete(context.Context, string) error                  { return errDown }

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, &downStore{memstore.New()}, "/api")

	tests := []struct {
		name string
		call func() error
		msg  string
	}{
		{"list", func() error { _, err := c.List(); return err }, api.MsgListFailed},
		{"create", func() error { _, err := c.Create(task.Draft{Title: "x"}); return err }, api.MsgCreateFailed},
		{"delete", func() error { return c.Delete("x") }, api.MsgDeleteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Status != 500 || apiErr.Message != tt.msg || apiErr.Err != errDown.Error() {
				t.Errorf("APIError = %+v", apiErr)
			}
		})
	}
}

func TestClient_NonJSONError(t *testing.T) {
	// Routes are mounted under /api, so a client rooted elsewhere gets the router's 404.
	c := client.New(webtest.BaseURL+"/v2", client.WithDoer(newTestServer(t, memstore.New(), "/api")))
	_, err := c.List()

	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("error = %v, want 404 APIError", err)
	}
	if apiErr.Error() != "api: 404 Not Found" {
		t.Errorf("Error() = %q", apiErr.Error())
	}
}

func TestClient_TransportError(t *testing.T) {
	c := client.New("", client.WithDoer(failingDoer{}))
	if c.BaseURL() != client.DefaultBaseURL {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}

	_, err := c.List()
	if err == nil || !errors.Is(err, fasthttp.ErrConnectionClosed) {
		t.Errorf("List() error = %v", err)
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		t.Error("transport errors must not be APIError")
	}
}

type failingDoer struct{}

func (failingDoer) Do(*fasthttp.Request, *fasthttp.Response) error {
	return fasthttp.ErrConnectionClosed
}
