package web

import (
	"errors"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
)

func newTestContext(method, path string) *FastRequestContext {
	rc := &fasthttp.RequestCtx{}
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(path)
	return NewFastRequestContext(rc, "req-1", nil)
}

func TestFastRouter_MatchParams(t *testing.T) {
	r := NewFastRouter()
	var gotID, gotRoute string
	r.PUTFast("/api/todos/:id", func(ctx *FastRequestContext) error {
		gotID = ctx.Param("id")
		gotRoute = ctx.Route
		return ctx.JSON(200, map[string]string{"ok": "1"})
	})

	ctx := newTestContext("PUT", "/api/todos/abc-123")
	r.ServeFastHTTP(ctx)

	if ctx.StatusCode() != 200 {
		t.Fatalf("status = %d, want 200", ctx.StatusCode())
	}
	if gotID != "abc-123" {
		t.Errorf("id = %q, want abc-123", gotID)
	}
	if gotRoute != "/api/todos/:id" {
		t.Errorf("route = %q, want /api/todos/:id", gotRoute)
	}
}

func TestFastRouter_NotFound(t *testing.T) {
	r := NewFastRouter()
	r.GETFast("/api/todos", func(ctx *FastRequestContext) error { return ctx.Text(200, "ok") })

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"unknown path", "GET", "/todos"},
		{"wrong method", "DELETE", "/api/todos"},
		{"empty param", "PUT", "/api/todos/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(tt.method, tt.path)
			r.ServeFastHTTP(ctx)
			if ctx.StatusCode() != 404 {
				t.Errorf("status = %d, want 404", ctx.StatusCode())
			}
		})
	}
}

func TestFastRouter_Group(t *testing.T) {
	r := NewFastRouter()
	api := r.Group("/api/")
	api.GETFast("/todos", func(ctx *FastRequestContext) error { return ctx.Text(200, "list") })
	r.Group("").GETFast("/health", func(ctx *FastRequestContext) error { return ctx.Text(200, "up") })

	for path, want := range map[string]string{"/api/todos": "list", "/health": "up"} {
		ctx := newTestContext("GET", path)
		r.ServeFastHTTP(ctx)
		if got := string(ctx.RequestCtx.Response.Body()); got != want {
			t.Errorf("GET %s body = %q, want %q", path, got, want)
		}
	}
}

func TestFastRouter_MiddlewareOrderAndUnmatched(t *testing.T) {
	r := NewFastRouter()
	var order []string
	mw := func(name string) FastMiddleware {
		return func(next FastRequestHandler) FastRequestHandler {
			return func(ctx *FastRequestContext) error {
				order = append(order, name)
				return next(ctx)
			}
		}
	}
	r.Use(mw("outer"), mw("inner"))

	ctx := newTestContext("OPTIONS", "/nowhere")
	r.ServeFastHTTP(ctx)

	if strings.Join(order, ",") != "outer,inner" {
		t.Errorf("middleware order = %v", order)
	}
	if ctx.StatusCode() != 404 {
		t.Errorf("status = %d, want 404", ctx.StatusCode())
	}
}

func TestFastRouter_HandlerError(t *testing.T) {
	r := NewFastRouter()
	r.GETFast("/boom", func(ctx *FastRequestContext) error { return errors.New("boom") })

	ctx := newTestContext("GET", "/boom")
	r.ServeFastHTTP(ctx)

	if ctx.StatusCode() != 500 {
		t.Errorf("status = %d, want 500", ctx.StatusCode())
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct{ prefix, path, want string }{
		{"", "/todos", "/todos"},
		{"/api", "/todos", "/api/todos"},
		{"/api/", "todos", "/api/todos"},
		{"", "", "/"},
		{"/api", "", "/api"},
	}
	for _, tt := range tests {
		if got := joinPath(tt.prefix, tt.path); got != tt.want {
			t.Errorf("joinPath(%q, %q) = %q, want %q", tt.prefix, tt.path, got, tt.want)
		}
	}
}
