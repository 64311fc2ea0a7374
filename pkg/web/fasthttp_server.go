package web

import (
	"context"
	"net"
	"sync/atomic"
	"time"

	"github.com/fluxorio/todolist/pkg/core"
	"github.com/valyala/fasthttp"
)

// FastHTTPServer serves a FastRouter with fasthttp.
// Each request is handled on its own goroutine by fasthttp; the server adds
// request IDs and status accounting on top.
type FastHTTPServer struct {
	*core.BaseServer
	router *FastRouter
	server *fasthttp.Server
	addr   string

	totalRequests      int64
	successfulRequests int64
	clientErrors       int64
	errorRequests      int64
}

// FastHTTPServerConfig configures the fasthttp server.
// Zero timeouts mean no timeout.
type FastHTTPServerConfig struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	MaxConnsPerIP      int
	MaxRequestBodySize int
	ReadBufferSize     int
	WriteBufferSize    int
	ShutdownTimeout    time.Duration
}

// DefaultFastHTTPServerConfig returns the default configuration
func DefaultFastHTTPServerConfig(addr string) *FastHTTPServerConfig {
	return &FastHTTPServerConfig{
		Addr:               addr,
		MaxRequestBodySize: 4 * 1024 * 1024,
		ReadBufferSize:     8192,
		WriteBufferSize:    8192,
		ShutdownTimeout:    5 * time.Second,
	}
}

// NewFastHTTPServer creates a server for router
func NewFastHTTPServer(router *FastRouter, config *FastHTTPServerConfig, logger core.Logger) *FastHTTPServer {
	if config == nil {
		config = DefaultFastHTTPServerConfig(":5000")
	}
	if router == nil {
		router = NewFastRouter()
	}

	s := &FastHTTPServer{
		BaseServer: core.NewBaseServer("fasthttp-server", logger),
		router:     router,
		addr:       config.Addr,
		server: &fasthttp.Server{
			ReadTimeout:           config.ReadTimeout,
			WriteTimeout:          config.WriteTimeout,
			MaxConnsPerIP:         config.MaxConnsPerIP,
			MaxRequestBodySize:    config.MaxRequestBodySize,
			ReadBufferSize:        config.ReadBufferSize,
			WriteBufferSize:       config.WriteBufferSize,
			NoDefaultServerHeader: true,
		},
	}
	s.server.Handler = s.processRequest

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	s.BaseServer.SetHooks(s.doStart, func() error { return s.doStop(shutdownTimeout) })
	return s
}

// doStart listens on the configured address (blocking)
func (s *FastHTTPServer) doStart() error {
	s.Logger().Infof("listening on %s", s.addr)
	return s.server.ListenAndServe(s.addr)
}

func (s *FastHTTPServer) doStop(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.ShutdownWithContext(ctx)
}

// Serve serves on an existing listener (blocking). Used by tests with in-memory listeners.
func (s *FastHTTPServer) Serve(ln net.Listener) error {
	return s.server.Serve(ln)
}

// Router returns the router
func (s *FastHTTPServer) Router() *FastRouter {
	return s.router
}

// Addr returns the configured listen address
func (s *FastHTTPServer) Addr() string {
	return s.addr
}

// Handler returns the raw fasthttp handler
func (s *FastHTTPServer) Handler() fasthttp.RequestHandler {
	return s.processRequest
}

// ServerMetrics provides request counters
type ServerMetrics struct {
	TotalRequests      int64
	SuccessfulRequests int64 // 2xx
	ClientErrors       int64 // 4xx
	ErrorRequests      int64 // 5xx
}

// Metrics returns current server metrics
func (s *FastHTTPServer) Metrics() ServerMetrics {
	return ServerMetrics{
		TotalRequests:      atomic.LoadInt64(&s.totalRequests),
		SuccessfulRequests: atomic.LoadInt64(&s.successfulRequests),
		ClientErrors:       atomic.LoadInt64(&s.clientErrors),
		ErrorRequests:      atomic.LoadInt64(&s.errorRequests),
	}
}

// processRequest wraps the request, routes it and accounts for the response status
func (s *FastHTTPServer) processRequest(ctx *fasthttp.RequestCtx) {
	reqCtx := NewFastRequestContext(ctx, "", s.Logger())
	ctx.Response.Header.Set(core.RequestIDHeader, reqCtx.RequestID())

	atomic.AddInt64(&s.totalRequests, 1)

	s.router.ServeFastHTTP(reqCtx)

	status := ctx.Response.StatusCode()
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&s.successfulRequests, 1)
	case status >= 400 && status < 500:
		atomic.AddInt64(&s.clientErrors, 1)
	case status >= 500:
		atomic.AddInt64(&s.errorRequests, 1)
	}
}
