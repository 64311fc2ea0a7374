package web

import (
	"context"
	"fmt"

	"github.com/fluxorio/todolist/pkg/core"
	"github.com/valyala/fasthttp"
)

// FastRequestContext wraps fasthttp RequestCtx with routing params and request metadata
type FastRequestContext struct {
	RequestCtx *fasthttp.RequestCtx
	Params     map[string]string
	// Route is the matched route pattern (e.g. "/api/todos/:id"), empty when unmatched
	Route     string
	requestID string
	logger    core.Logger
	ctx       context.Context
}

// NewFastRequestContext wraps ctx. An empty requestID is taken from the
// X-Request-ID header or generated.
func NewFastRequestContext(ctx *fasthttp.RequestCtx, requestID string, logger core.Logger) *FastRequestContext {
	if requestID == "" {
		requestID = string(ctx.Request.Header.Peek(core.RequestIDHeader))
	}
	if requestID == "" {
		requestID = core.GenerateRequestID()
	}
	if logger == nil {
		logger = core.NewDefaultLogger()
	}
	return &FastRequestContext{
		RequestCtx: ctx,
		Params:     make(map[string]string),
		requestID:  requestID,
		logger:     logger,
	}
}

// JSON writes JSON response - fail-fast
func (c *FastRequestContext) JSON(statusCode int, data interface{}) error {
	if statusCode < 100 || statusCode > 599 {
		return fmt.Errorf("invalid status code: %d", statusCode)
	}

	jsonData, err := core.JSONEncode(data)
	if err != nil {
		return fmt.Errorf("json encode error: %w", err)
	}

	c.RequestCtx.SetStatusCode(statusCode)
	c.RequestCtx.SetContentType("application/json")
	c.RequestCtx.SetBody(jsonData)
	return nil
}

// RawJSON writes an already encoded JSON body
func (c *FastRequestContext) RawJSON(statusCode int, body []byte) error {
	if statusCode < 100 || statusCode > 599 {
		return fmt.Errorf("invalid status code: %d", statusCode)
	}
	c.RequestCtx.SetStatusCode(statusCode)
	c.RequestCtx.SetContentType("application/json")
	c.RequestCtx.SetBody(body)
	return nil
}

// BindJSON binds JSON request body to a struct - fail-fast
func (c *FastRequestContext) BindJSON(v interface{}) error {
	if v == nil {
		return fmt.Errorf("cannot bind to nil value")
	}

	body := c.RequestCtx.PostBody()
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}

	return core.JSONDecode(body, v)
}

// HasBody reports whether the request carries a body
func (c *FastRequestContext) HasBody() bool {
	return len(c.RequestCtx.PostBody()) > 0
}

// Text writes text response
func (c *FastRequestContext) Text(statusCode int, text string) error {
	c.RequestCtx.SetStatusCode(statusCode)
	c.RequestCtx.SetContentType("text/plain; charset=utf-8")
	c.RequestCtx.SetBodyString(text)
	return nil
}

// NoContent writes an empty response with the given status
func (c *FastRequestContext) NoContent(statusCode int) error {
	c.RequestCtx.SetStatusCode(statusCode)
	c.RequestCtx.ResetBody()
	return nil
}

// Query returns query parameter value
func (c *FastRequestContext) Query(key string) string {
	return string(c.RequestCtx.QueryArgs().Peek(key))
}

// Param returns path parameter value
func (c *FastRequestContext) Param(key string) string {
	return c.Params[key]
}

// Method returns HTTP method
func (c *FastRequestContext) Method() []byte {
	return c.RequestCtx.Method()
}

// Path returns request path
func (c *FastRequestContext) Path() []byte {
	return c.RequestCtx.Path()
}

// Header returns a request header value
func (c *FastRequestContext) Header(key string) string {
	return string(c.RequestCtx.Request.Header.Peek(key))
}

// SetHeader sets a response header
func (c *FastRequestContext) SetHeader(key, value string) {
	c.RequestCtx.Response.Header.Set(key, value)
}

// StatusCode returns the response status code written so far
func (c *FastRequestContext) StatusCode() int {
	return c.RequestCtx.Response.StatusCode()
}

// Set stores a request-scoped value
func (c *FastRequestContext) Set(key string, value interface{}) {
	c.RequestCtx.SetUserValue(key, value)
}

// Get retrieves a request-scoped value
func (c *FastRequestContext) Get(key string) interface{} {
	return c.RequestCtx.UserValue(key)
}

// Error writes error response
func (c *FastRequestContext) Error(msg string, statusCode int) {
	c.RequestCtx.Error(msg, statusCode)
}

// RequestID returns the request ID for this request
func (c *FastRequestContext) RequestID() string {
	return c.requestID
}

// Logger returns a logger tagged with the request ID
func (c *FastRequestContext) Logger() core.Logger {
	return c.logger.WithFields(map[string]interface{}{"request_id": c.requestID})
}

// Context returns a context carrying the request ID and anything attached
// with SetContext. fasthttp recycles RequestCtx after the handler returns,
// so the context is rooted at Background rather than the RequestCtx itself.
func (c *FastRequestContext) Context() context.Context {
	if c.ctx != nil {
		return c.ctx
	}
	ctx := context.Background()
	if c.requestID != "" {
		ctx = core.WithRequestID(ctx, c.requestID)
	}
	return ctx
}

// SetContext replaces the request's context (e.g. to carry a trace span)
func (c *FastRequestContext) SetContext(ctx context.Context) {
	c.ctx = ctx
}
