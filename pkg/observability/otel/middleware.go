package otel

import (
	"strconv"

	"github.com/fluxorio/todolist/pkg/web"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HTTPMiddleware starts a server span per request, continuing any incoming
// W3C trace context, and attaches it to the request context.
func HTTPMiddleware() web.FastMiddleware {
	tracer := Tracer("github.com/fluxorio/todolist/pkg/web")

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			parent := otel.GetTextMapPropagator().Extract(ctx.Context(), headerCarrier{&ctx.RequestCtx.Request.Header})
			method := string(ctx.Method())

			spanCtx, span := tracer.Start(parent, method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", method),
					attribute.String("url.path", string(ctx.Path())),
					attribute.String("request.id", ctx.RequestID()),
				),
			)
			defer span.End()
			ctx.SetContext(spanCtx)

			err := next(ctx)

			if ctx.Route != "" {
				span.SetName(method + " " + ctx.Route)
				span.SetAttributes(attribute.String("http.route", ctx.Route))
			}
			status := ctx.StatusCode()
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if status >= 500 {
				span.SetStatus(codes.Error, strconv.Itoa(status))
			}
			if err != nil {
				span.RecordError(err)
			}
			return err
		}
	}
}

// headerCarrier adapts fasthttp request headers to propagation.TextMapCarrier
type headerCarrier struct {
	h *fasthttp.RequestHeader
}

func (c headerCarrier) Get(key string) string {
	return string(c.h.Peek(key))
}

func (c headerCarrier) Set(key, value string) {
	c.h.Set(key, value)
}

func (c headerCarrier) Keys() []string {
	var keys []string
	c.h.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}
