package prometheus

import (
	"time"

	"github.com/fluxorio/todolist/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// FastHTTPMetricsMiddleware records request metrics labelled by route pattern.
// Unmatched requests are recorded under route "unmatched" to bound cardinality.
func FastHTTPMetricsMiddleware(m *Metrics) web.FastMiddleware {
	if m == nil {
		m = GetMetrics()
	}
	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			start := time.Now()
			requestSize := int64(len(ctx.RequestCtx.PostBody()))

			err := next(ctx)

			route := ctx.Route
			if route == "" {
				route = "unmatched"
			}
			status := statusCodeString(ctx.RequestCtx.Response.StatusCode())
			responseSize := int64(len(ctx.RequestCtx.Response.Body()))

			m.RecordHTTPRequest(string(ctx.Method()), route, status, time.Since(start), requestSize, responseSize)
			return err
		}
	}
}

// RegisterMetricsEndpoint serves gatherer in the Prometheus text format on path.
// A nil gatherer serves DefaultRegistry.
func RegisterMetricsEndpoint(router *web.FastRouter, path string, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = DefaultRegistry
	}
	handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	router.GETFast(path, func(ctx *web.FastRequestContext) error {
		handler(ctx.RequestCtx)
		return nil
	})
}

func statusCodeString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
