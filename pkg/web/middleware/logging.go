package middleware

import (
	"time"

	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/web"
)

// RequestLogging logs one line per request with status and duration
func RequestLogging(logger core.Logger) web.FastMiddleware {
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			start := time.Now()
			err := next(ctx)

			logger.WithFields(map[string]interface{}{
				"request_id": ctx.RequestID(),
				"status":     ctx.StatusCode(),
				"dur":        time.Since(start),
			}).Infof("%s %s", ctx.Method(), ctx.Path())
			return err
		}
	}
}
