package middleware

import (
	"fmt"

	"github.com/fluxorio/todolist/pkg/core"
	"github.com/fluxorio/todolist/pkg/web"
)

// RecoveryConfig configures panic recovery middleware
type RecoveryConfig struct {
	// Logger is the logger to use for panic logging (default: core.NewDefaultLogger())
	Logger core.Logger

	// StackTrace includes the panic value in the error response (use with caution in production)
	StackTrace bool
}

// DefaultRecoveryConfig returns a default recovery configuration
func DefaultRecoveryConfig() RecoveryConfig {
	return RecoveryConfig{
		Logger:     core.NewDefaultLogger(),
		StackTrace: false,
	}
}

// Recovery middleware recovers from panics and answers with the 500 error envelope
func Recovery(config RecoveryConfig) web.FastMiddleware {
	logger := config.Logger
	if logger == nil {
		logger = core.NewDefaultLogger()
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(map[string]interface{}{
						"request_id": ctx.RequestID(),
						"method":     string(ctx.Method()),
						"path":       string(ctx.Path()),
					}).Errorf("panic recovered: %v", r)

					detail := "internal server error"
					if config.StackTrace {
						detail = fmt.Sprintf("panic: %v", r)
					}
					err = ctx.JSON(500, map[string]string{
						"message":    "Internal Server Error",
						"error":      detail,
						"request_id": ctx.RequestID(),
					})
				}
			}()

			return next(ctx)
		}
	}
}
