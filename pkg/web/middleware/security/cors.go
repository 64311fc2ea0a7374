package security

import (
	"strconv"
	"strings"

	"github.com/fluxorio/todolist/pkg/web"
	"github.com/valyala/fasthttp"
)

// CORSConfig configures cross-origin resource sharing
type CORSConfig struct {
	// AllowedOrigins lists allowed origins; "*" allows any origin
	AllowedOrigins []string

	// AllowedMethods lists methods advertised on preflight
	AllowedMethods []string

	// AllowedHeaders lists request headers advertised on preflight.
	// Empty reflects the preflight's Access-Control-Request-Headers.
	AllowedHeaders []string

	// ExposedHeaders lists response headers readable by the browser
	ExposedHeaders []string

	// MaxAge is the preflight cache lifetime in seconds (0 = not sent)
	MaxAge int
}

// DefaultCORSConfig allows any origin with the methods the API serves
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE"},
		ExposedHeaders: []string{"X-Request-ID"},
	}
}

// CORS adds CORS headers and answers preflight requests with 204
func CORS(config CORSConfig) web.FastMiddleware {
	methods := strings.Join(config.AllowedMethods, ",")
	headers := strings.Join(config.AllowedHeaders, ",")
	exposed := strings.Join(config.ExposedHeaders, ",")
	anyOrigin := false
	for _, o := range config.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			origin := ctx.Header("Origin")
			allowed := allowOrigin(config.AllowedOrigins, anyOrigin, origin)

			if allowed != "" {
				ctx.SetHeader("Access-Control-Allow-Origin", allowed)
				if allowed != "*" {
					ctx.RequestCtx.Response.Header.Add("Vary", "Origin")
				}
				if exposed != "" {
					ctx.SetHeader("Access-Control-Expose-Headers", exposed)
				}
			}

			preflight := string(ctx.Method()) == fasthttp.MethodOptions &&
				ctx.Header("Access-Control-Request-Method") != ""
			if !preflight {
				return next(ctx)
			}

			if allowed != "" {
				ctx.SetHeader("Access-Control-Allow-Methods", methods)
				reqHeaders := headers
				if reqHeaders == "" {
					reqHeaders = ctx.Header("Access-Control-Request-Headers")
				}
				if reqHeaders != "" {
					ctx.SetHeader("Access-Control-Allow-Headers", reqHeaders)
				}
				if config.MaxAge > 0 {
					ctx.SetHeader("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
			}
			return ctx.NoContent(fasthttp.StatusNoContent)
		}
	}
}

func allowOrigin(origins []string, anyOrigin bool, origin string) string {
	if anyOrigin {
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, o := range origins {
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}
