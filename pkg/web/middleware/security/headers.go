package security

import (
	"fmt"

	"github.com/fluxorio/todolist/pkg/web"
)

// HeadersConfig configures security headers for JSON API responses
type HeadersConfig struct {
	// HSTS (only meaningful behind TLS)
	HSTS       bool
	HSTSMaxAge int // seconds, default 31536000 (1 year)

	// CSP (Content Security Policy)
	CSP string

	// X-Frame-Options: DENY or SAMEORIGIN
	XFrameOptions string

	// X-Content-Type-Options: nosniff
	XContentTypeOptions bool

	// Referrer-Policy
	ReferrerPolicy string

	// Cross-Origin-Resource-Policy. Must be "cross-origin" when a browser
	// client on another origin reads the responses.
	CrossOriginResourcePolicy string

	// Custom headers
	CustomHeaders map[string]string
}

// DefaultHeadersConfig returns headers suitable for an API read cross-origin
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		XContentTypeOptions:       true,
		CSP:                       "default-src 'none'; frame-ancestors 'none'",
		XFrameOptions:             "DENY",
		ReferrerPolicy:            "no-referrer",
		CrossOriginResourcePolicy: "cross-origin",
		CustomHeaders:             make(map[string]string),
	}
}

// Headers middleware adds security headers to responses
func Headers(config HeadersConfig) web.FastMiddleware {
	hsts := ""
	if config.HSTS {
		maxAge := config.HSTSMaxAge
		if maxAge <= 0 {
			maxAge = 31536000
		}
		hsts = fmt.Sprintf("max-age=%d", maxAge)
	}

	return func(next web.FastRequestHandler) web.FastRequestHandler {
		return func(ctx *web.FastRequestContext) error {
			h := &ctx.RequestCtx.Response.Header
			if hsts != "" {
				h.Set("Strict-Transport-Security", hsts)
			}
			if config.CSP != "" {
				h.Set("Content-Security-Policy", config.CSP)
			}
			if config.XFrameOptions != "" {
				h.Set("X-Frame-Options", config.XFrameOptions)
			}
			if config.XContentTypeOptions {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.CrossOriginResourcePolicy != "" {
				h.Set("Cross-Origin-Resource-Policy", config.CrossOriginResourcePolicy)
			}
			for key, value := range config.CustomHeaders {
				h.Set(key, value)
			}

			return next(ctx)
		}
	}
}
