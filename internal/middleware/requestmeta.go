package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/securelink/internal/handlers"
)

// RequestIDGenerator produces an opaque id for correlating a request across
// logs and analytics events.
type RequestIDGenerator func() string

// RequestMeta returns a middleware that attaches a generated request id plus
// client IP and User-Agent to the request context.
func RequestMeta(_ huma.API, generateID RequestIDGenerator) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			RequestID: generateID(),
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
		}

		ctx = huma.WithContext(ctx, handlers.ContextWithRequestMeta(ctx.Context(), meta))

		next(ctx)
	}
}
