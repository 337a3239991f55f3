package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/securelink/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a huma middleware enforcing a single limiter keyed by
// client IP and User-Agent.
func RateLimiter(api huma.API, limiter ratelimit.Limiter) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		allowed, err := limiter.Allow(ctx.Context(), clientKey(ctx))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// PolicyRateLimiter returns a huma middleware applying policy-based rate
// limiting. Scopes come from the resolver; endpoints can override behavior
// through operation metadata under ratelimit.MetadataKey (disable limiting,
// force a scope, or define custom limits).
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		path := operationPath(ctx)

		if cfg := ratelimit.GetEndpointConfig(ctx); cfg != nil {
			if handleEndpointConfig(api, ctx, limiter, cfg, path, logger, next) {
				return
			}
		}

		key := clientKey(ctx)
		scopes := resolver.Resolve(ctx)

		allowed, exceeded, err := limiter.Allow(ctx.Context(), key, scopes)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("path", path), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if !allowed {
			rejectRateLimited(api, ctx, exceeded, path, logger)

			return
		}

		next(ctx)
	}
}

// handleEndpointConfig applies per-endpoint configuration. It returns true
// when the request was fully handled and the caller should stop.
func handleEndpointConfig(
	api huma.API,
	ctx huma.Context,
	limiter *ratelimit.PolicyLimiter,
	cfg *ratelimit.EndpointConfig,
	path string,
	logger *zap.Logger,
	next func(huma.Context),
) bool {
	if cfg.Disabled {
		next(ctx)

		return true
	}

	if len(cfg.Limits) > 0 {
		if checkCustomLimits(api, ctx, limiter.Store(), cfg.Limits, logger) {
			next(ctx)
		}

		return true
	}

	return false
}

// checkCustomLimits applies the limits from endpoint config, returning true
// when the request is allowed.
//
// The rate limit key uses the operation's route template (e.g.
// "/links/{code}/validate"), so all requests hitting the same route share
// counters per client regardless of path values.
func checkCustomLimits(
	api huma.API,
	ctx huma.Context,
	store ratelimit.Store,
	limits []ratelimit.LimitConfig,
	logger *zap.Logger,
) bool {
	op := ctx.Operation()
	if op == nil {
		logger.Error("missing operation in context for rate limiting")

		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error",
			errors.New("missing operation in context"))

		return false
	}

	client := clientKey(ctx)

	for _, limit := range limits {
		key := fmt.Sprintf("%s:custom:%s:%d", client, op.Path, limit.Window.Milliseconds())

		count, err := store.Record(ctx.Context(), key, limit.Window)
		if err != nil {
			logger.Error("custom rate limit check failed",
				zap.String("path", op.Path),
				zap.Error(err),
			)
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return false
		}

		if count > limit.Max {
			logger.Warn("rate limit exceeded",
				zap.String("path", op.Path),
				zap.String("method", ctx.Method()),
				zap.Int64("count", count),
				zap.Int64("max", limit.Max),
				zap.Duration("window", limit.Window),
				zap.String("client_ip", clientIP(ctx)),
			)

			msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
				count, limit.Max, limit.Window)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return false
		}
	}

	return true
}

func rejectRateLimited(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	path string,
	logger *zap.Logger,
) {
	msg := "rate limit exceeded"

	if exceeded != nil {
		msg = fmt.Sprintf("rate limit exceeded: %s scope, %d/%d requests in %s",
			exceeded.Scope, exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
		logger.Warn("rate limit exceeded",
			zap.String("path", path),
			zap.String("method", ctx.Method()),
			zap.String("scope", string(exceeded.Scope)),
			zap.Int64("count", exceeded.Count),
			zap.Int64("max", exceeded.Config.Max),
			zap.Duration("window", exceeded.Config.Window),
			zap.String("client_ip", clientIP(ctx)),
		)
	}

	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

// clientKey builds a stable rate limiting key from client IP and User-Agent.
func clientKey(ctx huma.Context) string {
	hash := sha256.Sum256([]byte(clientIP(ctx) + "|" + ctx.Header("User-Agent")))

	return hex.EncodeToString(hash[:])
}

// clientIP extracts the client IP from the request, considering proxies.
func clientIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// The first entry is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.Host()

	ip, _, err := net.SplitHostPort(host)
	if err != nil {
		return host
	}

	return ip
}
