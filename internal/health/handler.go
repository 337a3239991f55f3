package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

// Checker defines the interface for probing a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to the Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler handles health check operations. The link store is the only hard
// dependency of the serve path, so its health decides the overall status.
type Handler struct {
	store Checker
}

// NewHandler creates a new health handler.
func NewHandler(store Checker) *Handler {
	return &Handler{store: store}
}

// Response is the response for the health check endpoint.
type Response struct {
	Body struct {
		Status string `json:"status"`
		Store  string `json:"store"`
	}
}

// Check reports the health of the service and its store.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Store = "healthy"

	if err := h.store.Ping(ctx); err != nil {
		resp.Body.Status = "degraded"
		resp.Body.Store = "unhealthy"
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
