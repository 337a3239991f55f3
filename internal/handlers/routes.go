package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/securelink/internal/ratelimit"
)

// RegisterRoutes registers all link routes with per-endpoint rate limit
// configuration.
func RegisterRoutes(api huma.API, linkHandler *LinkHandler) {
	// POST /links/generate - create a secure link
	// Write operations get the strict limits.
	huma.Register(api, huma.Operation{
		Method:        http.MethodPost,
		Path:          "/links/generate",
		Summary:       "Generate secure link",
		Description:   "Encrypts the payload together with the caller's bearer credential and returns a short code with its expiry.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 30},      // 30 per minute
					{Window: time.Hour, Max: 500},       // 500 per hour
					{Window: 24 * time.Hour, Max: 2000}, // 2000 per day
				},
			},
		},
	}, linkHandler.GenerateLink)

	// GET /links/{code}/validate - resolve a short code
	// Validation failures are part of the response body, so this is always
	// 200 at the transport layer.
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/links/{code}/validate",
		Summary:     "Validate secure link",
		Description: "Resolves a short code to its decrypted payload. Missing, corrupted and expired links are reported in the body, never as transport errors.",
		Tags:        []string{"Links"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.LimitConfig{
					{Window: time.Minute, Max: 600}, // 600 per minute
				},
			},
		},
	}, linkHandler.ValidateLink)
}
