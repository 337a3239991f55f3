package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/securelink/internal/analytics"
	"github.com/serroba/securelink/internal/link"
	"github.com/serroba/securelink/internal/messaging"
	"go.uber.org/zap"
)

// LinkHandler handles link generation and validation operations.
type LinkHandler struct {
	service          *link.Service
	publishGenerated messaging.Publish[analytics.LinkGeneratedEvent]
	publishResolved  messaging.Publish[analytics.LinkResolvedEvent]
	logger           *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	service *link.Service,
	publishGenerated messaging.Publish[analytics.LinkGeneratedEvent],
	publishResolved messaging.Publish[analytics.LinkResolvedEvent],
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		service:          service,
		publishGenerated: publishGenerated,
		publishResolved:  publishResolved,
		logger:           logger,
	}
}

func (h *LinkHandler) GenerateLink(ctx context.Context, req *GenerateLinkRequest) (*GenerateLinkResponse, error) {
	token := bearerToken(req.Authorization)
	if token == "" {
		return nil, huma.Error401Unauthorized("authorization token is required")
	}

	generated, err := h.service.Generate(ctx, req.Body.Data, token)
	if err != nil {
		if errors.Is(err, link.ErrMissingToken) {
			return nil, huma.Error401Unauthorized("authorization token is required")
		}

		if errors.Is(err, link.ErrCodeSpaceExhausted) {
			return nil, huma.Error500InternalServerError("failed to generate unique short code")
		}

		h.logger.Error("link generation failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to generate link")
	}

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkGeneratedEvent{
		EventID:   uuid.NewString(),
		Code:      string(generated.Code),
		CreatedAt: generated.CreatedAt,
		ExpiresAt: generated.ExpiresAt,
		ClientIP:  meta.ClientIP,
		UserAgent: meta.UserAgent,
		RequestID: meta.RequestID,
	}

	if err := h.publishGenerated(event); err != nil {
		h.logger.Error("failed to publish link generated event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &GenerateLinkResponse{}
	resp.Body.ShortCode = string(generated.Code)
	resp.Body.CreatedAt = generated.CreatedAt
	resp.Body.ExpiresAt = generated.ExpiresAt

	return resp, nil
}

func (h *LinkHandler) ValidateLink(ctx context.Context, req *ValidateLinkRequest) (*ValidateLinkResponse, error) {
	result := h.service.Validate(ctx, link.Code(req.Code))

	meta := RequestMetaFromContext(ctx)
	event := &analytics.LinkResolvedEvent{
		EventID:    uuid.NewString(),
		Code:       req.Code,
		Valid:      result.Valid,
		Reason:     string(result.Reason),
		ResolvedAt: time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
		RequestID:  meta.RequestID,
	}

	if err := h.publishResolved(event); err != nil {
		h.logger.Error("failed to publish link resolved event",
			zap.String("code", req.Code),
			zap.Error(err),
		)
	}

	resp := &ValidateLinkResponse{}
	resp.Body.Valid = result.Valid

	if !result.Valid {
		resp.Body.Error = reasonMessage(result.Reason)

		return resp, nil
	}

	encryptedAt := result.EncryptedAt
	resp.Body.Data = result.Data
	resp.Body.Token = result.Token
	resp.Body.EncryptedAt = &encryptedAt

	return resp, nil
}

// bearerToken extracts the credential from an Authorization header value.
// Both "Bearer <token>" and a raw token are accepted.
func bearerToken(header string) string {
	header = strings.TrimSpace(header)

	if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}

	return header
}

func reasonMessage(reason link.Reason) string {
	switch reason {
	case link.ReasonCorrupted:
		return "link data is corrupted or invalid"
	case link.ReasonExpired:
		return "link has expired"
	default:
		return "link not found or expired"
	}
}
