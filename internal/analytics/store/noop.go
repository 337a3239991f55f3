package store

import (
	"context"

	"github.com/serroba/securelink/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events. Used
// when no database is configured.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveLinkGenerated(_ context.Context, event *analytics.LinkGeneratedEvent) error {
	n.logger.Info("link generated event received",
		zap.String("code", event.Code),
		zap.Time("createdAt", event.CreatedAt),
		zap.Time("expiresAt", event.ExpiresAt),
	)

	return nil
}

func (n *Noop) SaveLinkResolved(_ context.Context, event *analytics.LinkResolvedEvent) error {
	n.logger.Info("link resolved event received",
		zap.String("code", event.Code),
		zap.Bool("valid", event.Valid),
		zap.String("reason", event.Reason),
		zap.Time("resolvedAt", event.ResolvedAt),
	)

	return nil
}

// Compile-time check.
var _ analytics.Store = (*Noop)(nil)
