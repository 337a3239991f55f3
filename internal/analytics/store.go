package analytics

import "context"

// Store defines the interface for persisting link usage events.
type Store interface {
	SaveLinkGenerated(ctx context.Context, event *LinkGeneratedEvent) error
	SaveLinkResolved(ctx context.Context, event *LinkResolvedEvent) error
}
