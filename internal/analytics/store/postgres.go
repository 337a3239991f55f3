package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/securelink/internal/analytics"
)

// Postgres is a PostgreSQL implementation of analytics.Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed analytics store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveLinkGenerated(ctx context.Context, event *analytics.LinkGeneratedEvent) error {
	query := `
		INSERT INTO link_generated_events (event_id, code, created_at, expires_at, client_ip, user_agent, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Code,
		event.CreatedAt,
		event.ExpiresAt,
		event.ClientIP,
		event.UserAgent,
		nullableString(event.RequestID),
	)

	return err
}

func (p *Postgres) SaveLinkResolved(ctx context.Context, event *analytics.LinkResolvedEvent) error {
	query := `
		INSERT INTO link_resolved_events (event_id, code, valid, reason, resolved_at, client_ip, user_agent, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.Code,
		event.Valid,
		nullableString(event.Reason),
		event.ResolvedAt,
		event.ClientIP,
		event.UserAgent,
		nullableString(event.RequestID),
	)

	return err
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ analytics.Store = (*Postgres)(nil)
