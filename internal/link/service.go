package link

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/serroba/securelink/internal/crypto"
	"go.uber.org/zap"
)

// ErrMissingToken is returned by Generate when no credential was supplied.
// This is a caller precondition failure; the store is never touched.
var ErrMissingToken = errors.New("authorization token is required")

// ErrCodeSpaceExhausted is returned when collision retries are used up
// without finding a free short code.
var ErrCodeSpaceExhausted = errors.New("failed to generate unique short code")

// maxCollisionRetries bounds how many times Generate re-derives a code after
// hitting an occupied one.
const maxCollisionRetries = 5

// Options configures a link Service.
type Options struct {
	// Expiration is how long a link stays valid after creation.
	Expiration time.Duration

	// StoreTTL is how long the store keeps an entry. It should be at least
	// Expiration; the gap lets the embedded-expiry check in Validate reject
	// entries the store has not evicted yet. Zero falls back to Expiration.
	StoreTTL time.Duration

	// CodeLength is the short code length, at most DefaultCodeLength.
	// Out-of-range values fall back to DefaultCodeLength.
	CodeLength int
}

// Service implements the link lifecycle: generate a short code wrapping an
// encrypted payload, and resolve a code back to the payload. It holds no
// per-request state; the repository and codec are safe for concurrent use.
type Service struct {
	repo       Repository
	codec      *crypto.Codec
	expiration time.Duration
	storeTTL   time.Duration
	codeLength int
	logger     *zap.Logger
}

// NewService creates a link lifecycle service.
func NewService(repo Repository, codec *crypto.Codec, opts Options, logger *zap.Logger) *Service {
	if opts.CodeLength <= 0 || opts.CodeLength > DefaultCodeLength {
		opts.CodeLength = DefaultCodeLength
	}

	if opts.StoreTTL < opts.Expiration {
		opts.StoreTTL = opts.Expiration
	}

	return &Service{
		repo:       repo,
		codec:      codec,
		expiration: opts.Expiration,
		storeTTL:   opts.StoreTTL,
		codeLength: opts.CodeLength,
		logger:     logger,
	}
}

// Generate encrypts data plus the caller's token into a new link entry and
// returns its short code. The code is derived from the ciphertext digest;
// when the derived code is already taken, derivation is retried with a
// timestamp-and-counter suffix appended to the digest input, up to
// maxCollisionRetries times.
func (s *Service) Generate(ctx context.Context, data map[string]any, token string) (*GeneratedLink, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.expiration)

	record := Record{
		Data:        data,
		Token:       token,
		EncryptedAt: now,
		ExpiresAt:   expiresAt,
	}

	blob, err := s.codec.Encrypt(record)
	if err != nil {
		return nil, fmt.Errorf("encrypt link record: %w", err)
	}

	meta := Metadata{EncryptedAt: now, ExpiresAt: expiresAt}

	code, err := s.save(ctx, blob, meta, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("link generated",
		zap.String("code", string(code)),
		zap.Time("expires_at", expiresAt),
	)

	return &GeneratedLink{Code: code, CreatedAt: now, ExpiresAt: expiresAt}, nil
}

// save persists the blob under a derived code, resolving collisions through
// the repository's atomic insert-if-absent.
func (s *Service) save(ctx context.Context, blob []byte, meta Metadata, createdAt time.Time) (Code, error) {
	input := blob

	for attempt := 0; ; attempt++ {
		code := DeriveCode(input, s.codeLength)

		err := s.repo.Save(ctx, code, blob, meta, s.storeTTL)
		if err == nil {
			return code, nil
		}

		if !errors.Is(err, ErrConflict) {
			return "", fmt.Errorf("save link: %w", err)
		}

		if attempt >= maxCollisionRetries {
			s.logger.Error("short code space exhausted",
				zap.Int("attempts", attempt+1),
			)

			return "", ErrCodeSpaceExhausted
		}

		s.logger.Warn("short code collision, retrying",
			zap.String("code", string(code)),
			zap.Int("attempt", attempt+1),
		)

		// Break derivation determinism so the next attempt lands elsewhere.
		suffix := fmt.Sprintf("%s:%d", createdAt.Format(time.RFC3339Nano), attempt)
		input = append(append([]byte{}, blob...), suffix...)
	}
}

// Validate resolves a short code to its decrypted record. Missing, corrupted
// and expired entries all produce an invalid outcome rather than an error;
// repository failures are treated as not found.
func (s *Service) Validate(ctx context.Context, code Code) *Validation {
	stored, err := s.repo.Get(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("link lookup failed",
				zap.String("code", string(code)),
				zap.Error(err),
			)
		}

		return Invalid(ReasonNotFound)
	}

	var record Record
	if err := s.codec.Decrypt(stored.Ciphertext, &record); err != nil {
		s.logger.Warn("link ciphertext rejected",
			zap.String("code", string(code)),
		)

		return Invalid(ReasonCorrupted)
	}

	// The store TTL is wider than the record's own expiry, so the record
	// has the final say even while the store still holds the entry.
	if time.Now().UTC().After(record.ExpiresAt) {
		return Invalid(ReasonExpired)
	}

	return Validated(&record)
}

// Revoke removes a link before its TTL elapses, reporting whether an entry
// was actually removed.
func (s *Service) Revoke(ctx context.Context, code Code) (bool, error) {
	return s.repo.Delete(ctx, code)
}
