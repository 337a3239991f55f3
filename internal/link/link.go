package link

import "time"

// Code is the short, URL-safe identifier of a stored link.
type Code string

// Record is the value sealed inside a link's ciphertext. Timestamps are UTC
// and serialize as RFC 3339 strings so the record survives the round trip
// through encryption unchanged.
type Record struct {
	Data        map[string]any `json:"data"`
	Token       string         `json:"token"`
	EncryptedAt time.Time      `json:"encrypted_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Metadata is the plaintext bookkeeping stored next to the ciphertext.
type Metadata struct {
	EncryptedAt time.Time `json:"encrypted_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// StoredLink is a persisted link entry as returned by a Repository.
type StoredLink struct {
	Code       Code
	Ciphertext []byte
	Metadata   Metadata
}

// GeneratedLink is the result of generating a new link.
type GeneratedLink struct {
	Code      Code
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Reason classifies why a validation did not produce a valid link.
type Reason string

const (
	// ReasonNotFound covers both codes that never existed and codes whose
	// store entry already expired; the store cannot tell these apart.
	ReasonNotFound Reason = "not_found"
	// ReasonCorrupted covers ciphertext that fails authentication or cannot
	// be parsed.
	ReasonCorrupted Reason = "corrupted"
	// ReasonExpired means the record's own expiry is in the past even though
	// the store still held the entry.
	ReasonExpired Reason = "expired"
)

// Validation is the outcome of resolving a short code. Exactly one of the
// two shapes applies: Valid with the decrypted record fields populated, or
// invalid with a Reason.
type Validation struct {
	Valid       bool
	Reason      Reason
	Data        map[string]any
	Token       string
	EncryptedAt time.Time
}

// Invalid builds a failed validation outcome.
func Invalid(reason Reason) *Validation {
	return &Validation{Reason: reason}
}

// Validated builds a successful validation outcome from a decrypted record.
func Validated(record *Record) *Validation {
	return &Validation{
		Valid:       true,
		Data:        record.Data,
		Token:       record.Token,
		EncryptedAt: record.EncryptedAt,
	}
}
