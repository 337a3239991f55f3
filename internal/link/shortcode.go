package link

import (
	"crypto/sha256"
	"encoding/base64"
)

// DefaultCodeLength is the short code length used when none is configured.
const DefaultCodeLength = 8

// DeriveCode computes a short code from a ciphertext blob: a SHA-256 digest
// of the raw bytes, base64 URL-safe encoded without padding, truncated to
// maxLength characters. The same input always yields the same code; the
// truncated code space (~2^48 for 8 characters) is why the caller still has
// to resolve collisions against the store.
func DeriveCode(blob []byte, maxLength int) Code {
	if maxLength <= 0 {
		maxLength = DefaultCodeLength
	}

	digest := sha256.Sum256(blob)

	encoded := base64.RawURLEncoding.EncodeToString(digest[:min(maxLength, len(digest))])
	if len(encoded) > maxLength {
		encoded = encoded[:maxLength]
	}

	return Code(encoded)
}
