// Package crypto provides the authenticated encryption codec used to seal
// link records before they are stored.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDecrypt is returned for any blob that cannot be opened: truncated data,
// a failed integrity tag, or a plaintext that is not valid JSON. Callers must
// not distinguish between these causes.
var ErrDecrypt = errors.New("decryption failed")

// Codec seals and opens JSON-serializable values with AES-GCM. The random
// nonce is prepended to the ciphertext so the resulting blob is self-contained.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec creates a codec from a raw AES key (16, 24, or 32 bytes).
func NewCodec(key []byte) (*Codec, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	return &Codec{aead: aead}, nil
}

// NewCodecFromString creates a codec from a base64-encoded key, as provided
// through configuration. Standard and URL-safe alphabets are accepted, with
// or without padding.
func NewCodecFromString(encoded string) (*Codec, error) {
	if encoded == "" {
		return nil, errors.New("encryption key is required")
	}

	key, err := decodeKey(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	return NewCodec(key)
}

func decodeKey(encoded string) ([]byte, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error

	for _, enc := range encodings {
		key, err := enc.DecodeString(encoded)
		if err == nil {
			return key, nil
		}

		lastErr = err
	}

	return nil, lastErr
}

// Encrypt serializes v to JSON and seals it. Every call uses a fresh random
// nonce, so encrypting the same value twice yields different blobs.
func (c *Codec) Encrypt(v any) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize record: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	blob := make([]byte, 0, len(nonce)+len(plaintext)+c.aead.Overhead())
	blob = append(blob, nonce...)
	blob = append(blob, c.aead.Seal(nil, nonce, plaintext, nil)...)

	return blob, nil
}

// Decrypt opens a blob produced by Encrypt and unmarshals the plaintext into
// v. Any failure is reported as ErrDecrypt.
func (c *Codec) Decrypt(blob []byte, v any) error {
	if len(blob) < c.aead.NonceSize() {
		return ErrDecrypt
	}

	nonce := blob[:c.aead.NonceSize()]
	ciphertext := blob[c.aead.NonceSize():]

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return ErrDecrypt
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return ErrDecrypt
	}

	return nil
}
