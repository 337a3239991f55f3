package crypto_test

import (
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/serroba/securelink/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCodec(t *testing.T) *crypto.Codec {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	codec, err := crypto.NewCodec(key)
	require.NoError(t, err)

	return codec
}

func TestNewCodec(t *testing.T) {
	t.Run("accepts 16, 24 and 32 byte keys", func(t *testing.T) {
		for _, size := range []int{16, 24, 32} {
			_, err := crypto.NewCodec(make([]byte, size))
			assert.NoError(t, err, "key size %d", size)
		}
	})

	t.Run("rejects other key sizes", func(t *testing.T) {
		for _, size := range []int{0, 8, 31, 33} {
			_, err := crypto.NewCodec(make([]byte, size))
			assert.Error(t, err, "key size %d", size)
		}
	})
}

func TestNewCodecFromString(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	t.Run("accepts standard base64", func(t *testing.T) {
		_, err := crypto.NewCodecFromString(base64.StdEncoding.EncodeToString(key))
		assert.NoError(t, err)
	})

	t.Run("accepts url-safe base64 without padding", func(t *testing.T) {
		_, err := crypto.NewCodecFromString(base64.RawURLEncoding.EncodeToString(key))
		assert.NoError(t, err)
	})

	t.Run("rejects empty key", func(t *testing.T) {
		_, err := crypto.NewCodecFromString("")
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := crypto.NewCodecFromString("not base64 at all!!!")
		assert.Error(t, err)
	})
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	original := map[string]any{
		"data": map[string]any{
			"action": "confirm",
			"count":  float64(3),
			"nested": map[string]any{"a": []any{"x", "y"}},
		},
		"token": "bearer-token",
	}

	blob, err := codec.Encrypt(original)
	require.NoError(t, err)

	var decrypted map[string]any
	require.NoError(t, codec.Decrypt(blob, &decrypted))

	assert.Equal(t, original, decrypted)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	codec := newTestCodec(t)

	value := map[string]any{"a": "b"}

	first, err := codec.Encrypt(value)
	require.NoError(t, err)

	second, err := codec.Encrypt(value)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptFailures(t *testing.T) {
	codec := newTestCodec(t)

	blob, err := codec.Encrypt(map[string]any{"a": "b"})
	require.NoError(t, err)

	t.Run("rejects tampered blob at every position", func(t *testing.T) {
		for i := range blob {
			tampered := make([]byte, len(blob))
			copy(tampered, blob)
			tampered[i] ^= 0x01

			var out map[string]any
			err := codec.Decrypt(tampered, &out)

			assert.ErrorIs(t, err, crypto.ErrDecrypt, "byte %d", i)
			assert.Nil(t, out)
		}
	})

	t.Run("rejects truncated blob", func(t *testing.T) {
		var out map[string]any
		assert.ErrorIs(t, codec.Decrypt(blob[:8], &out), crypto.ErrDecrypt)
	})

	t.Run("rejects empty blob", func(t *testing.T) {
		var out map[string]any
		assert.ErrorIs(t, codec.Decrypt(nil, &out), crypto.ErrDecrypt)
	})

	t.Run("rejects blob from a different key", func(t *testing.T) {
		other := newTestCodec(t)

		var out map[string]any
		assert.ErrorIs(t, other.Decrypt(blob, &out), crypto.ErrDecrypt)
	})
}
