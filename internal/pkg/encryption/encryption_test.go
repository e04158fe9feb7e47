package encryption_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/pkg/encryption"
)

func newSealer(t *testing.T) *encryption.AESSealer {
	t.Helper()
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	sealer, err := encryption.NewAESSealer(key)
	require.NoError(t, err)
	return sealer
}

func TestNewAESSealer_InvalidKey(t *testing.T) {
	// Arrange - valid base64, wrong length
	key := "c2hvcnQ="

	// Act
	sealer, err := encryption.NewAESSealer(key)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, sealer)
	assert.Contains(t, err.Error(), "must be 32 bytes")
}

func TestAESSealer_SealOpen(t *testing.T) {
	// Arrange
	sealer := newSealer(t)

	// Act
	token, err := sealer.Seal([]byte("media/posts/42.jpg"))
	require.NoError(t, err)
	plaintext, err := sealer.Open(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "media/posts/42.jpg", string(plaintext))
	assert.False(t, strings.ContainsAny(token, "+/="))
}

func TestAESSealer_TokensDiffer(t *testing.T) {
	sealer := newSealer(t)

	a, err := sealer.Seal([]byte("same"))
	require.NoError(t, err)
	b, err := sealer.Seal([]byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestAESSealer_RejectsTamperedOrForeignTokens(t *testing.T) {
	sealer := newSealer(t)
	other := newSealer(t)

	token, err := sealer.Seal([]byte("payload"))
	require.NoError(t, err)

	_, err = other.Open(token)
	assert.Error(t, err)

	_, err = sealer.Open("AAAA")
	assert.Error(t, err)

	_, err = sealer.Open("!!not base64!!")
	assert.Error(t, err)
}
