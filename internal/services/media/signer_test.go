package media_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wayfarer/content-service/internal/pkg/encryption"
	"github.com/wayfarer/content-service/internal/services/media"
	"github.com/wayfarer/content-service/tests/mocks"
)

func newSigner(t *testing.T, now *time.Time) *media.TokenSigner {
	t.Helper()
	key, err := encryption.GenerateKey()
	require.NoError(t, err)
	sealer, err := encryption.NewAESSealer(key)
	require.NoError(t, err)

	return media.NewTokenSigner(sealer, "https://cdn.example.com/media/", 15*time.Minute).
		WithClock(func() time.Time { return *now })
}

func TestTokenSigner_SignAndResolve(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	signer := newSigner(t, &now)

	url, expires, err := signer.Sign("posts/42/cover.jpg")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://cdn.example.com/media/"))
	assert.Equal(t, now.Add(15*time.Minute), expires)

	token := strings.TrimPrefix(url, "https://cdn.example.com/media/")
	ref, err := signer.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "posts/42/cover.jpg", ref)
}

func TestTokenSigner_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	signer := newSigner(t, &now)

	url, _, err := signer.Sign("posts/42/cover.jpg")
	require.NoError(t, err)
	token := url[strings.LastIndex(url, "/")+1:]

	now = now.Add(16 * time.Minute)
	_, err = signer.Resolve(token)
	assert.True(t, errors.Is(err, media.ErrExpired))
}

func TestTokenSigner_EmptyRefAndBadToken(t *testing.T) {
	now := time.Now()
	signer := newSigner(t, &now)

	url, _, err := signer.Sign("")
	require.NoError(t, err)
	assert.Empty(t, url)

	_, err = signer.Resolve("garbage")
	assert.True(t, errors.Is(err, media.ErrInvalidToken))
}

func TestTokenSigner_SealerFailure(t *testing.T) {
	sealer := &mocks.MockSealer{}
	sealer.On("Seal", mock.Anything).Return("", assert.AnError)
	sealer.On("Open", "tampered").Return(nil, assert.AnError)

	signer := media.NewTokenSigner(sealer, "https://cdn.example.com/media", time.Minute)

	_, _, err := signer.Sign("posts/a.jpg")
	assert.ErrorIs(t, err, assert.AnError)

	_, err = signer.Resolve("tampered")
	assert.ErrorIs(t, err, media.ErrInvalidToken)
	sealer.AssertExpectations(t)
}
