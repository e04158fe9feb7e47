package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/wayfarer/content-service/internal/pkg/encryption"
)

// MockSealer is a mock implementation of encryption.Sealer.
type MockSealer struct {
	mock.Mock
}

var _ encryption.Sealer = (*MockSealer)(nil)

// Seal encrypts plaintext and returns a token.
func (m *MockSealer) Seal(plaintext []byte) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

// Open decrypts a token.
func (m *MockSealer) Open(token string) ([]byte, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
