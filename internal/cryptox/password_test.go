package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func newTestHasher(t *testing.T, opts ...Option) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(opts...)
	require.NoError(t, err)
	return h
}

func TestDeriveKey_KnownVectors(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		iterations int
		want       string
	}{
		{1, "120fb6cffcf8b32c43e7225256c4f837a86548c92ccc35480805987cb70be17b"},
		{2, "ae4d0c95af6b46d32d0adff928f06dd02a303f8ef3c251dfd6e2d85a95474c43"},
		{4096, "c5e478d59288c841aa530db6845c4c8d962893a001ce4e11a4963873aa98134a"},
	}

	for _, tt := range tests {
		got := h.DeriveKey("password", []byte("salt"), tt.iterations)
		assert.Len(t, got, KeyLength)
		assert.Equal(t, tt.want, hex.EncodeToString(got), "iterations=%d", tt.iterations)
	}
}

func TestDeriveKey_Deterministic(t *testing.T) {
	h := newTestHasher(t)
	salt := []byte("0123456789abcdef")

	a := h.DeriveKey("p@ss1", salt, 1000)
	b := h.DeriveKey("p@ss1", salt, 1000)
	assert.Equal(t, a, b)

	assert.NotEqual(t, a, h.DeriveKey("p@ss1", []byte("fedcba9876543210"), 1000))
	assert.NotEqual(t, a, h.DeriveKey("p@ss1", salt, 1001))
	assert.NotEqual(t, a, h.DeriveKey("p@ss2", salt, 1000))
}

func TestGenerateSalt(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.GenerateSalt()
	require.NoError(t, err)
	b, err := h.GenerateSalt()
	require.NoError(t, err)

	assert.Len(t, a, SaltLength)
	assert.Len(t, b, SaltLength)
	if bytes.Equal(a, b) {
		t.Logf("warning: two salts are identical; extremely unlikely")
	}
}

func TestGenerateIterationCount_Range(t *testing.T) {
	h := newTestHasher(t)

	for i := 0; i < 200; i++ {
		n, err := h.GenerateIterationCount()
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, DefaultMinIterations)
		require.Less(t, n, DefaultMaxIterations)
	}

	narrow := newTestHasher(t, WithIterationRange(5, 6))
	n, err := narrow.GenerateIterationCount()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestNewPasswordHasher_InvalidRange(t *testing.T) {
	for _, r := range [][2]int{{0, 10}, {10, 10}, {10, 5}} {
		_, err := NewPasswordHasher(WithIterationRange(r[0], r[1]))
		assert.ErrorIs(t, err, ErrInvalidIterationRange, "range %v", r)
	}
}

func TestRandomFailures(t *testing.T) {
	h := newTestHasher(t, WithRandom(failingReader{}))

	_, err := h.GenerateSalt()
	assert.ErrorContains(t, err, "generate salt: entropy exhausted")

	_, err = h.GenerateIterationCount()
	assert.ErrorContains(t, err, "generate iteration count")

	_, err = h.NewCredentials("p@ss1")
	assert.Error(t, err)
}

func TestNewCredentialsAndVerify(t *testing.T) {
	h := newTestHasher(t, WithIterationRange(1000, 2000))

	c, err := h.NewCredentials("p@ss1")
	require.NoError(t, err)
	assert.Len(t, c.Hash, KeyLength)
	assert.Len(t, c.Salt, SaltLength)
	assert.GreaterOrEqual(t, c.Iterations, 1000)
	assert.Less(t, c.Iterations, 2000)

	assert.True(t, h.Verify("p@ss1", c.Salt, c.Iterations, c.Hash))
	assert.False(t, h.Verify("wrong", c.Salt, c.Iterations, c.Hash))
	assert.False(t, h.Verify("p@ss1", c.Salt, c.Iterations+1, c.Hash))
	assert.False(t, h.Verify("p@ss1", c.Salt, c.Iterations, c.Hash[:16]))

	other, err := h.NewCredentials("p@ss1")
	require.NoError(t, err)
	assert.NotEqual(t, c.Hash, other.Hash, "same password must hash differently under a new salt")
}
