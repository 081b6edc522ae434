// Package cryptox implements password hashing for stored credentials:
// PBKDF2-HMAC-SHA256 with a per-record random salt and iteration count.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLength is the size of a derived password hash in bytes.
	KeyLength = 32

	// SaltLength is the size of a generated salt in bytes.
	SaltLength = 16

	// DefaultMinIterations and DefaultMaxIterations bound the iteration
	// count drawn for every new password: [min, max).
	DefaultMinIterations = 80000
	DefaultMaxIterations = 100000
)

var ErrInvalidIterationRange = errors.New("invalid iteration range")

// Credentials is the stored form of one password.
type Credentials struct {
	Hash       []byte
	Salt       []byte
	Iterations int
}

// PasswordHasher derives and verifies password hashes.
// It is safe for concurrent use.
type PasswordHasher struct {
	minIterations int
	maxIterations int
	random        io.Reader
}

// Option configures a PasswordHasher.
type Option func(*PasswordHasher)

// WithIterationRange overrides the [min, max) iteration bounds.
func WithIterationRange(min, max int) Option {
	return func(h *PasswordHasher) {
		h.minIterations = min
		h.maxIterations = max
	}
}

// WithRandom replaces crypto/rand as the source for salts and iteration counts.
func WithRandom(r io.Reader) Option {
	return func(h *PasswordHasher) {
		h.random = r
	}
}

// NewPasswordHasher returns a hasher drawing iteration counts from
// [DefaultMinIterations, DefaultMaxIterations) unless overridden.
func NewPasswordHasher(opts ...Option) (*PasswordHasher, error) {
	h := &PasswordHasher{
		minIterations: DefaultMinIterations,
		maxIterations: DefaultMaxIterations,
		random:        rand.Reader,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.minIterations < 1 || h.maxIterations <= h.minIterations {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidIterationRange, h.minIterations, h.maxIterations)
	}
	return h, nil
}

// DeriveKey runs PBKDF2-HMAC-SHA256 and returns a KeyLength-byte digest.
// Identical inputs always produce the identical digest.
func (h *PasswordHasher) DeriveKey(password string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, KeyLength, sha256.New)
}

// GenerateSalt returns SaltLength random bytes.
func (h *PasswordHasher) GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(h.random, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// GenerateIterationCount returns a uniform random integer in [min, max).
func (h *PasswordHasher) GenerateIterationCount() (int, error) {
	n, err := rand.Int(h.random, big.NewInt(int64(h.maxIterations-h.minIterations)))
	if err != nil {
		return 0, fmt.Errorf("generate iteration count: %w", err)
	}
	return h.minIterations + int(n.Int64()), nil
}

// NewCredentials draws a fresh salt and iteration count and hashes password
// with them.
func (h *PasswordHasher) NewCredentials(password string) (*Credentials, error) {
	salt, err := h.GenerateSalt()
	if err != nil {
		return nil, err
	}
	iterations, err := h.GenerateIterationCount()
	if err != nil {
		return nil, err
	}
	return &Credentials{
		Hash:       h.DeriveKey(password, salt, iterations),
		Salt:       salt,
		Iterations: iterations,
	}, nil
}

// Verify re-derives the digest for password and compares it with expected
// in constant time.
func (h *PasswordHasher) Verify(password string, salt []byte, iterations int, expected []byte) bool {
	derived := h.DeriveKey(password, salt, iterations)
	return subtle.ConstantTimeCompare(derived, expected) == 1
}
