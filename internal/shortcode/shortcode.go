// Package shortcode generates random short codes for links.
package shortcode

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

const (
	// alphabet is the character set for generated codes.
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultLength is the length of generated short codes.
	DefaultLength = 6

	// maxAttempts bounds the collision retry loop in Allocate.
	maxAttempts = 10
)

// ErrExhausted is returned when Allocate cannot find a free code
// within the attempt budget.
var ErrExhausted = errors.New("short code space exhausted")

// Generate returns a random short code of the given length.
func Generate(length int) (string, error) {
	if length <= 0 {
		length = DefaultLength
	}

	code := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code), nil
}

// ExistsFunc reports whether a short code is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// Allocator hands out short codes that are not currently in use.
// The existence check is advisory only: the database unique constraint
// remains the authority, and callers must handle insert conflicts.
type Allocator struct {
	exists ExistsFunc
	length int
}

// NewAllocator creates an Allocator with the given existence check.
func NewAllocator(exists ExistsFunc, length int) *Allocator {
	if length <= 0 {
		length = DefaultLength
	}
	return &Allocator{exists: exists, length: length}
}

// Allocate generates a short code that does not currently exist.
// Returns ErrExhausted after too many collisions.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		code, err := Generate(a.length)
		if err != nil {
			return "", err
		}

		taken, err := a.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	return "", ErrExhausted
}
