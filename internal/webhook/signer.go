// Package webhook provides webhook delivery and signing functionality.
package webhook

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSignature is returned when signature verification fails.
var ErrInvalidSignature = errors.New("invalid signature")

// signaturePrefix is prepended to the hex digest in the signature header.
const signaturePrefix = "sha256="

// Sign computes the HMAC-SHA256 signature of the payload body.
// The result has the form "sha256=<hex digest>".
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature against the payload body in constant time.
func Verify(secret, signature string, body []byte) error {
	if !strings.HasPrefix(signature, signaturePrefix) {
		return ErrInvalidSignature
	}

	expected := Sign(secret, body)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}

// GenerateSecret creates a cryptographically secure random secret.
func GenerateSecret() (string, error) {
	// 32 bytes = 256 bits of entropy, hex-encoded for easy copy-paste
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
