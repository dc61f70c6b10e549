package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("HashPassword() = %q, want $argon2id$ prefix", hash)
	}

	// Hashing the same password twice must produce different hashes (random salt)
	hash2, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == hash2 {
		t.Error("HashPassword() produced identical hashes for same input")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  error
	}{
		{name: "correct password", password: "correct-horse", hash: hash, want: true},
		{name: "wrong password", password: "battery-staple", hash: hash, want: false},
		{name: "empty password", password: "", hash: hash, want: false},
		{name: "malformed hash", password: "x", hash: "not-a-hash", wantErr: ErrInvalidHash},
		{name: "wrong algorithm", password: "x", hash: "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA", wantErr: ErrInvalidHash},
		{name: "bad version", password: "x", hash: "$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA", wantErr: ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := VerifyPassword(tt.password, tt.hash)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("VerifyPassword() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyPassword() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}
