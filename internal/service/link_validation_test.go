package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateDestination(t *testing.T) {
	svc := &LinkService{}

	longDest := "https://example.com/" + strings.Repeat("a", maxDestinationLength)

	tests := []struct {
		name    string
		dest    string
		wantErr error
	}{
		{"empty", "", ErrInvalidDestination},
		{"invalid_scheme", "ftp://example.com", ErrInvalidDestination},
		{"javascript_scheme", "javascript:alert(1)", ErrInvalidDestination},
		{"missing_host", "https://", ErrInvalidDestination},
		{"too_long", longDest, ErrURLTooLong},
		{"valid_https", "https://example.com/path", nil},
		{"valid_http", "http://example.com", nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := svc.validateDestination(test.dest)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestCreateLinkValidationErrors(t *testing.T) {
	svc := &LinkService{}

	now := time.Now().UTC()
	past := now.Add(-1 * time.Hour)
	zero := int64(0)
	negative := int64(-5)

	tests := []struct {
		name    string
		input   CreateLinkInput
		wantErr error
	}{
		{
			name: "invalid_short_code",
			input: CreateLinkInput{
				OriginalURL: "https://example.com",
				ShortCode:   "!!",
			},
			wantErr: ErrInvalidShortCode,
		},
		{
			name: "short_code_too_short",
			input: CreateLinkInput{
				OriginalURL: "https://example.com",
				ShortCode:   "ab",
			},
			wantErr: ErrInvalidShortCode,
		},
		{
			name: "expires_in_past",
			input: CreateLinkInput{
				OriginalURL: "https://example.com",
				ExpiresAt:   &past,
			},
			wantErr: ErrExpiresInPast,
		},
		{
			name: "zero_max_clicks",
			input: CreateLinkInput{
				OriginalURL: "https://example.com",
				MaxClicks:   &zero,
			},
			wantErr: ErrInvalidMaxClicks,
		},
		{
			name: "negative_max_clicks",
			input: CreateLinkInput{
				OriginalURL: "https://example.com",
				MaxClicks:   &negative,
			},
			wantErr: ErrInvalidMaxClicks,
		},
		{
			name: "bad_destination",
			input: CreateLinkInput{
				OriginalURL: "ftp://example.com",
			},
			wantErr: ErrInvalidDestination,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateLink(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}
