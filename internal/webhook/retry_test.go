package webhook

import (
	"testing"
	"time"
)

func TestNextRetryDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		attemptCount int
		base         time.Duration
	}{
		{name: "first retry", attemptCount: 0, base: 1 * time.Minute},
		{name: "second retry", attemptCount: 1, base: 5 * time.Minute},
		{name: "third retry", attemptCount: 2, base: 30 * time.Minute},
		{name: "fourth retry", attemptCount: 3, base: 2 * time.Hour},
		{name: "fifth retry", attemptCount: 4, base: 12 * time.Hour},
		{name: "beyond ladder clamps to last", attemptCount: 9, base: 12 * time.Hour},
		{name: "negative clamps to first", attemptCount: -1, base: 1 * time.Minute},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			min := time.Duration(float64(tt.base) * (1 - JitterFactor))
			max := time.Duration(float64(tt.base) * (1 + JitterFactor))

			for i := 0; i < 50; i++ {
				delay := NextRetryDelay(tt.attemptCount)
				if delay < min || delay > max {
					t.Fatalf("NextRetryDelay(%d) = %v, want within [%v, %v]",
						tt.attemptCount, delay, min, max)
				}
			}
		})
	}
}

func TestIsExhausted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		attemptCount int
		maxAttempts  int
		want         bool
	}{
		{name: "fresh delivery", attemptCount: 0, maxAttempts: 5, want: false},
		{name: "one attempt left", attemptCount: 4, maxAttempts: 5, want: false},
		{name: "at limit", attemptCount: 5, maxAttempts: 5, want: true},
		{name: "past limit", attemptCount: 6, maxAttempts: 5, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsExhausted(tt.attemptCount, tt.maxAttempts); got != tt.want {
				t.Errorf("IsExhausted(%d, %d) = %v, want %v",
					tt.attemptCount, tt.maxAttempts, got, tt.want)
			}
		})
	}
}
