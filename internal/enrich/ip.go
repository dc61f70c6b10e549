package enrich

import (
	"net/http"
	"strings"
)

// ClientIP extracts the visitor IP from the request. The first hop of
// X-Forwarded-For wins, then X-Real-IP. Returns "unknown" when neither
// header is present.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		return strings.TrimSpace(fwd)
	}

	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}

	return "unknown"
}
