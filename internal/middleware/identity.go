package middleware

import (
	"context"
	"net/http"
)

// UserIDKey is the context key for the authenticated user ID.
const UserIDKey contextKey = "user_id"

// UserIDHeader carries the caller's identity, set by the auth gateway
// in front of this service.
const UserIDHeader = "X-User-ID"

// Identity extracts the caller identity from the X-User-ID header and
// rejects API requests that arrive without one.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserIDHeader)
		if userID == "" {
			http.Error(w, "missing user identity", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID retrieves the caller's user ID from context.
func GetUserID(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
