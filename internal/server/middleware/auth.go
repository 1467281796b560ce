// Package middleware holds the HTTP middleware for the auth server: Bearer
// token enforcement and request-scoped identity/IP context.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"booking-platform/auth/internal/security"
)

const bearerPrefix = "bearer "

// TokenVerifier validates an access token end to end: signature, expiry, and
// jti blacklist. The auth service implements it.
type TokenVerifier interface {
	Verify(ctx context.Context, accessToken string) (*security.AccessClaims, error)
}

// RequireAuth returns middleware that validates the Bearer access token and
// sets user_id, role, session_id, and jti in the request context. Requests
// without a valid token get 401.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearer(r)
			if token == "" {
				unauthorized(w)
				return
			}
			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}
			ctx := WithIdentity(r.Context(), claims.Subject, claims.Role, claims.SessionID, claims.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractBearer returns the Bearer token from the Authorization header, or ""
// if missing or malformed.
func ExtractBearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "missing or invalid authorization"})
}
