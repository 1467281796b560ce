package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"booking-platform/auth/internal/auth/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps service sentinel errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, service.ErrTokenReuseDetected):
		writeErrorMessage(w, http.StatusUnauthorized, "token reuse detected; session revoked")
	case errors.Is(err, service.ErrTokenExpired):
		writeErrorMessage(w, http.StatusUnauthorized, "token expired")
	case errors.Is(err, service.ErrRevoked):
		writeErrorMessage(w, http.StatusUnauthorized, "token revoked")
	case errors.Is(err, service.ErrInvalidToken):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, service.ErrSessionNotFound):
		writeErrorMessage(w, http.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrServiceUnavailable):
		writeErrorMessage(w, http.StatusServiceUnavailable, "service unavailable; retry")
	default:
		s.log.Error("unhandled error", zap.Error(err))
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// clearRefreshCookieOnRejection drops the cookie when the token is dead for
// good, so browsers stop replaying it. Transient failures keep the cookie.
func (s *Server) clearRefreshCookieOnRejection(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenReuseDetected),
		errors.Is(err, service.ErrRevoked):
		s.clearRefreshCookie(w)
	}
}

// deviceFingerprint derives a stable short id for the client from its user
// agent and IP. Recorded on refresh records for session listings and forensics.
func deviceFingerprint(userAgent, ip string) string {
	sum := sha256.Sum256([]byte(userAgent + ip))
	return hex.EncodeToString(sum[:])[:16]
}

// clientIP returns the requester's IP, trusting chi's RealIP middleware to
// have folded X-Forwarded-For into RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
