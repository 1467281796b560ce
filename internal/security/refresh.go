package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// refreshTokenBytes is the entropy of an opaque refresh token (256 bits).
const refreshTokenBytes = 32

// ErrEmptyPepper is returned when a RefreshHasher is constructed without a secret.
var ErrEmptyPepper = errors.New("refresh token pepper must not be empty")

// NewRefreshToken returns a new opaque refresh-token value: 256 bits of
// randomness, base64url-encoded. The raw value goes to the client; only its
// salted hash is ever persisted.
func NewRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RefreshHasher hashes refresh tokens for storage using HMAC-SHA256 with a
// server-side pepper, so a leaked refresh_tokens table cannot be matched
// against tokens captured on the wire.
type RefreshHasher struct {
	pepper []byte
}

// NewRefreshHasher returns a RefreshHasher keyed with the given pepper.
func NewRefreshHasher(pepper string) (*RefreshHasher, error) {
	if pepper == "" {
		return nil, ErrEmptyPepper
	}
	return &RefreshHasher{pepper: []byte(pepper)}, nil
}

// Hash returns the hex-encoded HMAC-SHA256 of the refresh token.
func (h *RefreshHasher) Hash(token string) string {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Equal performs constant-time comparison of the provided token's hash with
// the stored hash. Returns true only if they match.
func (h *RefreshHasher) Equal(providedToken, storedHash string) bool {
	providedHash := h.Hash(providedToken)
	return subtle.ConstantTimeCompare([]byte(providedHash), []byte(storedHash)) == 1
}
