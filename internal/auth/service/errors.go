package service

import "errors"

// Sentinel errors for the auth service; the handler maps them to HTTP status codes.
var (
	// ErrInvalidCredentials is returned for any login failure: unknown email,
	// wrong password, or missing input. Deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for tokens that are malformed, unknown, or
	// fail signature verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for tokens that are otherwise valid but past
	// their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenReuseDetected is returned when an already-consumed refresh token
	// is presented again. By then the whole rotation family and its session
	// have been revoked.
	ErrTokenReuseDetected = errors.New("refresh token reuse detected; session revoked")
	// ErrRevoked is returned when the token itself verifies but its session,
	// family, or jti has been revoked.
	ErrRevoked = errors.New("token revoked")
	// ErrSessionNotFound is returned when a session id does not exist or does
	// not belong to the calling user.
	ErrSessionNotFound = errors.New("session not found")
	// ErrServiceUnavailable is returned when a storage backend fails; the
	// request can be retried.
	ErrServiceUnavailable = errors.New("service unavailable")
)
