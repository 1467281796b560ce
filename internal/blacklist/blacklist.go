// Package blacklist tracks access-token IDs (jti) that must be rejected
// before their natural expiry, e.g. after logout or reuse detection.
// Entries carry a TTL equal to the token's remaining lifetime, so the
// store never grows beyond the set of still-valid revoked tokens.
package blacklist

import (
	"context"
	"time"
)

// Store is the jti denylist. Add records a token ID for ttl; Contains
// reports whether the ID was recorded and has not yet expired.
type Store interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}
