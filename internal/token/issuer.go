// Package token mints linked access/refresh token pairs.
package token

import (
	"time"

	"github.com/google/uuid"

	"booking-platform/auth/internal/security"
	"booking-platform/auth/internal/token/domain"
)

// Pair is a freshly minted access/refresh pair plus the record the caller must
// persist for the refresh half. Nothing is stored by the issuer itself.
type Pair struct {
	AccessToken     string
	AccessJTI       string
	AccessExpiresAt time.Time
	RefreshToken    string // raw opaque value; hand to the client, never store
	Record          *domain.Record
}

// DeviceInfo describes the client a pair is issued to; recorded on the refresh record.
type DeviceInfo struct {
	Fingerprint string
	Name        string
	IP          string
}

// Issuer constructs token pairs. Pure construction: no storage side effects,
// safe for concurrent use.
type Issuer struct {
	tokens     *security.TokenProvider
	hasher     *security.RefreshHasher
	refreshTTL time.Duration
}

// NewIssuer returns an Issuer that signs access tokens with tokens and hashes
// refresh tokens with hasher. refreshTTL is the per-rotation refresh lifetime;
// callers cap the record's expiry at the session ceiling.
func NewIssuer(tokens *security.TokenProvider, hasher *security.RefreshHasher, refreshTTL time.Duration) *Issuer {
	return &Issuer{tokens: tokens, hasher: hasher, refreshTTL: refreshTTL}
}

// RefreshTTL returns the per-rotation refresh-token lifetime.
func (i *Issuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssuePair mints an access/refresh pair for the session. An empty familyID
// starts a new rotation family (fresh login); a non-empty one continues the
// existing chain (rotation). notAfter is the absolute ceiling for the refresh
// record's expiry; zero means no ceiling beyond the refresh TTL.
func (i *Issuer) IssuePair(userID, role, sessionID, familyID string, device DeviceInfo, notAfter time.Time) (*Pair, error) {
	access, jti, accessExp, err := i.tokens.IssueAccess(userID, role, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, err := security.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if familyID == "" {
		familyID = uuid.New().String()
	}
	now := time.Now().UTC()
	expiresAt := now.Add(i.refreshTTL)
	if !notAfter.IsZero() && expiresAt.After(notAfter) {
		expiresAt = notAfter
	}
	rec := &domain.Record{
		ID:                uuid.New().String(),
		TokenHash:         i.hasher.Hash(refresh),
		UserID:            userID,
		SessionID:         sessionID,
		FamilyID:          familyID,
		IssuedAt:          now,
		ExpiresAt:         expiresAt,
		DeviceFingerprint: device.Fingerprint,
		IP:                device.IP,
	}
	return &Pair{
		AccessToken:     access,
		AccessJTI:       jti,
		AccessExpiresAt: accessExp,
		RefreshToken:    refresh,
		Record:          rec,
	}, nil
}
