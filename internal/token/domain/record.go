package domain

import "time"

// Record is one persisted refresh token. Records sharing a FamilyID form one
// unbranching rotation chain back to the login that started it.
type Record struct {
	ID                string
	TokenHash         string // salted hash; the raw token value is never stored
	UserID            string
	SessionID         string
	FamilyID          string
	IssuedAt          time.Time
	ExpiresAt         time.Time
	ConsumedAt        *time.Time // nil until used for rotation; set exactly once
	ReplacedBy        string     // id of the successor record; empty for the chain head
	Revoked           bool       // deliberately invalidated (logout, reuse, bulk revoke)
	DeviceFingerprint string
	IP                string
}

// Usable reports whether the record can still be presented for rotation at t:
// not revoked, not consumed, and not past its expiry ceiling.
func (r *Record) Usable(t time.Time) bool {
	return !r.Revoked && r.ConsumedAt == nil && t.Before(r.ExpiresAt)
}

// Stats summarizes the refresh_tokens table for operational visibility.
type Stats struct {
	Total    int64
	Active   int64
	Expired  int64
	Revoked  int64
	Consumed int64
}
