package domain

import "time"

// Session is one logical login (user + device). It survives any number of
// refresh rotations; CurrentFamilyID tracks the rotation chain it owns.
type Session struct {
	ID              string
	UserID          string
	CurrentFamilyID string
	DeviceName      string // human-readable, e.g. trimmed User-Agent
	DeviceID        string // fingerprint derived from User-Agent + IP
	IP              string
	CreatedAt       time.Time
	LastActiveAt    *time.Time
	ExpiresAt       time.Time  // absolute ceiling; rotation never extends past this
	RevokedAt       *time.Time // nil when not revoked
}

// Active reports whether the session is neither revoked nor past its ceiling at t.
func (s *Session) Active(t time.Time) bool {
	return s.RevokedAt == nil && t.Before(s.ExpiresAt)
}
