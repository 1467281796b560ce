package domain

import "time"

// AuditLog represents one security-relevant event tied to a user account.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}

// SecurityEvent is the wire form of an audit event fanned out to the
// security topic for downstream consumers (SIEM, alerting).
type SecurityEvent struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip,omitempty"`
	Metadata  string    `json:"metadata,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
