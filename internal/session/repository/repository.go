package repository

import (
	"context"
	"time"

	"booking-platform/auth/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ListActiveByUser returns non-revoked, non-expired sessions for the user,
	// most recently active first.
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	Revoke(ctx context.Context, id string, at time.Time) error
	// RevokeAllByUser revokes every session for the user except exceptID (pass
	// "" to revoke all). Returns the family ids of the sessions it revoked so
	// the caller can cascade to their refresh-token chains.
	RevokeAllByUser(ctx context.Context, userID string, exceptID string, at time.Time) ([]string, error)
	Touch(ctx context.Context, id string, at time.Time) error
}
