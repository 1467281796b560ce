package repository

import (
	"context"
	"time"

	"booking-platform/auth/internal/token/domain"
)

// Repository defines persistence for refresh-token records.
type Repository interface {
	GetByHash(ctx context.Context, tokenHash string) (*domain.Record, error)
	Create(ctx context.Context, r *domain.Record) error
	// Consume marks the record consumed and links its successor. It affects a
	// row only while consumed_at is still NULL and the record is not revoked,
	// and reports whether it did; a false return means a concurrent caller won
	// the rotation race.
	Consume(ctx context.Context, id, replacedBy string, at time.Time) (bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeAllByUser(ctx context.Context, userID string, exceptFamilyID string) error
	// DeleteExpired removes rows that expired before the given time together
	// with revoked rows; returns how many were deleted.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	Stats(ctx context.Context) (*domain.Stats, error)
}
