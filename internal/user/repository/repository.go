package repository

import (
	"context"

	"booking-platform/auth/internal/user/domain"
)

// Repository defines the read surface the credential verifier needs.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
