// Package service implements the credential verifier boundary: email+password
// in, user identity or a generic failure out.
package service

import (
	"context"
	"errors"
	"strings"

	"booking-platform/auth/internal/security"
	"booking-platform/auth/internal/user/domain"
	"booking-platform/auth/internal/user/repository"
)

// ErrBadCredentials is returned for every verification failure: unknown email,
// wrong password, or missing input. Callers must not distinguish these cases
// to avoid disclosing account existence.
var ErrBadCredentials = errors.New("bad credentials")

// Verifier checks email/password pairs against stored bcrypt hashes.
type Verifier struct {
	users  repository.Repository
	hasher *security.Hasher
}

// NewVerifier returns a Verifier over the given user repository and hasher.
func NewVerifier(users repository.Repository, hasher *security.Hasher) *Verifier {
	return &Verifier{users: users, hasher: hasher}
}

// Verify returns the user for a correct email/password pair, ErrBadCredentials
// for any mismatch, and a storage error only for backend failures.
func (v *Verifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrBadCredentials
	}
	u, err := v.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		// Burn a bcrypt comparison anyway so unknown emails take as long as
		// wrong passwords.
		_ = v.hasher.Compare("$2a$12$C6UzMDM.H6dfI/f/IKcEeO7ZoRbZJLnVjW5uXP1r1EZsmYyvpW0u6", []byte(password))
		return nil, ErrBadCredentials
	}
	if err := v.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}
