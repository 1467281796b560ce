package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-platform/auth/internal/db"
	"booking-platform/auth/internal/session/domain"
)

// PostgresRepository persists sessions over a DBTX (pool or transaction).
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a session repository backed by q.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const sessionColumns = `id, user_id, current_family_id, device_name, device_id, ip_address,
	created_at, last_active_at, expires_at, revoked_at`

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListActiveByUser returns the user's live sessions ordered by most recent
// activity (falling back to creation time for never-refreshed sessions).
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > now()
		 ORDER BY COALESCE(last_active_at, created_at) DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create persists the session. The session must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.ID, s.UserID, s.CurrentFamilyID, s.DeviceName, s.DeviceID,
		nullIfEmpty(s.IP), s.CreatedAt, timeToNull(s.LastActiveAt), s.ExpiresAt,
		timeToNull(s.RevokedAt))
	return err
}

// Revoke marks the session revoked at the given time.
func (r *PostgresRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, id, at)
	return err
}

// RevokeAllByUser revokes the user's sessions, sparing exceptID when non-empty,
// and returns the family ids that were cut loose.
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string, exceptID string, at time.Time) ([]string, error) {
	rows, err := r.q.QueryContext(ctx,
		`UPDATE sessions SET revoked_at = $2
		 WHERE user_id = $1 AND revoked_at IS NULL AND ($3 = '' OR id <> $3)
		 RETURNING current_family_id`, userID, at, exceptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

// Touch sets the session's last-active timestamp.
func (r *PostgresRepository) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = $2 WHERE id = $1`, id, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var (
		s          domain.Session
		ip         sql.NullString
		lastActive sql.NullTime
		revokedAt  sql.NullTime
	)
	err := row.Scan(&s.ID, &s.UserID, &s.CurrentFamilyID, &s.DeviceName, &s.DeviceID,
		&ip, &s.CreatedAt, &lastActive, &s.ExpiresAt, &revokedAt)
	if err != nil {
		return nil, err
	}
	s.IP = ip.String
	if lastActive.Valid {
		s.LastActiveAt = &lastActive.Time
	}
	if revokedAt.Valid {
		s.RevokedAt = &revokedAt.Time
	}
	return &s, nil
}

func timeToNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
