package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"booking-platform/auth/internal/db"
	"booking-platform/auth/internal/token/domain"
)

// PostgresRepository persists refresh-token records. It runs over a DBTX so the
// same queries work on the pool or inside a rotation transaction.
type PostgresRepository struct {
	q db.DBTX
}

// NewPostgresRepository returns a refresh-token repository backed by q,
// which may be a *sql.DB or a *sql.Tx.
func NewPostgresRepository(q db.DBTX) *PostgresRepository {
	return &PostgresRepository{q: q}
}

const recordColumns = `id, token_hash, user_id, session_id, family_id, issued_at, expires_at,
	consumed_at, replaced_by, revoked, device_fingerprint, ip_address`

// GetByHash returns the record whose token_hash matches, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.Record, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// Create persists the record. The record must have ID and TokenHash set.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Record) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.TokenHash, rec.UserID, rec.SessionID, rec.FamilyID,
		rec.IssuedAt, rec.ExpiresAt, timeToNull(rec.ConsumedAt),
		nullIfEmpty(rec.ReplacedBy), rec.Revoked, rec.DeviceFingerprint, nullIfEmpty(rec.IP))
	return err
}

// Consume performs the single-use transition: consumed_at NULL → at, exactly
// once. The WHERE clause is the concurrency control; no in-process lock backs it.
func (r *PostgresRepository) Consume(ctx context.Context, id, replacedBy string, at time.Time) (bool, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET consumed_at = $2, replaced_by = $3
		 WHERE id = $1 AND consumed_at IS NULL AND NOT revoked`,
		id, at, replacedBy)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Revoke marks a single record revoked.
func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`, id)
	return err
}

// RevokeFamily marks every record in the rotation chain revoked, including
// already-consumed ancestors so the audit trail shows the whole chain dead.
func (r *PostgresRepository) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE family_id = $1`, familyID)
	return err
}

// RevokeAllByUser revokes every record belonging to the user, optionally
// sparing one family (the caller's own session during logout-everywhere-else).
func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID string, exceptFamilyID string) error {
	var err error
	if exceptFamilyID == "" {
		_, err = r.q.ExecContext(ctx,
			`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1`, userID)
	} else {
		_, err = r.q.ExecContext(ctx,
			`UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND family_id <> $2`,
			userID, exceptFamilyID)
	}
	return err
}

// DeleteExpired garbage-collects rows no longer needed for reuse detection:
// anything past its expiry ceiling, and revoked rows past theirs.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats returns aggregate counts over the refresh_tokens table.
func (r *PostgresRepository) Stats(ctx context.Context) (*domain.Stats, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE expires_at > now() AND NOT revoked AND consumed_at IS NULL),
			COUNT(*) FILTER (WHERE expires_at <= now()),
			COUNT(*) FILTER (WHERE revoked),
			COUNT(*) FILTER (WHERE consumed_at IS NOT NULL)
		FROM refresh_tokens`)
	var s domain.Stats
	if err := row.Scan(&s.Total, &s.Active, &s.Expired, &s.Revoked, &s.Consumed); err != nil {
		return nil, err
	}
	return &s, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		rec        domain.Record
		consumedAt sql.NullTime
		replacedBy sql.NullString
		ip         sql.NullString
	)
	err := row.Scan(&rec.ID, &rec.TokenHash, &rec.UserID, &rec.SessionID, &rec.FamilyID,
		&rec.IssuedAt, &rec.ExpiresAt, &consumedAt, &replacedBy, &rec.Revoked,
		&rec.DeviceFingerprint, &ip)
	if err != nil {
		return nil, err
	}
	if consumedAt.Valid {
		rec.ConsumedAt = &consumedAt.Time
	}
	rec.ReplacedBy = replacedBy.String
	rec.IP = ip.String
	return &rec, nil
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
