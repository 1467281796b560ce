package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"booking-platform/auth/internal/audit/domain"
)

// recordingDB captures the arguments of the last ExecContext call.
type recordingDB struct {
	query string
	args  []any
}

func (r *recordingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	r.query = query
	r.args = args
	return noopResult{}, nil
}

func (r *recordingDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return nil, nil
}

func (r *recordingDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return nil
}

type noopResult struct{}

func (noopResult) LastInsertId() (int64, error) { return 0, nil }
func (noopResult) RowsAffected() (int64, error) { return 1, nil }

// Failed logins are recorded without a user. The user_id column is NOT NULL,
// so the repository must insert the empty string as-is rather than mapping it
// to SQL NULL.
func TestCreate_AnonymousUserInsertsEmptyString(t *testing.T) {
	rec := &recordingDB{}
	repo := NewPostgresRepository(rec)

	err := repo.Create(context.Background(), &domain.AuditLog{
		ID:        "log-1",
		UserID:    "",
		Action:    "login_failure",
		Resource:  "auth",
		IP:        "203.0.113.9",
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(rec.args) != 7 {
		t.Fatalf("got %d insert args, want 7", len(rec.args))
	}
	uid, ok := rec.args[1].(string)
	if !ok {
		t.Fatalf("user_id arg is %T, want string", rec.args[1])
	}
	if uid != "" {
		t.Errorf("user_id = %q, want empty string", uid)
	}
}

func TestCreate_EmptyMetadataInsertsNull(t *testing.T) {
	rec := &recordingDB{}
	repo := NewPostgresRepository(rec)

	if err := repo.Create(context.Background(), &domain.AuditLog{
		ID:        "log-2",
		UserID:    "user-1",
		Action:    "logout",
		Resource:  "auth",
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	meta, ok := rec.args[5].(sql.NullString)
	if !ok {
		t.Fatalf("metadata arg is %T, want sql.NullString", rec.args[5])
	}
	if meta.Valid {
		t.Error("empty metadata should be inserted as NULL")
	}
}
