// Package audit records security-relevant account events: persisted to
// Postgres for per-user history and fanned out best-effort to the security
// topic for downstream consumers.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booking-platform/auth/internal/audit/domain"
	auditrepo "booking-platform/auth/internal/audit/repository"
	"booking-platform/auth/internal/audit/producer"
)

// Audit actions recorded by the token lifecycle code paths.
const (
	ActionLoginSuccess       = "login_success"
	ActionLoginFailure       = "login_failure"
	ActionTokenRefresh       = "token_refresh"
	ActionTokenReuseDetected = "token_reuse_detected"
	ActionLogout             = "logout"
	ActionSessionRevoked     = "session_revoked"
	ActionSessionsRevokedAll = "sessions_revoked_all"
)

// ResourceAuth is the resource value for all token lifecycle events.
const ResourceAuth = "auth"

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event with explicit action/resource.
// LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional IP
// extractor, and an optional security-event producer.
type Logger struct {
	repo        auditrepo.Repository
	producer    producer.Producer
	ipExtractor IPExtractor
	log         *zap.Logger
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor
// for client IP. ipExtractor may be nil; then IP is recorded as "unknown".
// p may be nil; then no events are fanned out.
func NewLogger(repo auditrepo.Repository, p producer.Producer, ipExtractor IPExtractor, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{repo: repo, producer: p, ipExtractor: ipExtractor, log: log}
}

// LogEvent writes one audit log entry and fans it out to the security topic.
// Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		l.log.Warn("audit: failed to log event",
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err))
	}
	EmitAsync(l.producer, &domain.SecurityEvent{
		EventID:   entry.ID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Resource:  entry.Resource,
		IP:        entry.IP,
		Metadata:  entry.Metadata,
		Timestamp: entry.CreatedAt,
	}, l.log)
}
