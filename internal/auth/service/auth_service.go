// Package service implements the token lifecycle: login, rotation with reuse
// detection, verification against the jti blacklist, logout, and the session
// registry operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"booking-platform/auth/internal/audit"
	"booking-platform/auth/internal/blacklist"
	"booking-platform/auth/internal/security"
	sessiondomain "booking-platform/auth/internal/session/domain"
	"booking-platform/auth/internal/telemetry/otel"
	"booking-platform/auth/internal/token"
	tokendomain "booking-platform/auth/internal/token/domain"
	userdomain "booking-platform/auth/internal/user/domain"
	userservice "booking-platform/auth/internal/user/service"
)

const defaultStorageTimeout = 3 * time.Second

// AuthResult holds the outcome of Login or Refresh.
type AuthResult struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	UserID           string
	Role             string
	SessionID        string
}

// CredentialVerifier checks an email/password pair and returns the user.
// Implementations return userservice.ErrBadCredentials for any mismatch.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*userdomain.User, error)
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// TokenRepo is the minimal refresh-token repository needed by the auth service.
type TokenRepo interface {
	GetByHash(ctx context.Context, tokenHash string) (*tokendomain.Record, error)
	Create(ctx context.Context, r *tokendomain.Record) error
	Consume(ctx context.Context, id, replacedBy string, at time.Time) (bool, error)
	RevokeFamily(ctx context.Context, familyID string) error
	RevokeAllByUser(ctx context.Context, userID string, exceptFamilyID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	Stats(ctx context.Context) (*tokendomain.Stats, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	GetByID(ctx context.Context, id string) (*sessiondomain.Session, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	Create(ctx context.Context, s *sessiondomain.Session) error
	Revoke(ctx context.Context, id string, at time.Time) error
	RevokeAllByUser(ctx context.Context, userID string, exceptID string, at time.Time) ([]string, error)
	Touch(ctx context.Context, id string, at time.Time) error
}

// Deps bundles the dependencies of AuthService. Audit, Metrics, and Log may be
// nil; the service then skips the corresponding side channel.
type Deps struct {
	Verifier  CredentialVerifier
	Users     UserRepo
	Tokens    TokenRepo
	Sessions  SessionRepo
	Tx        TxRunner
	Issuer    *token.Issuer
	Access    *security.TokenProvider
	Hasher    *security.RefreshHasher
	Blacklist blacklist.Store
	Audit     audit.AuditLogger
	Metrics   *otel.AuthMetrics
	Log       *zap.Logger

	// StorageTimeout bounds each storage round trip; zero means 3s.
	StorageTimeout time.Duration
	// SessionCeiling is the absolute session lifetime; no rotation extends a
	// session past creation time plus this.
	SessionCeiling time.Duration
}

// AuthService implements login, refresh-token rotation, access verification,
// logout, and session management.
type AuthService struct {
	verifier  CredentialVerifier
	users     UserRepo
	tokens    TokenRepo
	sessions  SessionRepo
	txr       TxRunner
	issuer    *token.Issuer
	access    *security.TokenProvider
	hasher    *security.RefreshHasher
	blacklist blacklist.Store
	audit     audit.AuditLogger
	metrics   *otel.AuthMetrics
	log       *zap.Logger

	storageTimeout time.Duration
	sessionCeiling time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(d Deps) *AuthService {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	timeout := d.StorageTimeout
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	return &AuthService{
		verifier:       d.Verifier,
		users:          d.Users,
		tokens:         d.Tokens,
		sessions:       d.Sessions,
		txr:            d.Tx,
		issuer:         d.Issuer,
		access:         d.Access,
		hasher:         d.Hasher,
		blacklist:      d.Blacklist,
		audit:          d.Audit,
		metrics:        d.Metrics,
		log:            log,
		storageTimeout: timeout,
		sessionCeiling: d.SessionCeiling,
	}
}

// Login authenticates the email/password pair, opens a session, and mints the
// first token pair of a new rotation family.
func (s *AuthService) Login(ctx context.Context, email, password string, device token.DeviceInfo) (*AuthResult, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	u, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, userservice.ErrBadCredentials) {
			s.metrics.RecordLogin(ctx, "failure")
			s.auditEvent(ctx, "", audit.ActionLoginFailure, fmt.Sprintf(`{"email":%q}`, email))
			return nil, ErrInvalidCredentials
		}
		return nil, s.unavailable("login: verify credentials", err)
	}

	now := time.Now().UTC()
	sess := &sessiondomain.Session{
		ID:         uuid.New().String(),
		UserID:     u.ID,
		DeviceName: device.Name,
		DeviceID:   device.Fingerprint,
		IP:         device.IP,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionCeiling),
	}
	pair, err := s.issuer.IssuePair(u.ID, u.Role, sess.ID, "", device, sess.ExpiresAt)
	if err != nil {
		return nil, s.unavailable("login: issue tokens", err)
	}
	sess.CurrentFamilyID = pair.Record.FamilyID

	err = s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
		if err := sessions.Create(ctx, sess); err != nil {
			return err
		}
		return tokens.Create(ctx, pair.Record)
	})
	if err != nil {
		return nil, s.unavailable("login: persist session", err)
	}

	s.metrics.RecordLogin(ctx, "success")
	s.auditEvent(ctx, u.ID, audit.ActionLoginSuccess, fmt.Sprintf(`{"session_id":%q}`, sess.ID))
	return &AuthResult{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.Record.ExpiresAt,
		UserID:           u.ID,
		Role:             u.Role,
		SessionID:        sess.ID,
	}, nil
}

// Refresh consumes the presented refresh token and mints its successor pair.
// Presenting an already-consumed token revokes the whole family and its
// session and returns ErrTokenReuseDetected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, device token.DeviceInfo) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()

	hash := s.hasher.Hash(refreshToken)
	now := time.Now().UTC()

	var (
		result   *AuthResult
		reuseErr error
		userID   string
		familyID string
	)
	err := s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
		rec, err := tokens.GetByHash(ctx, hash)
		if err != nil {
			return err
		}
		if rec == nil {
			return ErrInvalidToken
		}
		userID, familyID = rec.UserID, rec.FamilyID
		// Revoked wins over consumed: a dead family stays plain ErrRevoked
		// on re-presentation instead of re-firing reuse detection.
		if rec.Revoked {
			return ErrRevoked
		}
		if rec.ConsumedAt != nil {
			// Reuse of a consumed token means either theft or an honest
			// client that lost the rotation race; either way the chain is
			// compromised. The revocations must commit.
			if err := tokens.RevokeFamily(ctx, rec.FamilyID); err != nil {
				return err
			}
			if err := sessions.Revoke(ctx, rec.SessionID, now); err != nil {
				return err
			}
			reuseErr = ErrTokenReuseDetected
			return nil
		}
		if !rec.ExpiresAt.After(now) {
			return ErrTokenExpired
		}
		sess, err := sessions.GetByID(ctx, rec.SessionID)
		if err != nil {
			return err
		}
		if sess == nil || !sess.Active(now) {
			return ErrRevoked
		}
		u, err := s.users.GetByID(ctx, rec.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			// Account gone; retire the chain.
			if err := tokens.RevokeFamily(ctx, rec.FamilyID); err != nil {
				return err
			}
			if err := sessions.Revoke(ctx, rec.SessionID, now); err != nil {
				return err
			}
			reuseErr = ErrRevoked
			return nil
		}
		pair, err := s.issuer.IssuePair(u.ID, u.Role, sess.ID, rec.FamilyID, device, sess.ExpiresAt)
		if err != nil {
			return err
		}
		ok, err := tokens.Consume(ctx, rec.ID, pair.Record.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent caller consumed the token first.
			if err := tokens.RevokeFamily(ctx, rec.FamilyID); err != nil {
				return err
			}
			if err := sessions.Revoke(ctx, rec.SessionID, now); err != nil {
				return err
			}
			reuseErr = ErrTokenReuseDetected
			return nil
		}
		if err := tokens.Create(ctx, pair.Record); err != nil {
			return err
		}
		if err := sessions.Touch(ctx, sess.ID, now); err != nil {
			return err
		}
		result = &AuthResult{
			AccessToken:      pair.AccessToken,
			AccessExpiresAt:  pair.AccessExpiresAt,
			RefreshToken:     pair.RefreshToken,
			RefreshExpiresAt: pair.Record.ExpiresAt,
			UserID:           u.ID,
			Role:             u.Role,
			SessionID:        sess.ID,
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrRevoked):
			s.metrics.RecordRotation(ctx, "rejected")
			return nil, err
		default:
			return nil, s.unavailable("refresh", err)
		}
	}
	if reuseErr != nil {
		if errors.Is(reuseErr, ErrTokenReuseDetected) {
			s.metrics.RecordRotation(ctx, "reuse")
			s.metrics.RecordReuseDetected(ctx)
			s.auditEvent(ctx, userID, audit.ActionTokenReuseDetected, fmt.Sprintf(`{"family_id":%q}`, familyID))
			s.log.Warn("refresh token reuse detected",
				zap.String("user_id", userID),
				zap.String("family_id", familyID))
		} else {
			s.metrics.RecordRotation(ctx, "rejected")
		}
		return nil, reuseErr
	}
	s.metrics.RecordRotation(ctx, "success")
	s.auditEvent(ctx, result.UserID, audit.ActionTokenRefresh, fmt.Sprintf(`{"session_id":%q}`, result.SessionID))
	return result, nil
}

// Verify checks an access token's signature, expiry, and jti blacklist status.
// A blacklist backend failure fails closed with ErrServiceUnavailable.
func (s *AuthService) Verify(ctx context.Context, accessToken string) (*security.AccessClaims, error) {
	claims, err := s.access.VerifyAccess(accessToken)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			s.metrics.RecordVerification(ctx, "expired")
			return nil, ErrTokenExpired
		}
		s.metrics.RecordVerification(ctx, "invalid")
		return nil, ErrInvalidToken
	}
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	banned, err := s.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, s.unavailable("verify: blacklist lookup", err)
	}
	if banned {
		s.metrics.RecordVerification(ctx, "blacklisted")
		return nil, ErrRevoked
	}
	s.metrics.RecordVerification(ctx, "success")
	return claims, nil
}

// Logout revokes the refresh chain and session behind the presented refresh
// token, blacklists the access token's jti for its remaining lifetime, and is
// idempotent: unknown or already-revoked tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, access *security.AccessClaims) error {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	now := time.Now().UTC()

	var userID string
	revokedSession := false
	if refreshToken != "" {
		hash := s.hasher.Hash(refreshToken)
		err := s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
			rec, err := tokens.GetByHash(ctx, hash)
			if err != nil {
				return err
			}
			if rec == nil {
				return nil
			}
			userID = rec.UserID
			revokedSession = true
			if err := tokens.RevokeFamily(ctx, rec.FamilyID); err != nil {
				return err
			}
			return sessions.Revoke(ctx, rec.SessionID, now)
		})
		if err != nil {
			return s.unavailable("logout", err)
		}
	}
	if access != nil {
		if userID == "" {
			userID = access.Subject
		}
		if !revokedSession && access.SessionID != "" {
			// Bearer-only logout: retire the session's current chain.
			err := s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
				sess, err := sessions.GetByID(ctx, access.SessionID)
				if err != nil {
					return err
				}
				if sess == nil {
					return nil
				}
				if sess.CurrentFamilyID != "" {
					if err := tokens.RevokeFamily(ctx, sess.CurrentFamilyID); err != nil {
						return err
					}
				}
				return sessions.Revoke(ctx, sess.ID, now)
			})
			if err != nil {
				return s.unavailable("logout", err)
			}
		}
		if access.ExpiresAt != nil {
			ttl := time.Until(access.ExpiresAt.Time)
			if err := s.blacklist.Add(ctx, access.ID, ttl); err != nil {
				return s.unavailable("logout: blacklist", err)
			}
		}
	}
	s.auditEvent(ctx, userID, audit.ActionLogout, "")
	return nil
}

// ListSessions returns the user's active sessions, most recently active first.
func (s *AuthService) ListSessions(ctx context.Context, userID string) ([]*sessiondomain.Session, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	sessions, err := s.sessions.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, s.unavailable("list sessions", err)
	}
	return sessions, nil
}

// RevokeSession revokes one of the user's sessions and its refresh chain.
// Returns ErrSessionNotFound when the session does not exist or belongs to
// another user.
func (s *AuthService) RevokeSession(ctx context.Context, userID, sessionID string) error {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	now := time.Now().UTC()

	err := s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
		sess, err := sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess == nil || sess.UserID != userID {
			return ErrSessionNotFound
		}
		if sess.CurrentFamilyID != "" {
			if err := tokens.RevokeFamily(ctx, sess.CurrentFamilyID); err != nil {
				return err
			}
		}
		return sessions.Revoke(ctx, sessionID, now)
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return err
		}
		return s.unavailable("revoke session", err)
	}
	s.auditEvent(ctx, userID, audit.ActionSessionRevoked, fmt.Sprintf(`{"session_id":%q}`, sessionID))
	return nil
}

// RevokeAllSessions revokes every session and refresh chain for the user
// except exceptSessionID (pass "" to revoke all). Returns how many sessions
// were revoked.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID, exceptSessionID string) (int, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	now := time.Now().UTC()

	var revoked int
	err := s.txr.RunInTx(ctx, func(tokens TokenRepo, sessions SessionRepo) error {
		families, err := sessions.RevokeAllByUser(ctx, userID, exceptSessionID, now)
		if err != nil {
			return err
		}
		revoked = len(families)
		exceptFamily := ""
		if exceptSessionID != "" {
			sess, err := sessions.GetByID(ctx, exceptSessionID)
			if err != nil {
				return err
			}
			if sess != nil {
				exceptFamily = sess.CurrentFamilyID
			}
		}
		return tokens.RevokeAllByUser(ctx, userID, exceptFamily)
	})
	if err != nil {
		return 0, s.unavailable("revoke all sessions", err)
	}
	s.auditEvent(ctx, userID, audit.ActionSessionsRevokedAll, fmt.Sprintf(`{"revoked":%d}`, revoked))
	return revoked, nil
}

// GetUser returns the user behind a verified token's subject. Returns
// ErrRevoked when the account no longer exists.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*userdomain.User, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.unavailable("get user", err)
	}
	if u == nil {
		return nil, ErrRevoked
	}
	return u, nil
}

// PurgeExpired deletes refresh-token rows that are expired or revoked;
// returns how many were removed. Run periodically by the janitor.
func (s *AuthService) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	n, err := s.tokens.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, s.unavailable("purge expired tokens", err)
	}
	return n, nil
}

// TokenStats returns aggregate refresh-token counts for operational visibility.
func (s *AuthService) TokenStats(ctx context.Context) (*tokendomain.Stats, error) {
	ctx, cancel := s.storageCtx(ctx)
	defer cancel()
	st, err := s.tokens.Stats(ctx)
	if err != nil {
		return nil, s.unavailable("token stats", err)
	}
	return st, nil
}

func (s *AuthService) storageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.storageTimeout)
}

// unavailable logs the storage failure and returns the retryable sentinel.
func (s *AuthService) unavailable(op string, err error) error {
	s.log.Error("auth: storage failure", zap.String("op", op), zap.Error(err))
	return ErrServiceUnavailable
}

func (s *AuthService) auditEvent(ctx context.Context, userID, action, metadata string) {
	if s.audit == nil {
		return
	}
	s.audit.LogEvent(ctx, userID, action, audit.ResourceAuth, metadata)
}
