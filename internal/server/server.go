// Package server exposes the token lifecycle over HTTP: login, refresh,
// logout, and the session registry.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"booking-platform/auth/internal/auth/service"
	"booking-platform/auth/internal/security"
	sessiondomain "booking-platform/auth/internal/session/domain"
	"booking-platform/auth/internal/server/middleware"
	"booking-platform/auth/internal/token"
	tokendomain "booking-platform/auth/internal/token/domain"
	userdomain "booking-platform/auth/internal/user/domain"
)

// AuthAPI is the slice of the auth service the HTTP layer needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string, device token.DeviceInfo) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string, device token.DeviceInfo) (*service.AuthResult, error)
	Verify(ctx context.Context, accessToken string) (*security.AccessClaims, error)
	Logout(ctx context.Context, refreshToken string, access *security.AccessClaims) error
	ListSessions(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	RevokeSession(ctx context.Context, userID, sessionID string) error
	RevokeAllSessions(ctx context.Context, userID, exceptSessionID string) (int, error)
	GetUser(ctx context.Context, userID string) (*userdomain.User, error)
	TokenStats(ctx context.Context) (*tokendomain.Stats, error)
}

// Pinger reports storage liveness for the health endpoint (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options configures the Server beyond its dependencies.
type Options struct {
	// CookieDomain scopes the refresh cookie; empty means host-only.
	CookieDomain string
	// CookieSecure marks the refresh cookie Secure. Required in production.
	CookieSecure bool
}

// Server wires the auth service to HTTP routes.
type Server struct {
	auth AuthAPI
	db   Pinger
	log  *zap.Logger
	opts Options
}

// New returns a Server. db may be nil; the health endpoint then skips the
// storage ping.
func New(auth AuthAPI, db Pinger, log *zap.Logger, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, db: db, log: log, opts: opts}
}

// Handler builds the router. All routes live under /auth except /healthz.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.clientIPMiddleware)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(s.auth))
			r.Post("/logout-all", s.handleLogoutAll)
			r.Get("/sessions", s.handleListSessions)
			r.Delete("/sessions/{id}", s.handleRevokeSession)
			r.Get("/me", s.handleMe)
			r.With(middleware.RequireRole("admin")).Get("/stats", s.handleTokenStats)
		})
	})

	return otelhttp.NewHandler(r, "auth-http")
}

// clientIPMiddleware stashes the client IP in the context so the audit logger
// can record it without seeing the request.
func (s *Server) clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithClientIP(r.Context(), clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)))
	})
}
