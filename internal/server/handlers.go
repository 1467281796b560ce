package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"booking-platform/auth/internal/auth/service"
	"booking-platform/auth/internal/server/middleware"
	"booking-platform/auth/internal/token"
	userdomain "booking-platform/auth/internal/user/domain"
)

// refreshCookieName is the HttpOnly cookie carrying the refresh token for
// browser clients. Scoped to /auth so it is only sent to token endpoints.
const refreshCookieName = "refresh_token"

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	SessionID        string    `json:"session_id"`
	UserID           string    `json:"user_id"`
	Role             string    `json:"role"`
}

type sessionResponse struct {
	ID           string     `json:"id"`
	DeviceName   string     `json:"device_name,omitempty"`
	IP           string     `json:"ip,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt *time.Time `json:"last_active_at,omitempty"`
	ExpiresAt    time.Time  `json:"expires_at"`
	Current      bool       `json:"current"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := s.auth.Login(r.Context(), req.Email, req.Password, s.deviceInfo(r, req.DeviceName))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.setRefreshCookie(w, res.RefreshToken, res.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:      res.AccessToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshToken:     res.RefreshToken,
		RefreshExpiresAt: res.RefreshExpiresAt,
		SessionID:        res.SessionID,
		UserID:           res.UserID,
		Role:             res.Role,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh := s.refreshTokenFrom(r)
	if refresh == "" {
		writeErrorMessage(w, http.StatusBadRequest, "missing refresh token")
		return
	}
	res, err := s.auth.Refresh(r.Context(), refresh, s.deviceInfo(r, ""))
	if err != nil {
		s.clearRefreshCookieOnRejection(w, err)
		s.writeError(w, err)
		return
	}
	s.setRefreshCookie(w, res.RefreshToken, res.RefreshExpiresAt)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:      res.AccessToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshToken:     res.RefreshToken,
		RefreshExpiresAt: res.RefreshExpiresAt,
		SessionID:        res.SessionID,
		UserID:           res.UserID,
		Role:             res.Role,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Best effort on the access side: an invalid or expired Bearer token does
	// not block logout of the refresh chain. A blacklist backend outage does:
	// proceeding without claims would report success while leaving the access
	// token live.
	claims, err := s.auth.Verify(r.Context(), middleware.ExtractBearer(r))
	if err != nil && errors.Is(err, service.ErrServiceUnavailable) {
		s.writeError(w, err)
		return
	}
	if err := s.auth.Logout(r.Context(), s.refreshTokenFrom(r), claims); err != nil {
		s.writeError(w, err)
		return
	}
	s.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KeepCurrent bool `json:"keep_current"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	userID, _ := middleware.GetUserID(r.Context())
	except := ""
	if req.KeepCurrent {
		except, _ = middleware.GetSessionID(r.Context())
	}
	n, err := s.auth.RevokeAllSessions(r.Context(), userID, except)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !req.KeepCurrent {
		s.clearRefreshCookie(w)
	}
	writeJSON(w, http.StatusOK, map[string]int{"revoked": n})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	current, _ := middleware.GetSessionID(r.Context())
	sessions, err := s.auth.ListSessions(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse{
			ID:           sess.ID,
			DeviceName:   sess.DeviceName,
			IP:           sess.IP,
			CreatedAt:    sess.CreatedAt,
			LastActiveAt: sess.LastActiveAt,
			ExpiresAt:    sess.ExpiresAt,
			Current:      sess.ID == current,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	sessionID := chi.URLParam(r, "id")
	if err := s.auth.RevokeSession(r.Context(), userID, sessionID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())
	u, err := s.auth.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

func (s *Server) handleTokenStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.auth.TokenStats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{
		"total":    st.Total,
		"active":   st.Active,
		"expired":  st.Expired,
		"revoked":  st.Revoked,
		"consumed": st.Consumed,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// refreshTokenFrom prefers the HttpOnly cookie and falls back to the JSON body
// for non-browser clients.
func (s *Server) refreshTokenFrom(r *http.Request) string {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	var req refreshRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	return req.RefreshToken
}

func (s *Server) deviceInfo(r *http.Request, name string) token.DeviceInfo {
	ip := clientIP(r)
	return token.DeviceInfo{
		Fingerprint: deviceFingerprint(r.UserAgent(), ip),
		Name:        name,
		IP:          ip,
	}
}

func (s *Server) setRefreshCookie(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     "/auth",
		Domain:   s.opts.CookieDomain,
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		Domain:   s.opts.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func userToResponse(u *userdomain.User) userdomain.Public {
	return u.Public()
}
