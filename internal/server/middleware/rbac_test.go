package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []string
		want    int
	}{
		{"exact match", "admin", []string{"admin"}, http.StatusNoContent},
		{"one of several", "owner", []string{"admin", "owner"}, http.StatusNoContent},
		{"wrong role", "user", []string{"admin"}, http.StatusForbidden},
		{"no role in context", "", []string{"admin"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			req := httptest.NewRequest(http.MethodGet, "/auth/stats", nil)
			if tc.role != "" {
				req = req.WithContext(WithIdentity(req.Context(), "u1", tc.role, "s1", "jti-1"))
			}
			rec := httptest.NewRecorder()
			RequireRole(tc.allowed...)(next).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
