package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"booking-platform/auth/internal/security"
)

type stubVerifier struct {
	claims *security.AccessClaims
	err    error
	got    string
}

func (s *stubVerifier) Verify(ctx context.Context, accessToken string) (*security.AccessClaims, error) {
	s.got = accessToken
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func testClaims() *security.AccessClaims {
	return &security.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", ID: "jti-1"},
		Role:             "owner",
		SessionID:        "s1",
	}
}

func TestRequireAuth_ValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: testClaims()}
	var gotUser, gotSession string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		gotSession, _ = GetSessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rec := httptest.NewRecorder()
	RequireAuth(verifier)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if verifier.got != "abc123" {
		t.Errorf("verified token = %q, want abc123", verifier.got)
	}
	if gotUser != "u1" || gotSession != "s1" {
		t.Errorf("identity = %s/%s, want u1/s1", gotUser, gotSession)
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"not bearer", "Basic abc", nil},
		{"bare scheme", "Bearer", nil},
		{"verify fails", "Bearer abc", errors.New("invalid token")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verifier := &stubVerifier{claims: testClaims(), err: tc.err}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler must not run")
			})
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(verifier)(next).ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{"BEARER  abc ", "abc"},
		{"Basic abc", ""},
		{"", ""},
		{"Bearer", ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		if got := ExtractBearer(req); got != tc.want {
			t.Errorf("ExtractBearer(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
