package security

import (
	"errors"
	"testing"
	"time"
)

func TestTokenProvider_IssueAndVerifyAccess(t *testing.T) {
	p, err := NewTestTokenProvider(15 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}

	access, jti, exp, err := p.IssueAccess("u1", "user", "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if access == "" || jti == "" {
		t.Fatal("access token or jti empty")
	}
	if exp.Before(time.Now()) {
		t.Fatal("expires at in the past")
	}

	claims, err := p.VerifyAccess(access)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != "user" || claims.SessionID != "s1" {
		t.Errorf("claims = subject %q role %q session %q", claims.Subject, claims.Role, claims.SessionID)
	}
	if claims.ID != jti {
		t.Errorf("claims jti = %q, want %q", claims.ID, jti)
	}
}

func TestTokenProvider_VerifyAccessMalformed(t *testing.T) {
	p, err := NewTestTokenProvider(15 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := p.VerifyAccess(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyAccess(%q): want ErrInvalidToken, got %v", tok, err)
		}
	}
}

func TestTokenProvider_VerifyAccessExpired(t *testing.T) {
	p, err := NewTestTokenProvider(-1 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, _, err := p.IssueAccess("u1", "user", "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := p.VerifyAccess(access); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("VerifyAccess expired: want ErrTokenExpired, got %v", err)
	}
}

func TestTokenProvider_VerifyAccessWrongIssuer(t *testing.T) {
	issuerA, err := NewTestTokenProvider(15 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	signer, _ := ParsePrivateKey(testPrivateKeyPEM)
	pub, _ := ParsePublicKey(testPublicKeyPEM)
	issuerB := NewTokenProvider(signer, pub, "other-issuer", "test-audience", 15*time.Minute)

	access, _, _, err := issuerB.IssueAccess("u1", "user", "s1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := issuerA.VerifyAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccess wrong issuer: want ErrInvalidToken, got %v", err)
	}
}

func TestNewJTI_UniqueAndSized(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		jti, err := NewJTI()
		if err != nil {
			t.Fatalf("NewJTI: %v", err)
		}
		if len(jti) != 32 { // 16 bytes hex-encoded
			t.Fatalf("jti length = %d, want 32", len(jti))
		}
		if seen[jti] {
			t.Fatal("duplicate jti")
		}
		seen[jti] = true
	}
}
