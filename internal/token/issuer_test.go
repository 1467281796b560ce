package token

import (
	"testing"
	"time"

	"booking-platform/auth/internal/security"
)

func newTestIssuer(t *testing.T) (*Issuer, *security.RefreshHasher) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider(15 * time.Minute)
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	hasher, err := security.NewRefreshHasher("issuer-test-pepper")
	if err != nil {
		t.Fatalf("NewRefreshHasher: %v", err)
	}
	return NewIssuer(tokens, hasher, 7*24*time.Hour), hasher
}

func TestIssuer_IssuePairNewFamily(t *testing.T) {
	issuer, hasher := newTestIssuer(t)

	pair, err := issuer.IssuePair("u1", "user", "s1", "", DeviceInfo{Fingerprint: "fp", IP: "1.2.3.4"}, time.Time{})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("tokens empty")
	}
	rec := pair.Record
	if rec.FamilyID == "" {
		t.Fatal("new login should start a new family")
	}
	if rec.UserID != "u1" || rec.SessionID != "s1" {
		t.Errorf("record = user %q session %q", rec.UserID, rec.SessionID)
	}
	if rec.TokenHash == pair.RefreshToken {
		t.Fatal("record must hold the hash, not the raw token")
	}
	if !hasher.Equal(pair.RefreshToken, rec.TokenHash) {
		t.Fatal("record hash should match the issued token")
	}
	if rec.ConsumedAt != nil || rec.Revoked || rec.ReplacedBy != "" {
		t.Fatal("fresh record must be unconsumed and unrevoked")
	}
	if rec.DeviceFingerprint != "fp" || rec.IP != "1.2.3.4" {
		t.Errorf("device info not carried onto record: %q %q", rec.DeviceFingerprint, rec.IP)
	}
}

func TestIssuer_IssuePairKeepsFamily(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	pair, err := issuer.IssuePair("u1", "user", "s1", "fam-1", DeviceInfo{}, time.Time{})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.Record.FamilyID != "fam-1" {
		t.Errorf("family = %q, want fam-1", pair.Record.FamilyID)
	}
}

func TestIssuer_IssuePairRespectsCeiling(t *testing.T) {
	issuer, _ := newTestIssuer(t)
	ceiling := time.Now().UTC().Add(time.Hour)

	pair, err := issuer.IssuePair("u1", "user", "s1", "fam-1", DeviceInfo{}, ceiling)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.Record.ExpiresAt.After(ceiling) {
		t.Errorf("record expiry %v exceeds ceiling %v", pair.Record.ExpiresAt, ceiling)
	}

	farCeiling := time.Now().UTC().Add(365 * 24 * time.Hour)
	pair, err = issuer.IssuePair("u1", "user", "s1", "fam-1", DeviceInfo{}, farCeiling)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	want := time.Now().UTC().Add(issuer.RefreshTTL())
	if diff := pair.Record.ExpiresAt.Sub(want); diff > time.Minute || diff < -time.Minute {
		t.Errorf("record expiry %v, want about %v", pair.Record.ExpiresAt, want)
	}
}

func TestIssuer_PairsAreDistinct(t *testing.T) {
	issuer, _ := newTestIssuer(t)

	a, err := issuer.IssuePair("u1", "user", "s1", "", DeviceInfo{}, time.Time{})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	b, err := issuer.IssuePair("u1", "user", "s1", "", DeviceInfo{}, time.Time{})
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if a.RefreshToken == b.RefreshToken || a.Record.TokenHash == b.Record.TokenHash {
		t.Fatal("independent pairs must not share refresh material")
	}
	if a.Record.FamilyID == b.Record.FamilyID {
		t.Fatal("independent logins must start distinct families")
	}
	if a.AccessJTI == b.AccessJTI {
		t.Fatal("independent pairs must not share jti")
	}
}
