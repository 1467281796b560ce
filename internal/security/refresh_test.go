package security

import "testing"

func TestNewRefreshToken_EntropyAndUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := NewRefreshToken()
		if err != nil {
			t.Fatalf("NewRefreshToken: %v", err)
		}
		if len(tok) != 43 { // 32 bytes base64url, no padding
			t.Fatalf("token length = %d, want 43", len(tok))
		}
		if seen[tok] {
			t.Fatal("duplicate refresh token")
		}
		seen[tok] = true
	}
}

func TestNewRefreshHasher_RequiresPepper(t *testing.T) {
	if _, err := NewRefreshHasher(""); err == nil {
		t.Fatal("NewRefreshHasher with empty pepper should return error")
	}
}

func TestRefreshHasher_HashAndEqual(t *testing.T) {
	h, err := NewRefreshHasher("unit-test-pepper")
	if err != nil {
		t.Fatalf("NewRefreshHasher: %v", err)
	}
	tok, err := NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}

	stored := h.Hash(tok)
	if stored == tok {
		t.Fatal("hash must not equal the raw token")
	}
	if h.Hash(tok) != stored {
		t.Fatal("hash must be deterministic")
	}
	if !h.Equal(tok, stored) {
		t.Fatal("Equal should match token against its own hash")
	}
	if h.Equal("some-other-token", stored) {
		t.Fatal("Equal should reject a different token")
	}
}

func TestRefreshHasher_PepperChangesHash(t *testing.T) {
	h1, _ := NewRefreshHasher("pepper-one")
	h2, _ := NewRefreshHasher("pepper-two")
	if h1.Hash("same-token") == h2.Hash("same-token") {
		t.Fatal("different peppers must produce different hashes")
	}
}
