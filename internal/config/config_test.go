package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.JWTIssuer != "booking-auth" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "booking-auth")
	}
	if cfg.JWTAudience != "booking-api" {
		t.Errorf("JWTAudience = %q, want %q", cfg.JWTAudience, "booking-api")
	}
	if cfg.JWTAccessTTL != "15m" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "15m")
	}
	if cfg.JWTRefreshTTL != "168h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "168h")
	}
	if cfg.SessionMaxLifetime != "720h" {
		t.Errorf("SessionMaxLifetime = %q, want %q", cfg.SessionMaxLifetime, "720h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure should default to true")
	}
	if cfg.SecurityKafkaTopic != "auth-security-events" {
		t.Errorf("SecurityKafkaTopic = %q, want default", cfg.SecurityKafkaTopic)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_MissingPepperRejected(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")

	if _, err := Load(); err == nil {
		t.Fatal("Load should fail without REFRESH_TOKEN_PEPPER")
	}
}

func TestLoad_BCRYPT_COSTRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero", "0", 12, false}, // defaults to 12
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_InsecureCookiesRejectedInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
	os.Setenv("COOKIE_SECURE", "false")
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when COOKIE_SECURE=false and APP_ENV=production")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}
}

func TestLoad_InsecureCookiesAllowedInDevelopment(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
	os.Setenv("COOKIE_SECURE", "false")
	os.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure should be false")
	}
}

func TestDurationAccessors(t *testing.T) {
	testCases := []struct {
		name string
		env  string
		val  string
		get  func(*Config) time.Duration
		want time.Duration
	}{
		{"access valid", "JWT_ACCESS_TTL", "30m", (*Config).AccessTTL, 30 * time.Minute},
		{"access invalid", "JWT_ACCESS_TTL", "invalid", (*Config).AccessTTL, 15 * time.Minute},
		{"access negative", "JWT_ACCESS_TTL", "-5m", (*Config).AccessTTL, 15 * time.Minute},
		{"refresh valid", "JWT_REFRESH_TTL", "336h", (*Config).RefreshTTL, 14 * 24 * time.Hour},
		{"refresh invalid", "JWT_REFRESH_TTL", "invalid", (*Config).RefreshTTL, 168 * time.Hour},
		{"refresh zero", "JWT_REFRESH_TTL", "0", (*Config).RefreshTTL, 168 * time.Hour},
		{"ceiling valid", "SESSION_MAX_LIFETIME", "24h", (*Config).SessionCeiling, 24 * time.Hour},
		{"ceiling invalid", "SESSION_MAX_LIFETIME", "bogus", (*Config).SessionCeiling, 720 * time.Hour},
		{"storage timeout valid", "DB_TIMEOUT", "5s", (*Config).StorageTimeout, 5 * time.Second},
		{"storage timeout invalid", "DB_TIMEOUT", "forever", (*Config).StorageTimeout, 3 * time.Second},
		{"gc interval valid", "CLEANUP_INTERVAL", "30m", (*Config).GCInterval, 30 * time.Minute},
		{"gc interval invalid", "CLEANUP_INTERVAL", "often", (*Config).GCInterval, time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("HTTP_ADDR", ":8080")
			os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
			os.Setenv(tc.env, tc.val)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if got := tc.get(cfg); got != tc.want {
				t.Errorf("%s = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestKafkaBrokersList(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8080")
	os.Setenv("REFRESH_TOKEN_PEPPER", "test-pepper")
	os.Setenv("KAFKA_BROKERS", "localhost:9092, broker2:9092 ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := cfg.KafkaBrokersList()
	if len(got) != 2 || got[0] != "localhost:9092" || got[1] != "broker2:9092" {
		t.Errorf("KafkaBrokersList = %v, want two trimmed brokers", got)
	}

	os.Setenv("KAFKA_BROKERS", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.KafkaBrokersList() != nil {
		t.Error("KafkaBrokersList should be nil when unset")
	}
}
