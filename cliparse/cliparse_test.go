// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("HASH_SALT", "test-salt")
	t.Setenv("JWT_SECRET", "test-jwt")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("PAYMENT_PROVIDER", "flutterwave")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec-test")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("EVENT_YEAR", "2026")
	t.Setenv("REGISTRATION_OPEN", "false")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.EventYear != 2026 {
		t.Errorf("expected event year 2026, got %d", cfg.EventYear)
	}
	if cfg.RegistrationOpen {
		t.Error("expected registration to be closed")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.VoteCost != 100 {
		t.Errorf("expected default vote cost 100, got %d", cfg.VoteCost)
	}
	if cfg.MaxUploadBytes != 8*1024*1024 {
		t.Errorf("expected 8MB upload limit, got %d", cfg.MaxUploadBytes)
	}
	if !cfg.VotingClosesAt.IsZero() {
		t.Errorf("expected no voting close time, got %v", cfg.VotingClosesAt)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "postgres://other", "-t", "postgres", "-base-url", "https://example.com/"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://other" {
		t.Errorf("expected CLI database URL, got %s", cfg.DatabaseURL)
	}
	if cfg.PublicBaseURL != "https://example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.PublicBaseURL)
	}
}

func TestParseFlags_VotingClosesAt(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VOTING_CLOSES_AT", "2025-10-01T23:00:00Z")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 10, 1, 23, 0, 0, 0, time.UTC)
	if !cfg.VotingClosesAt.Equal(want) {
		t.Errorf("expected %v, got %v", want, cfg.VotingClosesAt)
	}

	cfg, err = ParseFlags([]string{"-voting-closes-at", "2025-10-02T23:00:00+01:00"})
	if err != nil {
		t.Fatal(err)
	}
	want = time.Date(2025, 10, 2, 22, 0, 0, 0, time.UTC)
	if !cfg.VotingClosesAt.Equal(want) {
		t.Errorf("expected flag to override env: %v, got %v", want, cfg.VotingClosesAt)
	}

	if _, err := ParseFlags([]string{"-voting-closes-at", "tomorrow"}); err == nil {
		t.Error("expected error for malformed close time")
	}
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
	}{
		{"database url", "DATABASE_URL"},
		{"hash salt", "HASH_SALT"},
		{"jwt secret", "JWT_SECRET"},
		{"admin email", "ADMIN_EMAIL"},
		{"admin password", "ADMIN_PASSWORD_HASH"},
		{"payment provider", "PAYMENT_PROVIDER"},
		{"webhook secret", "PAYMENT_WEBHOOK_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			os.Unsetenv(tt.unset)

			if _, err := ParseFlags([]string{}); err == nil {
				t.Errorf("expected error when %s is missing", tt.unset)
			}
		})
	}
}

func TestParseFlags_PaymentProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		secret   string
		wantErr  bool
	}{
		{"flutterwave", "flutterwave", "whsec-test", false},
		{"stub opt-in", "stub", "whsec-test", false},
		{"unknown provider", "paypal", "whsec-test", true},
		{"blank webhook secret", "flutterwave", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv("PAYMENT_PROVIDER", tt.provider)
			t.Setenv("PAYMENT_WEBHOOK_SECRET", tt.secret)

			cfg, err := ParseFlags([]string{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && cfg.PaymentProvider != tt.provider {
				t.Errorf("provider = %q, want %q", cfg.PaymentProvider, tt.provider)
			}
		})
	}
}

func TestParseFlags_InvalidDatabaseType(t *testing.T) {
	setRequiredEnv(t)

	if _, err := ParseFlags([]string{"-t", "mysql"}); err == nil {
		t.Error("expected error for unsupported database type")
	}
}

func TestVotingLocation(t *testing.T) {
	cfg := Config{VotingTimezone: "Not/AZone"}
	loc := cfg.VotingLocation()

	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	if offset != 3600 {
		t.Errorf("expected UTC+1 fallback, got offset %d", offset)
	}
}
