// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port         int    `env:"PORT" envDefault:"3318"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" envDefault:"sqlite"`

	// Secrets
	HashSalt          string `env:"HASH_SALT"`
	JWTSecret         string `env:"JWT_SECRET"`
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`

	PublicBaseURL    string `env:"PUBLIC_BASE_URL" envDefault:"https://mrandmisstreat.com.ng"`
	EventYear        int    `env:"EVENT_YEAR" envDefault:"2025"`
	RegistrationOpen bool   `env:"REGISTRATION_OPEN" envDefault:"true"`

	// Voting
	VoteCost       int64     `env:"VOTE_COST" envDefault:"100"`
	VoteCurrency   string    `env:"VOTE_CURRENCY" envDefault:"NGN"`
	VotingClosesAt time.Time `env:"VOTING_CLOSES_AT"`
	VotingTimezone string    `env:"VOTING_TIMEZONE" envDefault:"Africa/Lagos"`
	TimeAPIURL     string    `env:"TIME_API_URL" envDefault:"https://worldtimeapi.org/api/timezone/Etc/UTC"`

	// Payments
	PaymentProvider      string `env:"PAYMENT_PROVIDER"`
	PaymentSecretKey     string `env:"PAYMENT_SECRET_KEY"`
	PaymentWebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
	PaymentAPIURL        string `env:"PAYMENT_API_URL" envDefault:"https://api.flutterwave.com"`
	PaymentCustomerEmail string `env:"PAYMENT_CUSTOMER_EMAIL" envDefault:"votes@mrandmisstreat.com.ng"`

	// Object storage
	StorageBackend     string `env:"STORAGE_BACKEND" envDefault:"local"`
	StorageDir         string `env:"STORAGE_DIR" envDefault:"./data/uploads"`
	StorageBucket      string `env:"STORAGE_BUCKET"`
	GCSCredentialsFile string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" envDefault:"8388608"`

	// Admin notifications (optional)
	TelegramToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

var validDatabaseTypes = map[string]bool{
	"sqlite":   true,
	"postgres": true,
	"pgx":      true,
}

var validPaymentProviders = map[string]bool{
	"flutterwave": true,
	"stub":        true,
}

// ParseFlags reads the environment, then applies CLI overrides and validates
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	var closesAtRaw string

	fs := flag.NewFlagSet("treat-pageant", flag.ContinueOnError)

	// Network config
	fs.IntVar(&cfg.Port, "p", cfg.Port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", cfg.DatabaseType, "Database type (sqlite, postgres or pgx)")
	fs.StringVar(&cfg.PublicBaseURL, "base-url", cfg.PublicBaseURL, "Public site URL")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.HashSalt, "hash-salt", cfg.HashSalt, "IP hash salt (prefer env)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Admin token secret (prefer env)")

	// Event
	fs.IntVar(&cfg.EventYear, "year", cfg.EventYear, "Event year")
	fs.BoolVar(&cfg.RegistrationOpen, "registration-open", cfg.RegistrationOpen, "Accept new registrations")
	fs.StringVar(&closesAtRaw, "voting-closes-at", "", "Voting close time (RFC3339, overrides VOTING_CLOSES_AT)")

	// Backends
	fs.StringVar(&cfg.PaymentProvider, "payment-provider", cfg.PaymentProvider, "Payment provider (stub or flutterwave)")
	fs.StringVar(&cfg.StorageBackend, "storage", cfg.StorageBackend, "Object storage backend (local or gcs)")
	fs.StringVar(&cfg.StorageDir, "storage-dir", cfg.StorageDir, "Directory for local object storage")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if closesAtRaw = strings.TrimSpace(closesAtRaw); closesAtRaw != "" {
		t, err := time.Parse(time.RFC3339, closesAtRaw)
		if err != nil {
			return Config{}, errors.New("voting close time must be RFC3339")
		}
		cfg.VotingClosesAt = t
	}

	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if !validDatabaseTypes[cfg.DatabaseType] {
		return Config{}, fmt.Errorf("unknown database type: %s", cfg.DatabaseType)
	}

	// Secrets - MUST be provided
	if cfg.HashSalt == "" {
		return Config{}, errors.New("HASH_SALT required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		return Config{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD_HASH required")
	}

	// The stub settles payments without a gateway, so it is never implied
	if !validPaymentProviders[cfg.PaymentProvider] {
		return Config{}, errors.New("PAYMENT_PROVIDER must be flutterwave or stub")
	}
	if strings.TrimSpace(cfg.PaymentWebhookSecret) == "" {
		return Config{}, errors.New("PAYMENT_WEBHOOK_SECRET required")
	}

	if cfg.VoteCost <= 0 {
		return Config{}, errors.New("VOTE_COST must be positive")
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	if _, err := time.LoadLocation(cfg.VotingTimezone); err != nil {
		return Config{}, fmt.Errorf("invalid VOTING_TIMEZONE: %w", err)
	}

	return cfg, nil
}

// VotingLocation is the timezone daily voting rounds are counted in.
// Lagos time is a fixed UTC+1, used when the zone database is unavailable.
func (c Config) VotingLocation() *time.Location {
	if c.VotingTimezone != "" {
		if loc, err := time.LoadLocation(c.VotingTimezone); err == nil {
			return loc
		}
	}
	return time.FixedZone("WAT", 60*60)
}
