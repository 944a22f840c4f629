// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first (struct tags, via caarlos0/env), then
CLI flags override them.

# CLI Flags

	-p                  Server port
	-d                  Database URL
	-t                  Database type (sqlite, postgres, pgx)
	-base-url           Public site URL
	-hash-salt          IP hash salt
	-jwt-secret         Admin token secret
	-year               Event year
	-registration-open  Accept new registrations
	-voting-closes-at   Voting close time (RFC3339)
	-payment-provider   flutterwave or stub (required)
	-storage            local or gcs
	-storage-dir        Directory for local object storage

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE
	HASH_SALT, JWT_SECRET, ADMIN_EMAIL, ADMIN_PASSWORD_HASH
	PUBLIC_BASE_URL, EVENT_YEAR, REGISTRATION_OPEN
	VOTE_COST, VOTE_CURRENCY, VOTING_CLOSES_AT, VOTING_TIMEZONE, TIME_API_URL
	PAYMENT_PROVIDER, PAYMENT_SECRET_KEY, PAYMENT_WEBHOOK_SECRET,
	PAYMENT_API_URL, PAYMENT_CUSTOMER_EMAIL
	STORAGE_BACKEND, STORAGE_DIR, STORAGE_BUCKET,
	GOOGLE_APPLICATION_CREDENTIALS, MAX_UPLOAD_BYTES
	TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - HASH_SALT and JWT_SECRET must be provided
  - ADMIN_EMAIL and ADMIN_PASSWORD_HASH (bcrypt) must be provided

A malformed VOTING_CLOSES_AT or VOTING_TIMEZONE is also rejected.
*/
package cliparse
