// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Mr & Miss Treat Nigeria API server.

The server backs the pageant website: contestant registration with photo
uploads, paid public voting through a hosted payment page, a contact form,
a photo gallery and an admin dashboard for reviewing entries.

# Starting the Server

Configuration comes from the environment (a .env file is loaded when
present) with CLI overrides:

	DATABASE_URL=treat.db go run .

Or with flags:

	go run . -p 3318 -d "postgres://..." -t postgres

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - HASH_SALT: Secret mixed into stored voter IP hashes
  - JWT_SECRET: Signing key for admin session tokens
  - ADMIN_EMAIL, ADMIN_PASSWORD_HASH: The dashboard login (bcrypt hash)
  - PAYMENT_PROVIDER: flutterwave, or stub for local development only
  - PAYMENT_WEBHOOK_SECRET: Webhook signing secret; placeholder values are rejected

Common optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or pgx (default: sqlite)
  - STORAGE_BACKEND: local or gcs (default: local)
  - VOTING_CLOSES_AT: RFC3339 close time for voting
  - TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID: Admin notifications

# Architecture

  - handlers: HTTP request handlers (contestants, votes, registrations, admin)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, admin auth, JSON helpers
  - payments: Hosted checkout providers and webhook verification
  - storage: Local disk and Google Cloud Storage backends for uploads
  - notify: Telegram notifications for new registrations and messages
  - clock: Time API synced clock and the voting countdown
  - content: Markdown site pages, sitemap and text sanitizing
  - models: Request/response types
  - auth: IDs, IP hashing, admin credentials and tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
