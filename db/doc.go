// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections and schema creation.

# Connecting

Open selects the database/sql driver from the configured type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types:

  - sqlite: modernc.org/sqlite (foreign keys and busy timeout enabled)
  - postgres: github.com/lib/pq
  - pgx: github.com/jackc/pgx/v5/stdlib

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - contestant: pageant entrants and their vote totals
  - registration: applications with uploaded portrait and payment proof
  - message: contact form submissions
  - payment: vote purchases, reconciled by the payment webhook

# Relationships

	contestant 1──* payment

# Constraint Errors

IsUniqueViolation recognizes duplicate-key errors from all three drivers so
handlers can answer 409 instead of 500.
*/
package db
