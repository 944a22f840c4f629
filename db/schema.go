// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to the subset SQLite and PostgreSQL share.
const schema = `
-- Contestants
CREATE TABLE IF NOT EXISTS contestant (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    contestant_number INTEGER NOT NULL,
    state TEXT NOT NULL,
    image_url TEXT,
    votes BIGINT NOT NULL DEFAULT 0 CHECK (votes >= 0),
    event_year INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (event_year, name),
    UNIQUE (event_year, contestant_number)
);

CREATE INDEX IF NOT EXISTS idx_contestant_year ON contestant(event_year);

-- Registrations
CREATE TABLE IF NOT EXISTS registration (
    id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    whatsapp_number TEXT NOT NULL,
    instagram TEXT NOT NULL,
    tiktok TEXT NOT NULL,
    facebook TEXT NOT NULL,
    age TEXT NOT NULL,
    height TEXT NOT NULL,
    winner_response TEXT NOT NULL,
    state TEXT NOT NULL,
    dob TEXT NOT NULL,
    address TEXT NOT NULL,
    lga TEXT NOT NULL,
    student TEXT,
    health TEXT,
    added_info TEXT NOT NULL,
    portrait_url TEXT NOT NULL,
    payment_proof_url TEXT NOT NULL,
    approval_status TEXT DEFAULT 'pending' CHECK (approval_status IN ('pending', 'accepted', 'rejected')),
    event_year INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    reviewed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_registration_status ON registration(approval_status);
CREATE INDEX IF NOT EXISTS idx_registration_year ON registration(event_year);

-- Contact messages
CREATE TABLE IF NOT EXISTS message (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    message TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'unread' CHECK (status IN ('unread', 'read')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    read_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_message_status ON message(status);

-- Vote payments
CREATE TABLE IF NOT EXISTS payment (
    tx_ref TEXT PRIMARY KEY,
    contestant_id TEXT NOT NULL REFERENCES contestant(id) ON DELETE CASCADE,
    votes INTEGER NOT NULL CHECK (votes > 0),
    amount BIGINT NOT NULL CHECK (amount > 0),
    currency TEXT NOT NULL,
    payer_name TEXT,
    payer_phone TEXT,
    provider TEXT NOT NULL,
    provider_tx_id TEXT,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'successful', 'cancelled', 'failed')),
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    completed_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_payment_contestant ON payment(contestant_id);
CREATE INDEX IF NOT EXISTS idx_payment_status ON payment(status);
`
