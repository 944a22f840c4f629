// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin authentication and token generation utilities.

# Admin Login

The site has a single admin account configured through ADMIN_EMAIL and a
bcrypt ADMIN_PASSWORD_HASH:

	hash, err := auth.HashPassword("s3cret")
	err := auth.CheckCredentials(email, password, cfg.AdminEmail, cfg.AdminPasswordHash)

# Admin Tokens

A successful login yields an HS256 JWT valid for 12 hours:

	token, expiresAt, err := auth.IssueAdminToken(email, cfg.JWTSecret, time.Now())
	claims, err := auth.ParseAdminToken(token, cfg.JWTSecret, time.Now())

ParseAdminToken returns ErrExpiredToken for expired tokens and wraps
ErrInvalidToken for anything else.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

Payment references are UUID based:

	txRef := auth.GenerateTxRef()   // "vote-<uuid>"

# IP Hashing

For privacy-preserving fraud review of vote payments:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
