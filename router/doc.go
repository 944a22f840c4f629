// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pageant API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg, router.Services{...})

# Endpoints

Health:

	GET /health

Contestants and voting (public):

	GET  /contestants        - Leaderboard for the event year
	GET  /contestants/{name} - One contestant
	POST /api/create-payment - Start a paid vote
	GET  /api/countdown      - Time left in the voting round
	GET  /vote-status        - Checkout landing data
	GET  /pay/stub           - Simulated checkout (stub provider only)
	POST /webhooks/payments  - Gateway callback

Registration, contact and content (public):

	GET  /register, POST /register
	POST /contact
	GET  /gallery
	GET  /pages/{slug}
	GET  /sitemap.xml, GET /robots.txt
	GET  /files/...          - Local uploads (local storage only)

Admin (POST /admin/login, then Authorization: Bearer <token>):

	GET   /admin/session
	GET   /admin/summary
	GET   /admin/registrations
	GET   /admin/registrations/export.csv
	PATCH /admin/registrations/{id}/approval
	GET   /admin/messages
	POST  /admin/messages/{id}/read
	POST  /admin/contestants
	POST  /admin/gallery
*/
package router
