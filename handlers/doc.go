// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pageant API.

# Handler Types

Each handler is a struct holding the dependencies it needs:

  - ContestantHandler: Leaderboard, contestant lookup and admin uploads
  - VoteHandler: Paid vote checkout, gateway webhooks and the countdown
  - RegistrationHandler: Entrant registration with portrait and payment proof
  - MessageHandler: Contact form
  - GalleryHandler: Public gallery and admin batch uploads
  - PageHandler: Site pages, sitemap and robots.txt
  - AdminHandler: Login, registration review, messages and summary

# Paid Voting

Votes are never credited by the browser. CreatePayment records a pending
payment and returns the provider's checkout link; the gateway later calls
Webhook, and ReconcilePayment settles the payment in one transaction:

	POST /api/create-payment → pending payment + checkout link
	POST /webhooks/payments  → successful: contestant.votes += payment.votes

A payment leaves pending exactly once, so retried or concurrent webhooks
never credit twice. Underpaid or wrong-currency events mark it failed.

# Uploads

Multipart uploads are size-checked, then typed by sniffing content rather
than trusting the client's extension. Objects written before a failed
database insert are removed again.

# Validation

Field errors are returned together as a 400 with one message per field:

	{"error": "Bad Request", "message": "Please correct the highlighted fields",
	 "fields": {"email": "Invalid email address"}}

Free text is stripped of markup before validation and storage.
*/
package handlers
