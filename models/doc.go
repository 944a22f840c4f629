// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePaymentRequest: contestantId, votes, phone, name
  - ContactRequest: name, email, message
  - LoginRequest: email, password
  - UpdateApprovalRequest: status

Registration and contestant uploads are multipart forms and are read field
by field in the handlers.

# Response Types

  - CreatePaymentResponse: status, data.link, tx_ref, amount
  - WebhookResponse, VoteStatusResponse, CountdownResponse
  - ContestantListResponse, RegistrationDashboard, MessageDashboard
  - GalleryResponse, GalleryUploadResponse, PageResponse
  - ErrorResponse: error, message, details, fields

# Domain Types

  - Contestant: entrant with vote total
  - Registration: application with approval status
  - Message: contact form submission
  - Payment: vote purchase and its reconciliation state

# Constants

Approval status values:

	ApprovalPending  = "pending"
	ApprovalAccepted = "accepted"
	ApprovalRejected = "rejected"

Message status values:

	MessageUnread = "unread"
	MessageRead   = "read"

Payment status values:

	PaymentPending    = "pending"
	PaymentSuccessful = "successful"
	PaymentCancelled  = "cancelled"
	PaymentFailed     = "failed"
*/
package models
