// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"context"
	"errors"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnsupportedEvent = errors.New("unsupported webhook event")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	// ErrUnverified means the gateway could not confirm the charge;
	// the webhook should be retried.
	ErrUnverified = errors.New("charge could not be verified")
)

// Normalized event statuses
const (
	StatusSuccessful = "successful"
	StatusCancelled  = "cancelled"
	StatusFailed     = "failed"
)

type Provider interface {
	Name() string

	// CreatePayment asks the gateway for a hosted checkout link
	CreatePayment(ctx context.Context, req CheckoutRequest) (Checkout, error)

	// HandleWebhook authenticates a gateway callback and normalizes it.
	// headers keys are lower-cased.
	HandleWebhook(ctx context.Context, body []byte, headers map[string]string) (Event, error)
}

type CheckoutRequest struct {
	TxRef         string
	Amount        int64
	Currency      string
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Title         string
	Description   string
	RedirectURL   string
	Meta          map[string]string
}

type Checkout struct {
	Link string
}

type Event struct {
	TxRef         string
	Status        string // successful/cancelled/failed
	Amount        int64
	Currency      string
	TransactionID string
}
