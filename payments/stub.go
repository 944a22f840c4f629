// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Stub provider:
// - CreatePayment: returns a link to /pay/stub?tx_ref=...
// - Webhook: JSON body signed with X-Signature (HMAC SHA-256, hex)
type Stub struct {
	secret  string
	baseURL string
}

func NewStub(secret, baseURL string) *Stub {
	return &Stub{secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Stub) Name() string { return "stub" }

func (p *Stub) CreatePayment(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	if req.TxRef == "" {
		return Checkout{}, fmt.Errorf("tx_ref required")
	}
	link := "/pay/stub?tx_ref=" + url.QueryEscape(req.TxRef)
	if p.baseURL != "" {
		link = p.baseURL + link
	}
	return Checkout{Link: link}, nil
}

type StubPayload struct {
	TxRef         string `json:"tx_ref"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	TransactionID string `json:"transaction_id"`
}

// Sign returns the X-Signature value for body
func (p *Stub) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *Stub) HandleWebhook(ctx context.Context, body []byte, headers map[string]string) (Event, error) {
	sig := headers["x-signature"]
	if sig == "" || !hmac.Equal([]byte(sig), []byte(p.Sign(body))) {
		return Event{}, ErrInvalidSignature
	}

	var pl StubPayload
	if err := json.Unmarshal(body, &pl); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if pl.TxRef == "" {
		return Event{}, fmt.Errorf("%w: tx_ref missing", ErrMalformedPayload)
	}

	status := StatusSuccessful
	if strings.TrimSpace(pl.Status) != "" {
		if status = normalizeStatus(pl.Status); status == "" {
			return Event{}, fmt.Errorf("%w: status %q", ErrUnsupportedEvent, pl.Status)
		}
	}
	return Event{
		TxRef:         pl.TxRef,
		Status:        status,
		Amount:        pl.Amount,
		Currency:      pl.Currency,
		TransactionID: pl.TransactionID,
	}, nil
}

func normalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "successful", "success", "paid", "completed":
		return StatusSuccessful
	case "cancelled", "canceled":
		return StatusCancelled
	case "failed", "error":
		return StatusFailed
	default:
		return ""
	}
}
