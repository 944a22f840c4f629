// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
)

// Flutterwave talks to the Flutterwave Standard checkout API.
// Webhooks carry the dashboard secret hash in the verif-hash header, and
// every charge they report is confirmed through the transaction verify
// endpoint before it is trusted.
type Flutterwave struct {
	client      *http.Client
	baseURL     string
	secretKey   string
	webhookHash string
}

func NewFlutterwave(client *http.Client, baseURL, secretKey, webhookHash string) *Flutterwave {
	if client == nil {
		client = http.DefaultClient
	}
	return &Flutterwave{
		client:      client,
		baseURL:     strings.TrimRight(baseURL, "/"),
		secretKey:   secretKey,
		webhookHash: webhookHash,
	}
}

func (p *Flutterwave) Name() string { return "flutterwave" }

type fwCustomer struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phonenumber,omitempty"`
	Name        string `json:"name,omitempty"`
}

type fwCustomizations struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type fwPaymentRequest struct {
	TxRef          string            `json:"tx_ref"`
	Amount         string            `json:"amount"`
	Currency       string            `json:"currency"`
	RedirectURL    string            `json:"redirect_url"`
	Customer       fwCustomer        `json:"customer"`
	Customizations fwCustomizations  `json:"customizations"`
	Meta           map[string]string `json:"meta,omitempty"`
}

type fwPaymentResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Link string `json:"link"`
	} `json:"data"`
}

func (p *Flutterwave) CreatePayment(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	payload := fwPaymentRequest{
		TxRef:       req.TxRef,
		Amount:      strconv.FormatInt(req.Amount, 10),
		Currency:    req.Currency,
		RedirectURL: req.RedirectURL,
		Customer: fwCustomer{
			Email:       req.CustomerEmail,
			PhoneNumber: req.CustomerPhone,
			Name:        req.CustomerName,
		},
		Customizations: fwCustomizations{
			Title:       req.Title,
			Description: req.Description,
		},
		Meta: req.Meta,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Checkout{}, fmt.Errorf("encode payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v3/payments", bytes.NewReader(body))
	if err != nil {
		return Checkout{}, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Checkout{}, fmt.Errorf("flutterwave request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Checkout{}, fmt.Errorf("read flutterwave response: %w", err)
	}

	var out fwPaymentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Checkout{}, fmt.Errorf("flutterwave returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if resp.StatusCode >= 300 || out.Status != "success" {
		return Checkout{}, fmt.Errorf("flutterwave returned %d: %s", resp.StatusCode, out.Message)
	}
	if out.Data.Link == "" {
		return Checkout{}, fmt.Errorf("flutterwave returned no checkout link")
	}

	return Checkout{Link: out.Data.Link}, nil
}

type fwWebhook struct {
	Event string `json:"event"`
	Data  struct {
		ID       json.Number `json:"id"`
		TxRef    string      `json:"tx_ref"`
		Amount   float64     `json:"amount"`
		Currency string      `json:"currency"`
		Status   string      `json:"status"`
	} `json:"data"`
}

type fwVerifyResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		ID       json.Number `json:"id"`
		TxRef    string      `json:"tx_ref"`
		Amount   float64     `json:"amount"`
		Currency string      `json:"currency"`
		Status   string      `json:"status"`
	} `json:"data"`
}

func (p *Flutterwave) HandleWebhook(ctx context.Context, body []byte, headers map[string]string) (Event, error) {
	hash := headers["verif-hash"]
	if hash == "" || p.webhookHash == "" || !hmac.Equal([]byte(hash), []byte(p.webhookHash)) {
		return Event{}, ErrInvalidSignature
	}

	var pl fwWebhook
	if err := json.Unmarshal(body, &pl); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if pl.Event != "charge.completed" {
		return Event{}, fmt.Errorf("%w: %s", ErrUnsupportedEvent, pl.Event)
	}
	if pl.Data.TxRef == "" || pl.Data.ID.String() == "" {
		return Event{}, fmt.Errorf("%w: tx_ref or id missing", ErrMalformedPayload)
	}
	if normalizeStatus(pl.Data.Status) == "" {
		return Event{}, fmt.Errorf("%w: charge status %q", ErrUnsupportedEvent, pl.Data.Status)
	}

	return p.verify(ctx, pl.Data.ID.String(), pl.Data.TxRef)
}

// verify fetches the charge from the gateway. The webhook body only names
// the transaction; status, amount and currency come from this response.
func (p *Flutterwave) verify(ctx context.Context, id, txRef string) (Event, error) {
	url := p.baseURL + "/v3/transactions/" + neturl.PathEscape(id) + "/verify"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Event{}, fmt.Errorf("%w: build verify request: %v", ErrUnverified, err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Event{}, fmt.Errorf("%w: read verify response: %v", ErrUnverified, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Event{}, fmt.Errorf("%w: transaction %s not found", ErrInvalidSignature, id)
	}

	var out fwVerifyResponse
	if err := json.Unmarshal(raw, &out); err != nil || resp.StatusCode >= 300 || out.Status != "success" {
		return Event{}, fmt.Errorf("%w: flutterwave returned %d: %s", ErrUnverified, resp.StatusCode, out.Message)
	}
	if out.Data.TxRef != txRef {
		return Event{}, fmt.Errorf("%w: transaction %s belongs to %q, not %q", ErrInvalidSignature, id, out.Data.TxRef, txRef)
	}

	status := normalizeStatus(out.Data.Status)
	if status == "" {
		return Event{}, fmt.Errorf("%w: verified status %q", ErrUnsupportedEvent, out.Data.Status)
	}

	return Event{
		TxRef:         out.Data.TxRef,
		Status:        status,
		Amount:        int64(math.Round(out.Data.Amount)),
		Currency:      out.Data.Currency,
		TransactionID: out.Data.ID.String(),
	}, nil
}
