// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/treat-pageant/cliparse"
)

func TestStub_CreatePayment(t *testing.T) {
	p := NewStub("secret", "https://example.com/")

	co, err := p.CreatePayment(context.Background(), CheckoutRequest{TxRef: "vote-abc", Amount: 500, Currency: "NGN"})
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if co.Link != "https://example.com/pay/stub?tx_ref=vote-abc" {
		t.Errorf("Link = %q", co.Link)
	}

	if _, err := p.CreatePayment(context.Background(), CheckoutRequest{}); err == nil {
		t.Error("expected error for empty tx_ref")
	}
}

func TestStub_HandleWebhook(t *testing.T) {
	p := NewStub("secret", "")
	body := []byte(`{"tx_ref":"vote-1","status":"successful","amount":500,"currency":"NGN","transaction_id":"t1"}`)

	tests := []struct {
		name    string
		body    []byte
		sig     string
		wantErr error
		want    Event
	}{
		{
			name: "valid signature",
			body: body,
			sig:  p.Sign(body),
			want: Event{TxRef: "vote-1", Status: StatusSuccessful, Amount: 500, Currency: "NGN", TransactionID: "t1"},
		},
		{name: "missing signature", body: body, sig: "", wantErr: ErrInvalidSignature},
		{name: "wrong signature", body: body, sig: NewStub("other", "").Sign(body), wantErr: ErrInvalidSignature},
		{
			name:    "tampered body",
			body:    []byte(`{"tx_ref":"vote-1","status":"successful","amount":5,"currency":"NGN"}`),
			sig:     p.Sign(body),
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "missing tx_ref",
			body:    []byte(`{"status":"successful"}`),
			sig:     p.Sign([]byte(`{"status":"successful"}`)),
			wantErr: ErrMalformedPayload,
		},
		{
			name: "cancelled",
			body: []byte(`{"tx_ref":"vote-2","status":"canceled"}`),
			sig:  p.Sign([]byte(`{"tx_ref":"vote-2","status":"canceled"}`)),
			want: Event{TxRef: "vote-2", Status: StatusCancelled},
		},
		{
			name: "no status means paid",
			body: []byte(`{"tx_ref":"vote-3","amount":100}`),
			sig:  p.Sign([]byte(`{"tx_ref":"vote-3","amount":100}`)),
			want: Event{TxRef: "vote-3", Status: StatusSuccessful, Amount: 100},
		},
		{
			name:    "unknown status",
			body:    []byte(`{"tx_ref":"vote-4","status":"refunded"}`),
			sig:     p.Sign([]byte(`{"tx_ref":"vote-4","status":"refunded"}`)),
			wantErr: ErrUnsupportedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.HandleWebhook(context.Background(), tt.body, map[string]string{"x-signature": tt.sig})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev != tt.want {
				t.Errorf("event = %+v, want %+v", ev, tt.want)
			}
		})
	}
}

func TestFlutterwave_CreatePayment(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v3/payments" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test" {
			t.Errorf("Authorization = %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Hosted Link","data":{"link":"https://checkout.example/abc"}}`))
	}))
	defer srv.Close()

	p := NewFlutterwave(srv.Client(), srv.URL, "sk_test", "hash")
	co, err := p.CreatePayment(context.Background(), CheckoutRequest{
		TxRef:         "vote-1",
		Amount:        1500,
		Currency:      "NGN",
		CustomerName:  "Ada",
		CustomerPhone: "08012345678",
		CustomerEmail: "votes@example.com",
		RedirectURL:   "https://example.com/vote-status",
	})
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if co.Link != "https://checkout.example/abc" {
		t.Errorf("Link = %q", co.Link)
	}
	if got["tx_ref"] != "vote-1" || got["amount"] != "1500" || got["currency"] != "NGN" {
		t.Errorf("unexpected payload: %v", got)
	}
	customer, _ := got["customer"].(map[string]any)
	if customer["email"] != "votes@example.com" {
		t.Errorf("customer = %v", customer)
	}
}

func TestFlutterwave_CreatePaymentErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"gateway error", http.StatusBadRequest, `{"status":"error","message":"Invalid currency"}`, "Invalid currency"},
		{"non json", http.StatusBadGateway, `upstream down`, "upstream down"},
		{"no link", http.StatusOK, `{"status":"success","data":{}}`, "no checkout link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewFlutterwave(srv.Client(), srv.URL, "sk", "hash")
			_, err := p.CreatePayment(context.Background(), CheckoutRequest{TxRef: "vote-1", Amount: 100, Currency: "NGN"})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

// fakeVerifyAPI serves /v3/transactions/{id}/verify from a fixed table
func fakeVerifyAPI(t *testing.T, charges map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk" {
			t.Errorf("Authorization = %q", auth)
		}
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v3/transactions/"), "/verify")
		if id == "500" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status":"error","message":"try again"}`))
			return
		}
		body, ok := charges[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"error","message":"No transaction was found for this id"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","message":"Transaction fetched successfully","data":` + body + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFlutterwave_HandleWebhook(t *testing.T) {
	srv := fakeVerifyAPI(t, map[string]string{
		"285959875": `{"id":285959875,"tx_ref":"vote-1","amount":500.00,"currency":"NGN","status":"successful"}`,
		"285959876": `{"id":285959876,"tx_ref":"vote-2","amount":100.00,"currency":"NGN","status":"successful"}`,
		"285959877": `{"id":285959877,"tx_ref":"vote-1","amount":500.00,"currency":"NGN","status":"failed"}`,
	})
	p := NewFlutterwave(srv.Client(), srv.URL, "sk", "hash")

	webhook := func(id, txRef, amount, status string) string {
		return `{"event":"charge.completed","data":{"id":` + id + `,"tx_ref":"` + txRef +
			`","amount":` + amount + `,"currency":"NGN","status":"` + status + `"}}`
	}
	completed := webhook("285959875", "vote-1", "500.00", "successful")

	tests := []struct {
		name    string
		body    string
		hash    string
		wantErr error
		want    Event
	}{
		{
			name: "completed charge",
			body: completed,
			hash: "hash",
			want: Event{TxRef: "vote-1", Status: StatusSuccessful, Amount: 500, Currency: "NGN", TransactionID: "285959875"},
		},
		{
			name: "amount comes from the gateway",
			body: webhook("285959876", "vote-2", "99999.00", "successful"),
			hash: "hash",
			want: Event{TxRef: "vote-2", Status: StatusSuccessful, Amount: 100, Currency: "NGN", TransactionID: "285959876"},
		},
		{
			name: "status comes from the gateway",
			body: webhook("285959877", "vote-1", "500.00", "successful"),
			hash: "hash",
			want: Event{TxRef: "vote-1", Status: StatusFailed, Amount: 500, Currency: "NGN", TransactionID: "285959877"},
		},
		{name: "unknown transaction", body: webhook("1", "vote-1", "500", "successful"), hash: "hash", wantErr: ErrInvalidSignature},
		{name: "transaction of another payment", body: webhook("285959876", "vote-1", "500", "successful"), hash: "hash", wantErr: ErrInvalidSignature},
		{name: "gateway unavailable", body: webhook("500", "vote-1", "500", "successful"), hash: "hash", wantErr: ErrUnverified},
		{name: "bad hash", body: completed, hash: "nope", wantErr: ErrInvalidSignature},
		{name: "no hash", body: completed, hash: "", wantErr: ErrInvalidSignature},
		{name: "other event", body: `{"event":"transfer.completed","data":{}}`, hash: "hash", wantErr: ErrUnsupportedEvent},
		{
			name:    "pending charge",
			body:    `{"event":"charge.completed","data":{"id":1,"tx_ref":"vote-1","status":"pending"}}`,
			hash:    "hash",
			wantErr: ErrUnsupportedEvent,
		},
		{
			name:    "missing id",
			body:    `{"event":"charge.completed","data":{"tx_ref":"vote-1","status":"successful"}}`,
			hash:    "hash",
			wantErr: ErrMalformedPayload,
		},
		{name: "garbage", body: `{`, hash: "hash", wantErr: ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := p.HandleWebhook(context.Background(), []byte(tt.body), map[string]string{"verif-hash": tt.hash})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev != tt.want {
				t.Errorf("event = %+v, want %+v", ev, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		cfg      cliparse.Config
		wantName string
		wantErr  bool
	}{
		{"stub", cliparse.Config{PaymentProvider: "stub", PaymentWebhookSecret: "whsec"}, "stub", false},
		{"flutterwave", cliparse.Config{PaymentProvider: "flutterwave", PaymentSecretKey: "sk", PaymentWebhookSecret: "whsec"}, "flutterwave", false},
		{"flutterwave without key", cliparse.Config{PaymentProvider: "flutterwave", PaymentWebhookSecret: "whsec"}, "", true},
		{"flutterwave without webhook secret", cliparse.Config{PaymentProvider: "flutterwave", PaymentSecretKey: "sk"}, "", true},
		{"flutterwave with placeholder secret", cliparse.Config{PaymentProvider: "flutterwave", PaymentSecretKey: "sk", PaymentWebhookSecret: "change-me"}, "", true},
		{"stub without webhook secret", cliparse.Config{PaymentProvider: "stub"}, "", true},
		{"no provider", cliparse.Config{PaymentWebhookSecret: "whsec"}, "", true},
		{"unknown", cliparse.Config{PaymentProvider: "paypal", PaymentWebhookSecret: "whsec"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}
