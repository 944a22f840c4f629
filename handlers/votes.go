// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/payments"
)

// MaxVotesPerPayment caps a single checkout.
const MaxVotesPerPayment = 10000

var ErrUnknownPayment = errors.New("unknown payment")

type VoteHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	provider payments.Provider
	clock    clock.Clock
}

func NewVoteHandler(db *sql.DB, cfg cliparse.Config, provider payments.Provider, clk clock.Clock) *VoteHandler {
	return &VoteHandler{db: db, cfg: cfg, provider: provider, clock: clk}
}

func (h *VoteHandler) votingClosed(now time.Time) bool {
	return !h.cfg.VotingClosesAt.IsZero() && !now.Before(h.cfg.VotingClosesAt)
}

// CreatePayment handles POST /api/create-payment
func (h *VoteHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.ContestantID = strings.TrimSpace(req.ContestantID)
	if req.ContestantID == "" || req.Votes <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Missing required fields: contestantId or votes")
		return
	}
	if req.Votes > MaxVotesPerPayment {
		middleware.ErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("votes must be at most %d per payment", MaxVotesPerPayment))
		return
	}

	var contestantName string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT name FROM contestant WHERE id = $1
	`, req.ContestantID).Scan(&contestantName)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contestant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contestant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	now := h.clock.Now()
	if h.votingClosed(now) {
		middleware.ErrorResponse(w, http.StatusConflict, "Voting has closed")
		return
	}

	txRef := auth.GenerateTxRef()
	amount := int64(req.Votes) * h.cfg.VoteCost
	name := clean(req.Name)
	phone := clean(req.Phone)
	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.HashSalt)

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO payment (tx_ref, contestant_id, votes, amount, currency, payer_name, payer_phone, provider, status, ip_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, txRef, req.ContestantID, req.Votes, amount, h.cfg.VoteCurrency, nullIfEmpty(name), nullIfEmpty(phone),
		h.provider.Name(), models.PaymentPending, ipHash, now)
	if err != nil {
		slog.Error("failed to insert payment", "error", err, "contestant_id", req.ContestantID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create payment")
		return
	}

	checkout, err := h.provider.CreatePayment(r.Context(), payments.CheckoutRequest{
		TxRef:         txRef,
		Amount:        amount,
		Currency:      h.cfg.VoteCurrency,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: h.cfg.PaymentCustomerEmail,
		Title:         "Mr & Miss Treat Votes",
		Description:   fmt.Sprintf("%d votes for %s", req.Votes, contestantName),
		RedirectURL:   h.cfg.PublicBaseURL + "/vote-status",
		Meta: map[string]string{
			"contestant_id": req.ContestantID,
			"votes":         strconv.Itoa(req.Votes),
		},
	})
	if err != nil {
		slog.Error("payment provider failed", "error", err, "tx_ref", txRef, "provider", h.provider.Name())
		if _, uerr := h.db.ExecContext(context.WithoutCancel(r.Context()), `
			UPDATE payment SET status = $1, completed_at = $2 WHERE tx_ref = $3 AND status = $4
		`, models.PaymentFailed, h.clock.Now(), txRef, models.PaymentPending); uerr != nil {
			slog.Error("failed to mark payment failed", "error", uerr, "tx_ref", txRef)
		}
		middleware.JSONResponse(w, http.StatusBadGateway, models.ErrorResponse{
			Error:   "Failed to create payment link",
			Details: err.Error(),
		})
		return
	}

	slog.Info("payment created", "tx_ref", txRef, "contestant_id", req.ContestantID, "votes", req.Votes, "amount", amount)

	middleware.JSONResponse(w, http.StatusOK, models.CreatePaymentResponse{
		Status:        "success",
		Data:          models.PaymentLink{Link: checkout.Link},
		TxRef:         txRef,
		Amount:        amount,
		AmountDisplay: formatAmount(amount, h.cfg.VoteCurrency),
	})
}

// Webhook handles POST /webhooks/payments
func (h *VoteHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[strings.ToLower(k)] = r.Header.Get(k)
	}

	ev, err := h.provider.HandleWebhook(r.Context(), body, headers)
	switch {
	case errors.Is(err, payments.ErrInvalidSignature):
		slog.Warn("webhook rejected", "reason", "invalid signature", "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid signature")
		return
	case errors.Is(err, payments.ErrUnverified):
		// 5xx so the gateway redelivers once it can confirm the charge
		slog.Warn("webhook not verified", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Could not verify payment")
		return
	case errors.Is(err, payments.ErrUnsupportedEvent):
		slog.Info("webhook ignored", "reason", err.Error())
		middleware.JSONResponse(w, http.StatusOK, models.WebhookResponse{OK: true, Status: "ignored"})
		return
	case err != nil:
		slog.Warn("webhook rejected", "error", err)
		middleware.ErrorResponse(w, http.StatusBadRequest, "Malformed webhook payload")
		return
	}

	res, err := ReconcilePayment(r.Context(), h.db, ev, h.clock.Now())
	if errors.Is(err, ErrUnknownPayment) {
		slog.Warn("webhook for unknown payment", "tx_ref", ev.TxRef)
		middleware.ErrorResponse(w, http.StatusNotFound, "Payment not found")
		return
	}
	if err != nil {
		slog.Error("failed to reconcile payment", "error", err, "tx_ref", ev.TxRef)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply payment")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.WebhookResponse{
		OK:        true,
		TxRef:     res.TxRef,
		Status:    res.Status,
		Duplicate: res.Duplicate,
	})
}

// Reconciliation is the outcome of applying one gateway event.
type Reconciliation struct {
	TxRef     string
	Status    string
	Duplicate bool
	Credited  int
}

// ReconcilePayment settles a pending payment from a gateway event and
// credits the contestant on success. Only a pending payment can change
// state, so redelivered events are reported as duplicates and credit nothing.
func ReconcilePayment(ctx context.Context, conn *sql.DB, ev payments.Event, now time.Time) (Reconciliation, error) {
	res := Reconciliation{TxRef: ev.TxRef}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		contestantID string
		votes        int
		amount       int64
		currency     string
		status       string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT contestant_id, votes, amount, currency, status
		FROM payment WHERE tx_ref = $1
	`, ev.TxRef).Scan(&contestantID, &votes, &amount, &currency, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return res, ErrUnknownPayment
	}
	if err != nil {
		return res, fmt.Errorf("load payment: %w", err)
	}

	if status != models.PaymentPending {
		res.Status = status
		res.Duplicate = true
		return res, nil
	}

	next := ev.Status
	if next == payments.StatusSuccessful {
		if ev.Amount < amount || !strings.EqualFold(ev.Currency, currency) {
			slog.Warn("payment amount mismatch",
				"tx_ref", ev.TxRef,
				"expected", amount, "expected_currency", currency,
				"paid", ev.Amount, "paid_currency", ev.Currency,
			)
			next = models.PaymentFailed
		}
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE payment
		SET status = $1, provider_tx_id = $2, completed_at = $3
		WHERE tx_ref = $4 AND status = $5
	`, next, nullIfEmpty(ev.TransactionID), now, ev.TxRef, models.PaymentPending)
	if err != nil {
		return res, fmt.Errorf("update payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return res, fmt.Errorf("update payment: %w", err)
	}
	if affected == 0 {
		// settled by a concurrent delivery
		if err := tx.QueryRowContext(ctx, `SELECT status FROM payment WHERE tx_ref = $1`, ev.TxRef).Scan(&res.Status); err != nil {
			return res, fmt.Errorf("reload payment: %w", err)
		}
		res.Duplicate = true
		return res, nil
	}

	if next == models.PaymentSuccessful {
		if _, err := tx.ExecContext(ctx, `
			UPDATE contestant SET votes = votes + $1 WHERE id = $2
		`, votes, contestantID); err != nil {
			return res, fmt.Errorf("credit votes: %w", err)
		}
		res.Credited = votes
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}

	res.Status = next
	slog.Info("payment reconciled", "tx_ref", ev.TxRef, "status", next, "credited", res.Credited, "contestant_id", contestantID)
	return res, nil
}

// VoteStatus handles GET /vote-status
func (h *VoteHandler) VoteStatus(w http.ResponseWriter, r *http.Request) {
	status := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("status")))
	if status == "" {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}

	resp := models.VoteStatusResponse{Status: status}
	switch status {
	case models.PaymentSuccessful:
		resp.Message = "Thank you, your vote has been recorded."
	case models.PaymentCancelled:
		resp.Message = "Your payment was cancelled."
	default:
		resp.Message = "Your payment was not completed."
	}

	if txRef := strings.TrimSpace(r.URL.Query().Get("tx_ref")); txRef != "" {
		resp.TxRef = txRef
		var stored string
		err := h.db.QueryRowContext(r.Context(), `SELECT status FROM payment WHERE tx_ref = $1`, txRef).Scan(&stored)
		switch {
		case err == nil:
			resp.PaymentStatus = stored
		case !errors.Is(err, sql.ErrNoRows):
			slog.Error("failed to query payment status", "error", err, "tx_ref", txRef)
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// StubCheckout handles GET /pay/stub. It stands in for the hosted checkout
// page when the stub provider is active: the payment is settled through the
// same signed webhook path a real gateway would use.
func (h *VoteHandler) StubCheckout(w http.ResponseWriter, r *http.Request) {
	stub, ok := h.provider.(*payments.Stub)
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Not found")
		return
	}

	txRef := r.URL.Query().Get("tx_ref")
	if txRef == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "tx_ref is required")
		return
	}
	outcome := r.URL.Query().Get("status")
	switch outcome {
	case "":
		outcome = payments.StatusSuccessful
	case payments.StatusSuccessful, payments.StatusCancelled, payments.StatusFailed:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be successful, cancelled or failed")
		return
	}

	var amount int64
	var currency string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT amount, currency FROM payment WHERE tx_ref = $1
	`, txRef).Scan(&amount, &currency)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Payment not found")
		return
	}
	if err != nil {
		slog.Error("failed to query payment", "error", err, "tx_ref", txRef)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	body, _ := json.Marshal(payments.StubPayload{
		TxRef:         txRef,
		Status:        outcome,
		Amount:        amount,
		Currency:      currency,
		TransactionID: "stub-" + txRef,
	})
	ev, err := stub.HandleWebhook(r.Context(), body, map[string]string{"x-signature": stub.Sign(body)})
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid checkout outcome")
		return
	}

	res, err := ReconcilePayment(r.Context(), h.db, ev, h.clock.Now())
	if err != nil {
		slog.Error("failed to reconcile stub payment", "error", err, "tx_ref", txRef)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply payment")
		return
	}

	q := url.Values{}
	q.Set("status", res.Status)
	q.Set("tx_ref", txRef)
	http.Redirect(w, r, "/vote-status?"+q.Encode(), http.StatusSeeOther)
}

// Countdown handles GET /api/countdown
func (h *VoteHandler) Countdown(w http.ResponseWriter, r *http.Request) {
	cd := clock.NewCountdown(h.clock.Now(), h.cfg.VotingClosesAt, h.cfg.VotingLocation())
	hours, minutes, seconds := cd.Parts()

	middleware.JSONResponse(w, http.StatusOK, models.CountdownResponse{
		Now:              cd.Now,
		Target:           cd.Target,
		RemainingSeconds: int64(cd.Remaining / time.Second),
		Hours:            hours,
		Minutes:          minutes,
		Seconds:          seconds,
		Ended:            cd.Ended,
	})
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
