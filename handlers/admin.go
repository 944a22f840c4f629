// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
)

type AdminHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	clock clock.Clock
}

func NewAdminHandler(db *sql.DB, cfg cliparse.Config, clk clock.Clock) *AdminHandler {
	return &AdminHandler{db: db, cfg: cfg, clock: clk}
}

// Login handles POST /admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if err := auth.CheckCredentials(req.Email, req.Password, h.cfg.AdminEmail, h.cfg.AdminPasswordHash); err != nil {
		slog.Warn("admin login failed", "remote", middleware.GetClientIP(r))
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, expiresAt, err := auth.IssueAdminToken(h.cfg.AdminEmail, h.cfg.JWTSecret, h.clock.Now())
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("admin logged in", "email", h.cfg.AdminEmail)
	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Token: token, ExpiresAt: expiresAt})
}

// Session handles GET /admin/session
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.AdminFromContext(r.Context())
	if !ok {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not logged in")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{Email: claims.Email, ExpiresAt: claims.ExpiresAt})
}

const registrationColumns = `id, full_name, email, whatsapp_number, instagram, tiktok, facebook, age, height,
	winner_response, state, dob, address, lga, student, health, added_info,
	portrait_url, payment_proof_url, approval_status, event_year, created_at, reviewed_at`

func (h *AdminHandler) loadRegistrations(ctx context.Context, year int) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registration`
	var args []any
	if year != 0 {
		query += ` WHERE event_year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		var reg models.Registration
		var student, health, approval sql.NullString
		var reviewedAt sql.NullTime
		if err := rows.Scan(
			&reg.ID, &reg.FullName, &reg.Email, &reg.WhatsappNumber, &reg.Instagram, &reg.Tiktok, &reg.Facebook,
			&reg.Age, &reg.Height, &reg.WinnerResponse, &reg.State, &reg.DOB, &reg.Address, &reg.LGA,
			&student, &health, &reg.AddedInfo, &reg.PortraitURL, &reg.PaymentProofURL, &approval,
			&reg.EventYear, &reg.CreatedAt, &reviewedAt,
		); err != nil {
			return nil, err
		}
		reg.Student = student.String
		reg.Health = health.String
		reg.ApprovalStatus = normalizeApproval(approval.String)
		if reviewedAt.Valid {
			t := reviewedAt.Time
			reg.ReviewedAt = &t
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

// normalizeApproval treats a missing or unknown status as pending.
func normalizeApproval(s string) string {
	switch s {
	case models.ApprovalAccepted, models.ApprovalRejected:
		return s
	default:
		return models.ApprovalPending
	}
}

// groupByYear buckets registrations (already newest first) by event year,
// newest year first.
func groupByYear(regs []models.Registration) []models.RegistrationYearGroup {
	byYear := map[int][]models.Registration{}
	for _, reg := range regs {
		byYear[reg.EventYear] = append(byYear[reg.EventYear], reg)
	}

	groups := make([]models.RegistrationYearGroup, 0, len(byYear))
	for year, data := range byYear {
		groups = append(groups, models.RegistrationYearGroup{Year: year, Data: data})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Year > groups[j].Year })
	return groups
}

// ListRegistrations handles GET /admin/registrations
func (h *AdminHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.loadRegistrations(r.Context(), 0)
	if err != nil {
		slog.Error("failed to load registrations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	buckets := map[string][]models.Registration{}
	for _, reg := range regs {
		buckets[reg.ApprovalStatus] = append(buckets[reg.ApprovalStatus], reg)
	}

	middleware.JSONResponse(w, http.StatusOK, models.RegistrationDashboard{
		Counts: map[string]int{
			models.ApprovalPending:  len(buckets[models.ApprovalPending]),
			models.ApprovalAccepted: len(buckets[models.ApprovalAccepted]),
			models.ApprovalRejected: len(buckets[models.ApprovalRejected]),
		},
		Pending:  groupByYear(buckets[models.ApprovalPending]),
		Accepted: groupByYear(buckets[models.ApprovalAccepted]),
		Rejected: groupByYear(buckets[models.ApprovalRejected]),
	})
}

// UpdateApproval handles PATCH /admin/registrations/{id}/approval
func (h *AdminHandler) UpdateApproval(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	var req models.UpdateApprovalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	switch req.Status {
	case models.ApprovalPending, models.ApprovalAccepted, models.ApprovalRejected:
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "status must be pending, accepted or rejected")
		return
	}

	var reviewedAt *time.Time
	if req.Status != models.ApprovalPending {
		now := h.clock.Now()
		reviewedAt = &now
	}

	result, err := h.db.ExecContext(r.Context(), `
		UPDATE registration SET approval_status = $1, reviewed_at = $2 WHERE id = $3
	`, req.Status, reviewedAt, id)
	if err != nil {
		slog.Error("failed to update approval", "error", err, "registration_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update status")
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Registration not found")
		return
	}

	slog.Info("registration reviewed", "registration_id", id, "status", req.Status)
	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{ID: id, Status: req.Status})
}

var csvHeader = []string{
	"id", "full_name", "email", "whatsapp_number", "instagram", "tiktok", "facebook", "age", "height",
	"winner_response", "state", "dob", "address", "lga", "student", "health", "added_info",
	"portrait_url", "payment_proof_url", "approval_status", "event_year", "created_at",
}

// csvCell quotes values a spreadsheet would evaluate as a formula.
func csvCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

// ExportRegistrations handles GET /admin/registrations/export.csv
func (h *AdminHandler) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	year := h.cfg.EventYear
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "year must be a number")
			return
		}
		year = y
	}

	regs, err := h.loadRegistrations(r.Context(), year)
	if err != nil {
		slog.Error("failed to load registrations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="registrations-%d.csv"`, year))

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, reg := range regs {
		row := []string{
			reg.ID, reg.FullName, reg.Email, reg.WhatsappNumber, reg.Instagram, reg.Tiktok, reg.Facebook,
			reg.Age, reg.Height, reg.WinnerResponse, reg.State, reg.DOB, reg.Address, reg.LGA,
			reg.Student, reg.Health, reg.AddedInfo, reg.PortraitURL, reg.PaymentProofURL,
			reg.ApprovalStatus, strconv.Itoa(reg.EventYear), reg.CreatedAt.UTC().Format(time.RFC3339),
		}
		for i := range row {
			row[i] = csvCell(row[i])
		}
		_ = cw.Write(row)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		slog.Error("failed to write csv", "error", err)
	}
}

// ListMessages handles GET /admin/messages
func (h *AdminHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT id, name, email, message, status, created_at, read_at
		FROM message
		ORDER BY created_at DESC
	`)
	if err != nil {
		slog.Error("failed to query messages", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	resp := models.MessageDashboard{Unread: []models.Message{}, Read: []models.Message{}}
	for rows.Next() {
		var m models.Message
		var readAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.CreatedAt, &readAt); err != nil {
			slog.Error("failed to scan message", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		if m.Status == models.MessageRead {
			resp.Read = append(resp.Read, m)
		} else {
			resp.Unread = append(resp.Unread, m)
		}
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate messages", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	resp.Counts = map[string]int{
		models.MessageUnread: len(resp.Unread),
		models.MessageRead:   len(resp.Read),
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// MarkMessageRead handles POST /admin/messages/{id}/read
func (h *AdminHandler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var status string
	err := h.db.QueryRowContext(r.Context(), `SELECT status FROM message WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		slog.Error("failed to query message", "error", err, "message_id", id)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if status != models.MessageRead {
		if _, err := h.db.ExecContext(r.Context(), `
			UPDATE message SET status = $1, read_at = $2 WHERE id = $3
		`, models.MessageRead, h.clock.Now(), id); err != nil {
			slog.Error("failed to mark message read", "error", err, "message_id", id)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update message")
			return
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.StatusResponse{ID: id, Status: models.MessageRead})
}

func (h *AdminHandler) countBy(ctx context.Context, query string, keys ...string) (map[string]int, error) {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k] = 0
	}

	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] += n
	}
	return counts, rows.Err()
}

// Summary handles GET /admin/summary
func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	regCounts, err := h.countBy(ctx, `
		SELECT COALESCE(approval_status, 'pending'), COUNT(*) FROM registration GROUP BY approval_status
	`, models.ApprovalPending, models.ApprovalAccepted, models.ApprovalRejected)
	if err != nil {
		slog.Error("failed to count registrations", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	msgCounts, err := h.countBy(ctx, `
		SELECT status, COUNT(*) FROM message GROUP BY status
	`, models.MessageUnread, models.MessageRead)
	if err != nil {
		slog.Error("failed to count messages", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// votes and payments cover the current event year only
	var totalVotes int64
	if err := h.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(votes), 0) FROM contestant WHERE event_year = $1
	`, h.cfg.EventYear).Scan(&totalVotes); err != nil {
		slog.Error("failed to sum votes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var paid int
	var revenue int64
	if err := h.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(p.amount), 0)
		FROM payment p
		JOIN contestant c ON c.id = p.contestant_id
		WHERE p.status = $1 AND c.event_year = $2
	`, models.PaymentSuccessful, h.cfg.EventYear).Scan(&paid, &revenue); err != nil {
		slog.Error("failed to sum payments", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AdminSummary{
		Registrations:      regCounts,
		Messages:           msgCounts,
		TotalVotes:         totalVotes,
		SuccessfulPayments: paid,
		Revenue:            revenue,
		RevenueDisplay:     formatRevenue(revenue, h.cfg.VoteCurrency),
	})
}
