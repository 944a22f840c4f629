// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/notify"
)

type MessageHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	notify *notify.Dispatcher
	clock  clock.Clock
}

func NewMessageHandler(db *sql.DB, cfg cliparse.Config, n *notify.Dispatcher, clk clock.Clock) *MessageHandler {
	return &MessageHandler{db: db, cfg: cfg, notify: n, clock: clk}
}

func validateContact(req models.ContactRequest) fieldErrors {
	fe := fieldErrors{}
	if fe.required("name", req.Name, "Name is required") {
		fe.length("name", req.Name, 2, 50, "Name is too short!", "Name is too long!")
	}
	if fe.required("email", req.Email, "Email is required") && !validEmail(req.Email) {
		fe.add("email", "Invalid email address")
	}
	if fe.required("message", req.Message, "Message is required") {
		fe.length("message", req.Message, 10, 0, "Message must be at least 10 characters", "")
	}
	return fe
}

// SubmitContact handles POST /contact
func (h *MessageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var req models.ContactRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = clean(req.Name)
	req.Email = clean(req.Email)
	req.Message = clean(req.Message)

	if fe := validateContact(req); len(fe) > 0 {
		middleware.ValidationErrorResponse(w, fe)
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate message ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO message (id, name, email, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, req.Name, req.Email, req.Message, models.MessageUnread, h.clock.Now())
	if err != nil {
		slog.Error("failed to insert message", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to send message")
		return
	}

	slog.Info("contact message received", "message_id", id)
	h.notify.Send(fmt.Sprintf("New message from %s (%s):\n%s", req.Name, req.Email, req.Message))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{
		ID:      id,
		Message: "Message sent successfully",
	})
}
