// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/notify"
	"github.com/danielhkuo/treat-pageant/storage"
)

type RegistrationHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	store  storage.ObjectStore
	notify *notify.Dispatcher
	clock  clock.Clock
}

func NewRegistrationHandler(db *sql.DB, cfg cliparse.Config, store storage.ObjectStore, n *notify.Dispatcher, clk clock.Clock) *RegistrationHandler {
	return &RegistrationHandler{db: db, cfg: cfg, store: store, notify: n, clock: clk}
}

// RegistrationInfo handles GET /register
func (h *RegistrationHandler) RegistrationInfo(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.RegistrationInfoResponse{
		Open:      h.cfg.RegistrationOpen,
		EventYear: h.cfg.EventYear,
	})
}

// registrationForm is the parsed and sanitized multipart submission
type registrationForm struct {
	models.Registration
	portrait     upload
	paymentProof upload
}

func (h *RegistrationHandler) parseForm(r *http.Request) (registrationForm, fieldErrors) {
	v := func(key string) string { return clean(r.FormValue(key)) }

	var f registrationForm
	f.FullName = v("fullName")
	f.Email = strings.TrimSpace(r.FormValue("email"))
	f.WhatsappNumber = strings.TrimSpace(r.FormValue("whatsappNumber"))
	f.Instagram = v("instagram")
	f.Tiktok = v("tiktok")
	f.Facebook = v("facebook")
	f.Age = v("age")
	f.Height = v("height")
	f.WinnerResponse = v("winnerResponse")
	f.State = titleCase(v("state"))
	f.DOB = strings.TrimSpace(r.FormValue("dob"))
	f.Address = v("address")
	f.LGA = v("lga")
	f.Student = v("student")
	f.Health = v("health")
	f.AddedInfo = v("addedinfo")

	fe := fieldErrors{}

	if fe.required("fullName", f.FullName, "Full name is required") {
		fe.length("fullName", f.FullName, 2, 50, "Too Short!", "Too Long!")
	}
	if fe.required("email", f.Email, "Email is required") && !validEmail(f.Email) {
		fe.add("email", "Please enter a valid email address")
	}
	if fe.required("whatsappNumber", f.WhatsappNumber, "WhatsApp number is required") {
		if !digitsPattern.MatchString(f.WhatsappNumber) {
			fe.add("whatsappNumber", "Must be only digits")
		}
		n := utf8.RuneCountInString(f.WhatsappNumber)
		if n < 10 {
			fe.add("whatsappNumber", "Must be at least 10 digits")
		}
		if n > 15 {
			fe.add("whatsappNumber", "Must be at most 15 digits")
		}
	}
	fe.required("instagram", f.Instagram, "Instagram handle is required")
	fe.required("tiktok", f.Tiktok, "Tiktok handle is required")
	fe.required("facebook", f.Facebook, "Facebook name is required")
	fe.required("age", f.Age, "Age is required")
	fe.required("height", f.Height, "Height is required")
	if fe.required("winnerResponse", f.WinnerResponse, "This field is required") {
		fe.length("winnerResponse", f.WinnerResponse, 20, 0, "Response must be at least 20 characters", "")
	}
	fe.required("state", f.State, "State of Origin is required")
	if fe.required("dob", f.DOB, "Date of birth is required") && !validDate(f.DOB) {
		fe.add("dob", "Please select a valid and complete date")
	}
	fe.required("address", f.Address, "Address is required")
	fe.required("lga", f.LGA, "local government is required")
	fe.required("addedinfo", f.AddedInfo, "This field is required")

	f.portrait, _ = checkFile(fe, "portrait", formFile(r.MultipartForm, "portrait"), h.cfg.MaxUploadBytes,
		imageTypes, "A portrait is required", "Unsupported format. Use JPG, JPEG, or PNG.")
	f.paymentProof, _ = checkFile(fe, "paymentProof", formFile(r.MultipartForm, "paymentProof"), h.cfg.MaxUploadBytes,
		proofTypes, "Proof of payment is required", "Unsupported format. Use JPG, JPEG, PNG, or PDF.")

	return f, fe
}

// Register handles POST /register (multipart form)
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.RegistrationOpen {
		middleware.ErrorResponse(w, http.StatusForbidden, "Registration is closed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 2*h.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		formError(w, err)
		return
	}

	f, fe := h.parseForm(r)
	if len(fe) > 0 {
		middleware.ValidationErrorResponse(w, fe)
		return
	}

	portraitName := fmt.Sprintf("portraits/%s%s", uuid.NewString(), f.portrait.ext)
	proofName := fmt.Sprintf("payment-proofs/%s%s", uuid.NewString(), f.paymentProof.ext)

	portraitURL, err := putUpload(r, h.store, portraitName, f.portrait)
	if err != nil {
		slog.Error("failed to upload portrait", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload files")
		return
	}
	proofURL, err := putUpload(r, h.store, proofName, f.paymentProof)
	if err != nil {
		slog.Error("failed to upload payment proof", "error", err)
		removeObject(r, h.store, portraitName)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload files")
		return
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate registration ID", "error", err)
		removeObject(r, h.store, portraitName)
		removeObject(r, h.store, proofName)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save registration")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO registration (
			id, full_name, email, whatsapp_number, instagram, tiktok, facebook, age, height,
			winner_response, state, dob, address, lga, student, health, added_info,
			portrait_url, payment_proof_url, approval_status, event_year, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`, id, f.FullName, f.Email, f.WhatsappNumber, f.Instagram, f.Tiktok, f.Facebook, f.Age, f.Height,
		f.WinnerResponse, f.State, f.DOB, f.Address, f.LGA, nullIfEmpty(f.Student), nullIfEmpty(f.Health), f.AddedInfo,
		portraitURL, proofURL, models.ApprovalPending, h.cfg.EventYear, h.clock.Now())
	if err != nil {
		slog.Error("failed to insert registration", "error", err)
		removeObject(r, h.store, portraitName)
		removeObject(r, h.store, proofName)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save registration")
		return
	}

	slog.Info("registration received", "registration_id", id, "state", f.State, "event_year", h.cfg.EventYear)
	h.notify.Send(fmt.Sprintf("New registration: %s (%s), %s state. WhatsApp %s.",
		f.FullName, f.Email, f.State, f.WhatsappNumber))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{
		ID:      id,
		Message: "Registration submitted successfully",
	})
}
