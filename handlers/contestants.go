// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/treat-pageant/auth"
	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/db"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/storage"
)

type ContestantHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	store storage.ObjectStore
	clock clock.Clock
}

func NewContestantHandler(db *sql.DB, cfg cliparse.Config, store storage.ObjectStore, clk clock.Clock) *ContestantHandler {
	return &ContestantHandler{db: db, cfg: cfg, store: store, clock: clk}
}

const contestantColumns = `id, name, contestant_number, state, image_url, votes, event_year, created_at`

func scanContestant(row interface{ Scan(...any) error }) (models.Contestant, error) {
	var c models.Contestant
	err := row.Scan(&c.ID, &c.Name, &c.ContestantNumber, &c.State, &c.ImageURL, &c.Votes, &c.EventYear, &c.CreatedAt)
	return c, err
}

// ListContestants handles GET /contestants
func (h *ContestantHandler) ListContestants(w http.ResponseWriter, r *http.Request) {
	rows, err := h.db.QueryContext(r.Context(), `
		SELECT `+contestantColumns+`
		FROM contestant
		WHERE event_year = $1
		ORDER BY votes DESC, contestant_number ASC
	`, h.cfg.EventYear)
	if err != nil {
		slog.Error("failed to query contestants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	resp := models.ContestantListResponse{Contestants: []models.Contestant{}}
	for rows.Next() {
		c, err := scanContestant(rows)
		if err != nil {
			slog.Error("failed to scan contestant", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		resp.Contestants = append(resp.Contestants, c)
		resp.TotalVotes += c.Votes
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to iterate contestants", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// GetContestant handles GET /contestants/{name}
func (h *ContestantHandler) GetContestant(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("name"))
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := scanContestant(h.db.QueryRowContext(r.Context(), `
		SELECT `+contestantColumns+`
		FROM contestant
		WHERE name = $1 AND event_year = $2
	`, name, h.cfg.EventYear))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Contestant not found")
		return
	}
	if err != nil {
		slog.Error("failed to query contestant", "error", err, "name", name)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, c)
}

// CreateContestant handles POST /admin/contestants (multipart form)
func (h *ContestantHandler) CreateContestant(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		formError(w, err)
		return
	}

	name := clean(r.FormValue("name"))
	numberRaw := strings.TrimSpace(r.FormValue("contestant_number"))
	state := titleCase(clean(r.FormValue("state")))

	fe := fieldErrors{}
	fe.required("name", name, "Name is required.")
	number := 0
	if fe.required("contestant_number", numberRaw, "Contestant number is required.") {
		n, err := strconv.Atoi(numberRaw)
		if err != nil || n <= 0 {
			fe.add("contestant_number", "Contestant number must be a positive whole number.")
		}
		number = n
	}
	fe.required("state", state, "State is required.")

	var img upload
	hasImage := false
	if fh := formFile(r.MultipartForm, "image"); fh != nil {
		img, hasImage = checkFile(fe, "image", fh, h.cfg.MaxUploadBytes, galleryTypes, "", "Unsupported format. Use JPG, PNG, WEBP or GIF.")
	}

	if len(fe) > 0 {
		middleware.ValidationErrorResponse(w, fe)
		return
	}

	now := h.clock.Now()
	var imageURL *string
	var objectName string
	if hasImage {
		objectName = fmt.Sprintf("contestant-images/public/%d_%s", now.UnixMilli(), safeFileName(img.header.Filename))
		url, err := putUpload(r, h.store, objectName, img)
		if err != nil {
			slog.Error("failed to upload contestant image", "error", err, "object", objectName)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload image")
			return
		}
		imageURL = &url
	}

	id, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate contestant ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create contestant")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO contestant (id, name, contestant_number, state, image_url, votes, event_year, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
	`, id, name, number, state, imageURL, h.cfg.EventYear, now)
	if err != nil {
		if hasImage {
			removeObject(r, h.store, objectName)
		}
		if db.IsUniqueViolation(err) {
			middleware.ErrorResponse(w, http.StatusConflict, "A contestant with this name or number already exists")
			return
		}
		slog.Error("failed to insert contestant", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create contestant")
		return
	}

	slog.Info("contestant created", "contestant_id", id, "name", name, "number", number)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatedResponse{
		ID:      id,
		Message: "Contestant uploaded successfully!",
	})
}
