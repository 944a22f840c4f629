// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/storage"
)

const (
	galleryPrefix = "gallery/"
	galleryLimit  = 200
	// total request cap for one gallery batch
	maxGalleryBatchBytes = 64 << 20
)

type GalleryHandler struct {
	cfg   cliparse.Config
	store storage.ObjectStore
}

func NewGalleryHandler(cfg cliparse.Config, store storage.ObjectStore) *GalleryHandler {
	return &GalleryHandler{cfg: cfg, store: store}
}

// ListGallery handles GET /gallery
func (h *GalleryHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	objects, err := h.store.List(r.Context(), galleryPrefix, galleryLimit)
	if err != nil {
		slog.Error("failed to list gallery", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to load gallery")
		return
	}

	resp := models.GalleryResponse{Images: make([]models.GalleryImage, 0, len(objects))}
	for _, obj := range objects {
		resp.Images = append(resp.Images, models.GalleryImage{
			Name: strings.TrimPrefix(obj.Name, galleryPrefix),
			URL:  h.store.PublicURL(obj.Name),
		})
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// UploadGallery handles POST /admin/gallery (multipart, field "files")
func (h *GalleryHandler) UploadGallery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxGalleryBatchBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		formError(w, err)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No files provided")
		return
	}

	resp := models.GalleryUploadResponse{Uploaded: []string{}, Skipped: []string{}}
	for _, fh := range files {
		name := safeFileName(fh.Filename)
		objectName := galleryPrefix + name

		exists, err := h.store.Exists(r.Context(), objectName)
		if err != nil {
			slog.Warn("failed to check gallery object", "error", err, "object", objectName)
			resp.Skipped = append(resp.Skipped, name)
			continue
		}
		if exists {
			resp.Skipped = append(resp.Skipped, name)
			continue
		}

		fe := fieldErrors{}
		u, ok := checkFile(fe, "files", fh, h.cfg.MaxUploadBytes, galleryTypes, "", "Unsupported format")
		if !ok {
			slog.Info("gallery file rejected", "file", name, "reason", fe["files"])
			resp.Skipped = append(resp.Skipped, name)
			continue
		}

		if _, err := putUpload(r, h.store, objectName, u); err != nil {
			slog.Warn("failed to upload gallery file", "error", err, "object", objectName)
			resp.Skipped = append(resp.Skipped, name)
			continue
		}
		resp.Uploaded = append(resp.Uploaded, name)
	}

	slog.Info("gallery upload", "uploaded", len(resp.Uploaded), "skipped", len(resp.Skipped))

	if len(resp.Uploaded) == 0 {
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, resp)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}
