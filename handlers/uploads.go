// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/storage"
)

func putUpload(r *http.Request, store storage.ObjectStore, name string, u upload) (string, error) {
	f, err := u.header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return store.Put(r.Context(), name, f, u.contentType)
}

// removeObject rolls back an upload whose row never made it to the database.
// It runs detached from the request context so a cancelled client still
// gets cleaned up.
func removeObject(r *http.Request, store storage.ObjectStore, name string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 30*time.Second)
	defer cancel()
	if err := store.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("failed to remove orphaned upload", "error", err, "object", name)
	}
}

func formError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return
	}
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
}
