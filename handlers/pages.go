// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/content"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/models"
)

type PageHandler struct {
	cfg   cliparse.Config
	pages *content.Library
	clock clock.Clock
}

func NewPageHandler(cfg cliparse.Config, pages *content.Library, clk clock.Clock) *PageHandler {
	return &PageHandler{cfg: cfg, pages: pages, clock: clk}
}

// GetPage handles GET /pages/{slug}
func (h *PageHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	p, ok := h.pages.Page(r.PathValue("slug"))
	if !ok {
		middleware.ErrorResponse(w, http.StatusNotFound, "Page not found")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, models.PageResponse{Slug: p.Slug, Title: p.Title, HTML: p.HTML})
}

// Sitemap handles GET /sitemap.xml
func (h *PageHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	out, err := content.Sitemap(h.cfg.PublicBaseURL, h.clock.Now())
	if err != nil {
		slog.Error("failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Write(out)
}

// Robots handles GET /robots.txt
func (h *PageHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content.Robots(h.cfg.PublicBaseURL)))
}
