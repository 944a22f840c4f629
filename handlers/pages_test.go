// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/treat-pageant/content"
	"github.com/danielhkuo/treat-pageant/models"
	"github.com/danielhkuo/treat-pageant/testutil"
)

func newPageHandler(t *testing.T) *PageHandler {
	t.Helper()
	lib, err := content.Load()
	if err != nil {
		t.Fatalf("load content: %v", err)
	}
	return NewPageHandler(testutil.GetTestConfig(), lib, testClock)
}

func TestGetPage(t *testing.T) {
	handler := newPageHandler(t)

	tests := []struct {
		slug           string
		expectedStatus int
		wantTitle      string
	}{
		{"home", http.StatusOK, "Welcome to Mr & Miss Treat Nigeria"},
		{"about", http.StatusOK, "About Us"},
		{"ticket", http.StatusOK, "Tickets"},
		{"admin", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/pages/"+tt.slug, nil)
			req.SetPathValue("slug", tt.slug)
			w := httptest.NewRecorder()
			handler.GetPage(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}
			var resp models.PageResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Title != tt.wantTitle || resp.HTML == "" {
				t.Errorf("page = %+v", resp)
			}
		})
	}
}

func TestSitemapAndRobots(t *testing.T) {
	handler := newPageHandler(t)

	w := httptest.NewRecorder()
	handler.Sitemap(w, httptest.NewRequest("GET", "/sitemap.xml", nil))
	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "<loc>https://mrandmisstreat.test/register</loc>") {
		t.Errorf("sitemap = %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}

	w = httptest.NewRecorder()
	handler.Robots(w, httptest.NewRequest("GET", "/robots.txt", nil))
	if !strings.Contains(w.Body.String(), "Sitemap: https://mrandmisstreat.test/sitemap.xml") {
		t.Errorf("robots = %s", w.Body.String())
	}
}
