// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/content"
	"github.com/danielhkuo/treat-pageant/handlers"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/notify"
	"github.com/danielhkuo/treat-pageant/payments"
	"github.com/danielhkuo/treat-pageant/storage"
)

// Services are the backends shared by all handlers
type Services struct {
	Store    storage.ObjectStore
	Payments payments.Provider
	Notify   *notify.Dispatcher
	Pages    *content.Library
	Clock    clock.Clock
}

func NewRouter(db *sql.DB, cfg cliparse.Config, svc Services) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	contestantHandler := handlers.NewContestantHandler(db, cfg, svc.Store, svc.Clock)
	voteHandler := handlers.NewVoteHandler(db, cfg, svc.Payments, svc.Clock)
	registrationHandler := handlers.NewRegistrationHandler(db, cfg, svc.Store, svc.Notify, svc.Clock)
	messageHandler := handlers.NewMessageHandler(db, cfg, svc.Notify, svc.Clock)
	galleryHandler := handlers.NewGalleryHandler(cfg, svc.Store)
	pageHandler := handlers.NewPageHandler(cfg, svc.Pages, svc.Clock)
	adminHandler := handlers.NewAdminHandler(db, cfg, svc.Clock)

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.RequireAdmin(cfg.JWTSecret, svc.Clock.Now, h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Contestants and voting (public)
	mux.HandleFunc("GET /contestants", middleware.WithLogging(contestantHandler.ListContestants))
	mux.HandleFunc("GET /contestants/{name}", middleware.WithLogging(contestantHandler.GetContestant))
	mux.HandleFunc("POST /api/create-payment", middleware.WithLogging(voteHandler.CreatePayment))
	mux.HandleFunc("GET /api/countdown", middleware.WithLogging(voteHandler.Countdown))
	mux.HandleFunc("GET /vote-status", middleware.WithLogging(voteHandler.VoteStatus))
	if _, ok := svc.Payments.(*payments.Stub); ok {
		mux.HandleFunc("GET /pay/stub", middleware.WithLogging(voteHandler.StubCheckout))
	}

	// Payment gateway callbacks
	mux.HandleFunc("POST /webhooks/payments", middleware.WithLogging(voteHandler.Webhook))

	// Registration and contact (public)
	mux.HandleFunc("GET /register", middleware.WithLogging(registrationHandler.RegistrationInfo))
	mux.HandleFunc("POST /register", middleware.WithLogging(registrationHandler.Register))
	mux.HandleFunc("POST /contact", middleware.WithLogging(messageHandler.SubmitContact))

	// Site content
	mux.HandleFunc("GET /gallery", middleware.WithLogging(galleryHandler.ListGallery))
	mux.HandleFunc("GET /pages/{slug}", middleware.WithLogging(pageHandler.GetPage))
	mux.HandleFunc("GET /sitemap.xml", middleware.WithLogging(pageHandler.Sitemap))
	mux.HandleFunc("GET /robots.txt", middleware.WithLogging(pageHandler.Robots))

	// Admin dashboard (bearer token)
	mux.HandleFunc("POST /admin/login", middleware.WithLogging(adminHandler.Login))
	mux.HandleFunc("GET /admin/session", admin(adminHandler.Session))
	mux.HandleFunc("GET /admin/summary", admin(adminHandler.Summary))
	mux.HandleFunc("GET /admin/registrations", admin(adminHandler.ListRegistrations))
	mux.HandleFunc("GET /admin/registrations/export.csv", admin(adminHandler.ExportRegistrations))
	mux.HandleFunc("PATCH /admin/registrations/{id}/approval", admin(adminHandler.UpdateApproval))
	mux.HandleFunc("GET /admin/messages", admin(adminHandler.ListMessages))
	mux.HandleFunc("POST /admin/messages/{id}/read", admin(adminHandler.MarkMessageRead))
	mux.HandleFunc("POST /admin/contestants", admin(contestantHandler.CreateContestant))
	mux.HandleFunc("POST /admin/gallery", admin(galleryHandler.UploadGallery))

	// Locally stored uploads
	if fs, ok := svc.Store.(interface{ Handler() http.Handler }); ok {
		mux.Handle("GET /files/", fs.Handler())
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("treat-pageant API v1"))
	})

	return mux
}
