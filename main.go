// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/treat-pageant/cliparse"
	"github.com/danielhkuo/treat-pageant/clock"
	"github.com/danielhkuo/treat-pageant/content"
	"github.com/danielhkuo/treat-pageant/db"
	"github.com/danielhkuo/treat-pageant/middleware"
	"github.com/danielhkuo/treat-pageant/notify"
	"github.com/danielhkuo/treat-pageant/payments"
	"github.com/danielhkuo/treat-pageant/router"
	"github.com/danielhkuo/treat-pageant/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	store, err := storage.NewStore(ctx, cfg)
	if err != nil {
		slog.Error("storage setup failed", "error", err)
		os.Exit(1)
	}

	provider, err := payments.NewProvider(cfg)
	if err != nil {
		slog.Error("payment provider setup failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Payment provider ready", "provider", provider.Name())

	notifier, err := notify.New(cfg)
	if err != nil {
		slog.Error("notifier setup failed", "error", err)
		os.Exit(1)
	}
	dispatcher := notify.NewDispatcher(notifier, 15*time.Second)

	pages, err := content.Load()
	if err != nil {
		slog.Error("failed to load pages", "error", err)
		os.Exit(1)
	}

	// Voting deadlines follow the time API rather than the host clock
	clk := clock.NewWorldTime(cfg.TimeAPIURL, nil)
	go clk.Run(ctx)

	mux := router.NewRouter(dbConn, cfg, router.Services{
		Store:    store,
		Payments: provider,
		Notify:   dispatcher,
		Pages:    pages,
		Clock:    clk,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "event_year", cfg.EventYear)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	dispatcher.Wait()
}
