// Package main implements the journal admin HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dsjohal14/ledgerwal/internal/checkpointmirror"
	"github.com/dsjohal14/ledgerwal/internal/config"
	"github.com/dsjohal14/ledgerwal/internal/db"
	"github.com/dsjohal14/ledgerwal/internal/httpapi"
	"github.com/dsjohal14/ledgerwal/internal/journal"
	"github.com/dsjohal14/ledgerwal/internal/obs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("journalsrv")

	var opts []journal.Option
	opts = append(opts, journal.WithLogger(logger))
	if cfg.MaxFileSize > 0 {
		opts = append(opts, journal.WithMaxFileSize(uint64(cfg.MaxFileSize)))
	}
	if cfg.MaxRecordSize > 0 {
		opts = append(opts, journal.WithMaxRecordSize(uint64(cfg.MaxRecordSize)))
	}

	var mirror *checkpointmirror.Store
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		database, err := db.New(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to checkpoint mirror database")
		}
		defer database.Close()
		mirror = checkpointmirror.New(database.Pool())

		ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
		if err := mirror.EnsureSchema(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to ensure checkpoint mirror schema")
		}
		cancel()

		opts = append(opts, journal.WithCheckpointMirror(mirror))
		logger.Info().Msg("checkpoint mirror enabled")
	}

	j, err := journal.AppendJournal(cfg.JournalDir, opts...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open journal")
	}
	defer func() { _ = j.Close() }()

	handler := httpapi.NewHandler(j, logger)
	r := setupRouter(handler)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info().Str("addr", addr).Str("journal_dir", cfg.JournalDir).Msg("starting journal admin server")

	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func setupRouter(h *httpapi.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Get("/health", h.HandleHealth)
	r.Get("/segments", h.HandleSegments)
	r.Get("/checkpoints", h.HandleListCheckpoints)
	r.Post("/checkpoints", h.HandleRegisterCheckpoint)
	r.Post("/gc", h.HandleGC)

	return r
}
