package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/cqle/dba-virtual/backend/internal/config"
	"github.com/cqle/dba-virtual/backend/internal/database"
	"github.com/cqle/dba-virtual/backend/internal/handler"
	"github.com/cqle/dba-virtual/backend/internal/model/persona"
	"github.com/cqle/dba-virtual/backend/internal/service/ai"
	"github.com/cqle/dba-virtual/backend/internal/service/chat"
	"github.com/cqle/dba-virtual/backend/internal/service/conversation"
	"github.com/cqle/dba-virtual/backend/internal/service/history"
	"github.com/cqle/dba-virtual/backend/internal/service/ratelimit"
)

func runServe(ctx context.Context, configFile string) error {
	cfg, logger, err := bootstrap(configFile)
	if err != nil {
		return err
	}

	personaStore := persona.NewMemoryStore(persona.Seed())
	active, err := persona.Resolve(personaStore, cfg.AI.Persona)
	if err != nil {
		return err
	}
	instruction := ai.NewPersonaPromptManager().BuildSystemInstruction(active)

	limiter, err := ratelimit.New(ctx, cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to initialize rate limiter: %w", err)
	}
	if closer, ok := limiter.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	if limiter.Mode() == "bypass" {
		logger.Warn().Msg("rate limiting bypassed: no redis url configured")
	} else {
		logger.Info().Int("max_requests", cfg.RateLimit.MaxRequests).Dur("window", cfg.RateLimit.Window).Msg("rate limiting enabled")
	}

	store, storeName, db, err := openStore(cfg.Database, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer database.Close(db)
	}

	generator, err := ai.NewGenerator(ctx, cfg.AI)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.AI.Provider).Msg("failed to initialize generation backend, continuing without it")
		generator = nil
	}
	invoker := ai.NewInvoker(generator, cfg.AI.Timeout)
	generation := "unavailable"
	if invoker.Ready() {
		generation = "ready"
		logger.Info().Str("backend", invoker.Backend()).Msg("generation backend initialized")
	} else {
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("generation backend not configured, /api/chat will answer 500")
	}

	orchestrator := conversation.New(
		limiter,
		history.NewAssembler(instruction),
		invoker,
		chat.NewRecorder(store),
		conversation.Options{ExposeDetails: cfg.Server.ExposeErrorDetails},
	)

	router := handler.NewRouter(handler.Deps{
		Logger:       logger,
		CORSOrigins:  cfg.Server.CORSOrigins,
		Personas:     personaStore,
		PersonaID:    active.ID,
		Store:        store,
		Orchestrator: orchestrator,
		Health: handler.Health{
			RateLimit:  limiter.Mode(),
			Store:      storeName,
			Generation: generation,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info().Str("addr", srv.Addr).Str("persona", active.ID).Msg("DBA Virtual backend listening")
	return runServer(ctx, srv)
}

// openStore picks the gorm store when a database driver is configured and the
// in-memory store otherwise.
func openStore(cfg config.DatabaseConfig, logger zerolog.Logger) (chat.Store, string, *gorm.DB, error) {
	if !cfg.Persistent() {
		logger.Warn().Msg("no database configured, conversations are kept in memory")
		return chat.NewMemoryStore(), config.DriverMemory, nil, nil
	}

	db, err := database.Open(cfg, logger)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db, chat.Models()...); err != nil {
			_ = database.Close(db)
			return nil, "", nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}
	return chat.NewGormStore(db), cfg.Driver, db, nil
}

func runMigrate(configFile string) error {
	cfg, logger, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	if !cfg.Database.Persistent() {
		return errors.New("migrate requires DATABASE_DRIVER=postgres or sqlite")
	}

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db, chat.Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("migration complete")
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
