package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ticketdrift/backend/internal/cache"
	"github.com/ticketdrift/backend/internal/config"
	"github.com/ticketdrift/backend/internal/db"
	"github.com/ticketdrift/backend/internal/embed"
	httpapi "github.com/ticketdrift/backend/internal/http"
	"github.com/ticketdrift/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "drift-backend").Logger()

	ctx := context.Background()
	store, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect db")
	}
	defer store.Close()

	var embedder embed.Embedder
	if cfg.EmbedURL == "" {
		embedder = embed.MockEmbedder{Dimension: cfg.EmbedDim}
		logger.Info().Msg("using mock embedder")
	} else {
		embedder = embed.HTTPEmbedder{BaseURL: cfg.EmbedURL, Dimension: cfg.EmbedDim}
	}

	analysis := &service.AnalysisService{
		Source: store,
		Cache:  cache.New(cfg.AnomalyCacheTTL),
		Logger: logger,
	}
	ingest := &service.IngestService{
		Store:    store,
		Embedder: embedder,
		Logger:   logger,
	}

	router := httpapi.Router(cfg, store, analysis, ingest, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
