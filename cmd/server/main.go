package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/agenthands/shelfgraph/internal/app"
	"github.com/agenthands/shelfgraph/internal/config"
	"github.com/agenthands/shelfgraph/internal/logging"
	"github.com/agenthands/shelfgraph/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := app.LoadConfig("")
	if err != nil {
		fallback := logging.New(config.Default().Log)
		fallback.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.New(cfg.Log)
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using environment")
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shelf, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}
	if err := shelf.BuildIndices(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to build indices")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           server.NewServer(shelf, logger).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := shelf.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to close neo4j driver")
	}
}
