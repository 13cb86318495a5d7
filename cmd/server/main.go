// backend-go/cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/api"
	"github.com/budprat/stock-sense/backend-go/internal/app"
	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/budprat/stock-sense/backend-go/internal/metrics"
	"github.com/budprat/stock-sense/backend-go/internal/repository/postgres"
	"github.com/budprat/stock-sense/backend-go/internal/spoilage"
	"github.com/budprat/stock-sense/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Log.Level)
	logger.SetFormat(cfg.Log.Format)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	var (
		recorder *metrics.Recorder
		opts     []spoilage.Option
	)
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		opts = append(opts, spoilage.WithMetrics(recorder))
	}

	ctx := context.Background()
	spoilageService, err := app.NewSpoilageService(ctx, cfg, db.DB, opts...)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialise spoilage service")
	}

	router := api.NewRouter(&api.Services{
		Spoilage: spoilageService,
		Metrics:  recorder,
		DB:       db,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// In-flight batch requests get the configured batch timeout to finish.
	grace := 5 * time.Second
	if bt := cfg.Risk.BatchTimeout(); bt > grace {
		grace = bt
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
