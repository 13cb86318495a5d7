// Package app wires the spoilage engine and its collaborators for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/budprat/stock-sense/backend-go/internal/cache"
	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/budprat/stock-sense/backend-go/internal/repository/postgres"
	"github.com/budprat/stock-sense/backend-go/internal/service"
	"github.com/budprat/stock-sense/backend-go/internal/spoilage"
	"github.com/budprat/stock-sense/backend-go/internal/storage"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// EngineConfig maps the risk settings onto the engine's config.
func EngineConfig(cfg config.RiskConfig) spoilage.Config {
	return spoilage.Config{
		WasteWindowMonths:  cfg.WasteWindowMonths,
		WasteConcurrency:   cfg.WasteConcurrency,
		NeutralStorageRisk: cfg.NeutralStorageRisk,
		BatchTimeout:       cfg.BatchTimeout(),
	}
}

// NewEngine builds a postgres-backed engine.
func NewEngine(db *sqlx.DB, cfg config.RiskConfig, opts ...spoilage.Option) (*spoilage.Engine, error) {
	return spoilage.NewEngine(
		postgres.NewInventoryRepository(db),
		postgres.NewWasteRepository(db),
		postgres.NewStorageConditionRepository(db),
		EngineConfig(cfg),
		opts...,
	)
}

// NewSpoilageService builds the engine, the job store and, when an endpoint is
// configured, the export bucket. Cache and storage failures degrade to no
// job store and no exports.
func NewSpoilageService(ctx context.Context, cfg *config.Config, db *sqlx.DB, opts ...spoilage.Option) (*service.SpoilageService, error) {
	engine, err := NewEngine(db, cfg.Risk, opts...)
	if err != nil {
		return nil, fmt.Errorf("build spoilage engine: %w", err)
	}

	jobs, err := cache.NewPredictionJobStore(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("prediction job store unavailable, falling back to no-op store")
		jobs = cache.NewNoopPredictionJobStore()
	}

	var exports storage.ObjectStorage
	if cfg.Storage.Endpoint != "" {
		client, err := storage.NewMinioClient(ctx, cfg.Storage)
		if err != nil {
			log.Warn().Err(err).Msg("object storage unavailable, prediction exports disabled")
		} else {
			exports = client
		}
	}

	return service.NewSpoilageService(
		engine,
		postgres.NewInventoryRepository(db),
		jobs,
		exports,
		cfg.Risk.AlertHorizonDays,
	), nil
}
