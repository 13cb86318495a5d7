package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/budprat/stock-sense/backend-go/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	predictionJobKeyPrefix = "spoilage:jobs"
	jobScanBatchSize       = 100
)

// PredictionJobStore keeps the results of batch prediction jobs. Live risk
// scores are never stored here; every request recomputes them.
type PredictionJobStore interface {
	SaveJob(ctx context.Context, job *domain.PredictionJob) error
	LatestJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error)
	GetJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error)
	InvalidateOwner(ctx context.Context, ownerID int64) error
	InvalidateAll(ctx context.Context) error
}

type redisPredictionJobStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

type noopPredictionJobStore struct{}

func NewPredictionJobStore(cfg config.CacheConfig) (PredictionJobStore, error) {
	if !cfg.Enabled {
		return &noopPredictionJobStore{}, nil
	}

	client, err := connectJobStore(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisPredictionJobStore(client, jobTTL(cfg)), nil
}

// NewRedisPredictionJobStore wraps an already connected client.
func NewRedisPredictionJobStore(client redis.UniversalClient, ttl time.Duration) PredictionJobStore {
	if ttl <= 0 {
		ttl = defaultJobTTL
	}
	return &redisPredictionJobStore{client: client, ttl: ttl}
}

func NewNoopPredictionJobStore() PredictionJobStore {
	return &noopPredictionJobStore{}
}

func (s *redisPredictionJobStore) SaveJob(ctx context.Context, job *domain.PredictionJob) error {
	if job == nil || job.ID == "" {
		return errors.New("prediction job must have an id")
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode prediction job: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, jobKey(job.OwnerID, job.ID), payload, s.ttl)
	pipe.Set(ctx, latestJobKey(job.OwnerID), payload, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisPredictionJobStore) LatestJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error) {
	return s.load(ctx, latestJobKey(ownerID))
}

func (s *redisPredictionJobStore) GetJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error) {
	return s.load(ctx, jobKey(ownerID, jobID))
}

func (s *redisPredictionJobStore) load(ctx context.Context, key string) (*domain.PredictionJob, bool, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var job domain.PredictionJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, false, fmt.Errorf("decode prediction job: %w", err)
	}
	return &job, true, nil
}

func (s *redisPredictionJobStore) InvalidateOwner(ctx context.Context, ownerID int64) error {
	return unlinkMatching(ctx, s.client, ownerPrefix(ownerID)+"*", jobScanBatchSize)
}

func (s *redisPredictionJobStore) InvalidateAll(ctx context.Context) error {
	return unlinkMatching(ctx, s.client, predictionJobKeyPrefix+":*", jobScanBatchSize)
}

func (n *noopPredictionJobStore) SaveJob(ctx context.Context, job *domain.PredictionJob) error {
	return nil
}

func (n *noopPredictionJobStore) LatestJob(ctx context.Context, ownerID int64) (*domain.PredictionJob, bool, error) {
	return nil, false, nil
}

func (n *noopPredictionJobStore) GetJob(ctx context.Context, ownerID int64, jobID string) (*domain.PredictionJob, bool, error) {
	return nil, false, nil
}

func (n *noopPredictionJobStore) InvalidateOwner(ctx context.Context, ownerID int64) error {
	return nil
}

func (n *noopPredictionJobStore) InvalidateAll(ctx context.Context) error {
	return nil
}

func ownerPrefix(ownerID int64) string {
	return fmt.Sprintf("%s:%d:", predictionJobKeyPrefix, ownerID)
}

func latestJobKey(ownerID int64) string {
	return ownerPrefix(ownerID) + "latest"
}

func jobKey(ownerID int64, jobID string) string {
	return ownerPrefix(ownerID) + "id:" + jobID
}
