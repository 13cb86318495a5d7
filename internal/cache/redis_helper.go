package cache

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/budprat/stock-sense/backend-go/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultJobTTL    = 24 * time.Hour
	jobStorePingWait = 5 * time.Second
)

// connectJobStore dials the job store's redis and checks it answers.
func connectJobStore(cfg config.CacheConfig) (redis.UniversalClient, error) {
	opts, err := jobStoreOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), jobStorePingWait)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("job store ping failed: %w", err)
	}
	return client, nil
}

// jobStoreOptions prefers REDIS_URL and falls back to host/port parts.
func jobStoreOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func jobTTL(cfg config.CacheConfig) time.Duration {
	if cfg.JobTTLSeconds <= 0 {
		return defaultJobTTL
	}
	return time.Duration(cfg.JobTTLSeconds) * time.Second
}

// unlinkMatching walks the keyspace for pattern and unlinks matches in
// batches of batchSize.
func unlinkMatching(ctx context.Context, client redis.UniversalClient, pattern string, batchSize int64) error {
	iter := client.Scan(ctx, 0, pattern, batchSize).Iterator()
	batch := make([]string, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("unlink job keys: %w", err)
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if int64(len(batch)) >= batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan job keys: %w", err)
	}
	return flush()
}
