package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

const statsHashKey = "rotauth:resource_stats"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// RedisStore persists stats in a single Redis hash, one field per resource.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{rdb: rdb}, nil
}

// Load reads all stats fields from the hash.
func (s *RedisStore) Load(ctx context.Context) (map[string]domain.ResourceStats, error) {
	fields, err := s.rdb.HGetAll(ctx, statsHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", statsHashKey, err)
	}

	stats := make(map[string]domain.ResourceStats, len(fields))
	for key, raw := range fields {
		var rs domain.ResourceStats
		if err := json.Unmarshal([]byte(raw), &rs); err != nil {
			return nil, fmt.Errorf("parse stats for %s: %w", key, err)
		}
		stats[key] = rs
	}
	return stats, nil
}

// Save replaces the hash with the given mapping in one pipeline.
func (s *RedisStore) Save(ctx context.Context, stats map[string]domain.ResourceStats) error {
	fields := make(map[string]any, len(stats))
	for key, rs := range stats {
		raw, err := json.Marshal(rs)
		if err != nil {
			return fmt.Errorf("marshal stats for %s: %w", key, err)
		}
		fields[key] = raw
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, statsHashKey)
	if len(fields) > 0 {
		pipe.HSet(ctx, statsHashKey, fields)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write stats hash: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
