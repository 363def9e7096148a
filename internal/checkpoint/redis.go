package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RedisConfig controls the Redis-backed store.
type RedisConfig struct {
	// Addr is the Redis host:port. Empty disables Redis; the caller
	// falls back to the in-memory store.
	Addr string `koanf:"addr"`
	// Password for the Redis instance, empty when unauthenticated.
	Password string `koanf:"password"`
	// DB selects the Redis logical database.
	DB int `koanf:"db"`
	// TTL expires idle threads. Zero keeps them forever.
	TTL time.Duration `koanf:"ttl"`
}

// RedisStore persists thread state as JSON blobs in Redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
	tracer trace.Tracer
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: redis addr is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis at %s: %w", cfg.Addr, err)
	}

	return &RedisStore{
		client: client,
		ttl:    cfg.TTL,
		logger: logger,
		tracer: otel.Tracer("vsignd.checkpoint.redis"),
	}, nil
}

func threadKey(threadID string) string {
	return "thread:" + threadID
}

// Load fetches and decodes a thread's state.
func (s *RedisStore) Load(ctx context.Context, threadID string) (*ThreadState, error) {
	ctx, span := s.tracer.Start(ctx, "checkpoint.load")
	defer span.End()

	raw, err := s.client.Get(ctx, threadKey(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", threadID, err)
	}

	var state ThreadState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode thread %s: %w", threadID, err)
	}
	return &state, nil
}

// Save encodes and writes a thread's state, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, threadID string, state *ThreadState) error {
	ctx, span := s.tracer.Start(ctx, "checkpoint.save")
	defer span.End()

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode thread %s: %w", threadID, err)
	}
	if err := s.client.Set(ctx, threadKey(threadID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save thread %s: %w", threadID, err)
	}
	return nil
}

// Delete removes a thread. Absent threads are a no-op.
func (s *RedisStore) Delete(ctx context.Context, threadID string) error {
	ctx, span := s.tracer.Start(ctx, "checkpoint.delete")
	defer span.End()

	if err := s.client.Del(ctx, threadKey(threadID)).Err(); err != nil {
		return fmt.Errorf("delete thread %s: %w", threadID, err)
	}
	return nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
