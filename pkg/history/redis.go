package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis history backend.
type RedisConfig struct {
	// Address is the Redis server address (e.g., "localhost:6379")
	Address string

	// Password for Redis authentication (optional)
	Password string

	// Database number to use (default: 0)
	Database int

	// Key is the Redis list holding run records
	Key string

	// Timeout for Redis operations
	Timeout time.Duration

	// MaxRuns caps the list length (0 = unbounded)
	MaxRuns int
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig(address string) RedisConfig {
	return RedisConfig{
		Address: address,
		Key:     "salesbench:history",
		Timeout: 5 * time.Second,
		MaxRuns: 1000,
	}
}

// RedisBackend stores run records in a Redis list, newest at the tail.
type RedisBackend struct {
	cfg    RedisConfig
	client *redis.Client
}

// NewRedisBackend creates a Redis history backend and verifies the
// connection.
func NewRedisBackend(cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBackend{cfg: cfg, client: client}, nil
}

// Append pushes one run onto the tail of the history list and trims
// the list to MaxRuns.
func (b *RedisBackend) Append(ctx context.Context, run *Run) error {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	pipe := b.client.Pipeline()
	pipe.RPush(ctx, b.cfg.Key, data)
	if b.cfg.MaxRuns > 0 {
		pipe.LTrim(ctx, b.cfg.Key, int64(-b.cfg.MaxRuns), -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append run to Redis: %w", err)
	}
	return nil
}

// List returns recorded runs oldest first. Malformed entries are
// skipped.
func (b *RedisBackend) List(ctx context.Context, limit int) ([]*Run, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	entries, err := b.client.LRange(ctx, b.cfg.Key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs from Redis: %w", err)
	}

	runs := make([]*Run, 0, len(entries))
	for _, entry := range entries {
		var run Run
		if err := json.Unmarshal([]byte(entry), &run); err != nil {
			continue
		}
		runs = append(runs, &run)
	}
	return runs, nil
}

// Name returns "redis".
func (b *RedisBackend) Name() string {
	return "redis"
}

// Close closes the Redis connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
