package database

import (
	"context"
	"fmt"

	"greenkart/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewRedis creates the Redis client backing the cart snapshot store.
func NewRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("redis client connected")

	return client, nil
}
