package redis

import (
	"context"
	"errors"
	"fmt"

	"vkinder/config"

	"github.com/redis/go-redis/v9"
)

var global *redis.Client

// ErrDisabled is returned by Build when no address is configured.
var ErrDisabled = errors.New("redis disabled")

// Client returns the process-wide client, nil when Redis is disabled or unavailable.
func Client() *redis.Client { return global }

// ReplaceGlobal installs c as the process-wide client.
func ReplaceGlobal(c *redis.Client) { global = c }

// Build creates a client and pings it.
func Build(cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, ErrDisabled
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}
