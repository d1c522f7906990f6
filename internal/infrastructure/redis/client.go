// Package redis holds the Redis-backed claim gate and session revocation list.
package redis

import (
	"context"
	"fmt"

	"github.com/joesantos1/querodesconto-parceiros/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// NewClient connects and pings so a bad address fails at startup.
func NewClient(ctx context.Context, cfg config.Redis) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}
