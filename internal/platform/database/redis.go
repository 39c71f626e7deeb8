package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/ridloal/stationery-storefront/internal/platform/logger"
	"go.uber.org/zap"
)

const (
	poolSize     = 25
	minIdleConns = 5
	dialTimeout  = 5 * time.Second
	pingTimeout  = 5 * time.Second
)

// ConnectRedis opens a pooled client and verifies it with PING.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
		DialTimeout:  dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	logger.Info("Successfully connected to Redis", zap.String("addr", addr), zap.Int("db", db))
	return client, nil
}
