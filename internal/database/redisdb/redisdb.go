// Package redisdb opens the redis client used by the session store.
package redisdb

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		logger.Error("Repository: redis ping failed", err, zap.String("addr", cfg.Addr))
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Repository: connected to Redis", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return rdb, nil
}
