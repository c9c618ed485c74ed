package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"loan-portal-api/internal/config"
)

// RedisClient is the shared Redis connection, used as a fast-path cache in
// front of the lead-dedup unique key. Nil when Redis is not configured; the
// store's unique constraint remains authoritative either way.
var RedisClient *redis.Client

// InitRedis establishes the Redis connection
func InitRedis(cfg *config.Config, log *zap.Logger) error {
	var client *redis.Client

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return err
		}
		client = redis.NewClient(opts)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	RedisClient = client
	log.Info("Redis connection established successfully",
		zap.String("addr", cfg.Redis.Addr),
		zap.Int("db", cfg.Redis.DB),
	)
	return nil
}

// GetRedis returns the shared client, or nil when Redis is unavailable
func GetRedis() *redis.Client {
	return RedisClient
}
