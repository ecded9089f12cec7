package database

import (
	"fmt"

	"github.com/cryptocast/cryptocast/internal/config"
	"github.com/go-redis/redis"
)

func InitRedis(cfg *config.Settings) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Pass,
	})
	if _, err := rc.Ping().Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rc, nil
}
