package app

import (
	"context"

	"gateway-service/internal/config"
	"gateway-service/internal/db"
	"gateway-service/internal/logger"
	"gateway-service/internal/redis"
	"gateway-service/internal/users"
)

type Infra struct {
	DB        *db.DB
	Redis     *redis.Client
	UserStore users.Store
}

// setupInfra connects Postgres when a DSN is configured and falls back to the
// in-memory user store otherwise. Redis is optional: a failed ping is logged
// and token cache writes will fail individually.
func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := db.RunUsersMigration(ctx, database); err != nil {
			_ = database.Close()
			return nil, err
		}
		logger.Info("database ready", nil)

		infra.DB = database
		infra.UserStore = users.NewPostgresStore(database)
	} else {
		logger.Warn("DATABASE_DSN not set, using in-memory user store", nil)
		infra.UserStore = users.NewMemoryStore()
	}

	redisClient, err := redis.New(redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		UseTLS:   cfg.Redis.UseTLS,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		logger.Warn("redis unreachable, token cache writes will fail", map[string]any{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
	} else {
		logger.Info("redis ready", map[string]any{"addr": cfg.Redis.Addr})
	}
	infra.Redis = redisClient

	return infra, nil
}

func (i *Infra) Close() error {
	var firstErr error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
