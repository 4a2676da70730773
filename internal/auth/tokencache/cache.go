package tokencache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gateway-service/internal/auth"
	"gateway-service/internal/logger"
	"gateway-service/internal/metrics"
)

// DefaultTTL applies when the provider does not report a token lifetime.
const DefaultTTL = 3600 * time.Second

// Record is a provider-issued token kept for later server-side provider
// calls. It is written at login and never read back by the gateway.
type Record struct {
	Provider     auth.Provider `json:"provider"`
	ExternalID   string        `json:"external_id"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token,omitempty"`
	TokenType    string        `json:"token_type,omitempty"`
	Scope        string        `json:"scope,omitempty"`
	ExpiresIn    int64         `json:"expires_in"`
}

// TTL is the cache lifetime for the record.
func (r Record) TTL() time.Duration {
	if r.ExpiresIn <= 0 {
		return DefaultTTL
	}
	return time.Duration(r.ExpiresIn) * time.Second
}

// Key returns the cache key, e.g. "naver:token:abc123".
func Key(provider auth.Provider, externalID string) string {
	return provider.String() + ":token:" + externalID
}

// Store persists provider tokens on a best-effort basis.
type Store interface {
	Store(ctx context.Context, rec Record)
}

type RedisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCache creates a Redis-backed token cache. Each write is bounded by
// timeout.
func NewRedisCache(client *redis.Client, timeout time.Duration) *RedisCache {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisCache{
		client:  client,
		timeout: timeout,
	}
}

// Store writes rec under Key(rec.Provider, rec.ExternalID). Failures are
// logged and swallowed.
func (c *RedisCache) Store(ctx context.Context, rec Record) {
	key := Key(rec.Provider, rec.ExternalID)

	if err := c.set(ctx, key, rec); err != nil {
		metrics.CacheWritesTotal.WithLabelValues(rec.Provider.String(), "error").Inc()
		logger.Error("cache write failed", map[string]any{
			"provider": rec.Provider.String(),
			"key":      key,
			"error":    err.Error(),
		})
		return
	}

	metrics.CacheWritesTotal.WithLabelValues(rec.Provider.String(), "ok").Inc()
	logger.Info("provider token cached", map[string]any{
		"provider":    rec.Provider.String(),
		"key":         key,
		"ttl_seconds": int64(rec.TTL().Seconds()),
	})
}

func (c *RedisCache) set(ctx context.Context, key string, rec Record) error {
	if c.client == nil {
		return fmt.Errorf("tokencache: no redis client")
	}
	if rec.ExternalID == "" {
		return fmt.Errorf("tokencache: missing external id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("tokencache: failed to marshal: %w", err)
	}

	// Detached from the request so a cancelled client does not drop the write.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	return c.client.Set(ctx, key, data, rec.TTL()).Err()
}
