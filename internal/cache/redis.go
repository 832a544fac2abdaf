package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"

	"github.com/pharmalink/ledger/internal/logger"
	redisClient "github.com/pharmalink/ledger/internal/redis"
)

const (
	deleteRetryDelay = 100 * time.Millisecond
	deleteRetries    = 2

	// scanCount is the SCAN page size, deleteBatch the DEL fan-in
	scanCount   = 100
	deleteBatch = 500
)

// RedisCache implements Cache on a shared Redis instance. Values are stored as JSON.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisCache(client *redisClient.Client, log *logger.Logger) *RedisCache {
	return &RedisCache{
		client: client.GetClient(),
		log:    log,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "redis", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	value, err := c.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		c.log.Warnw("offer cache read failed, falling through to store", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration <= 0 {
		expiration = ExpiryDefaultRedis
	}

	payload, ok := value.(string)
	if !ok {
		raw, err := json.Marshal(value)
		if err != nil {
			c.log.Errorw("failed to encode cache value", "key", key, "error", err)
			return
		}
		payload = string(raw)
	}

	if err := c.client.Set(ctx, key, payload, expiration).Err(); err != nil {
		c.log.Errorw("redis set failed", "key", key, "error", err)
	}
}

// Delete retries on a detached context when the first attempt fails
func (c *RedisCache) Delete(ctx context.Context, key string) {
	err := c.client.Del(ctx, key).Err()
	if err == nil {
		return
	}
	c.log.Warnw("redis delete failed, retrying", "key", key, "error", err)

	retryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(deleteRetryDelay), deleteRetries),
		retryCtx,
	)
	if err := backoff.Retry(func() error {
		return c.client.Del(retryCtx, key).Err()
	}, policy); err != nil {
		c.log.Errorw("redis delete retry failed", "key", key, "error", err)
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	iter := c.client.Scan(ctx, 0, prefix+"*", scanCount).Iterator()

	batch := make([]string, 0, deleteBatch)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			c.log.Errorw("redis batch delete failed", "prefix", prefix, "keys", len(batch), "error", err)
		}
		batch = batch[:0]
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == deleteBatch {
			flush()
		}
	}
	flush()

	if err := iter.Err(); err != nil {
		c.log.Errorw("redis scan failed", "prefix", prefix, "error", err)
	}
}

// Flush drops only the ledger's own keys; the Redis database may be shared.
func (c *RedisCache) Flush(ctx context.Context) {
	c.DeleteByPrefix(ctx, KeyPrefix)
}
