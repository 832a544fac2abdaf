package cache

import (
	"github.com/pharmalink/ledger/internal/config"
	"github.com/pharmalink/ledger/internal/logger"
	redisClient "github.com/pharmalink/ledger/internal/redis"
	"github.com/pharmalink/ledger/internal/types"
)

// Initialize picks the cache backend from config. Redis falls back to memory when no client is available.
func Initialize(cfg *config.Configuration, client *redisClient.Client, log *logger.Logger) Cache {
	var c Cache

	switch cfg.Cache.Type {
	case types.CacheTypeRedis:
		if client == nil {
			log.Warnw("redis cache requested without a redis client, using in-memory cache")
			c = NewInMemoryCache()
			break
		}
		c = NewRedisCache(client, log)
	case types.CacheTypeNone:
		c = NoopCache{}
	default:
		c = NewInMemoryCache()
	}

	log.Infow("cache system initialized", "type", cfg.Cache.Type)
	return c
}
