package cache

import (
	"context"
	"time"
)

// Cache is the read-through cache used by repositories for hot lookups
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	// KeyPrefix namespaces every ledger key in a shared Redis
	KeyPrefix       = "ledger:"
	PrefixOffer     = KeyPrefix + "offer:v1:"
	PrefixOfferCode = KeyPrefix + "offer_code:v1:"
)

// Default lifetimes when a caller passes a zero expiration
const (
	ExpiryDefaultInMemory = 30 * time.Minute
	ExpiryDefaultRedis    = 5 * time.Minute
)

// GenerateKey joins a prefix with key parts
func GenerateKey(prefix string, parts ...string) string {
	key := prefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}
