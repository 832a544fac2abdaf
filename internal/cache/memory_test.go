package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type cachedThing struct {
	Name string `json:"name"`
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	c.Set(ctx, GenerateKey(PrefixOffer, "t1", "o1"), &cachedThing{Name: "a"}, time.Minute)
	c.Set(ctx, GenerateKey(PrefixOffer, "t1", "o2"), &cachedThing{Name: "b"}, time.Minute)
	c.Set(ctx, GenerateKey(PrefixOfferCode, "t1", "SPRING"), &cachedThing{Name: "c"}, time.Minute)

	v, ok := c.Get(ctx, "offer:v1:t1:o1")
	assert.True(t, ok)
	thing, ok := UnmarshalCacheValue[cachedThing](v)
	assert.True(t, ok)
	assert.Equal(t, "a", thing.Name)

	c.DeleteByPrefix(ctx, PrefixOffer)
	_, ok = c.Get(ctx, "offer:v1:t1:o2")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "offer_code:v1:t1:SPRING")
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, "offer_code:v1:t1:SPRING")
	assert.False(t, ok)
}

func TestUnmarshalCacheValue_JSONString(t *testing.T) {
	thing, ok := UnmarshalCacheValue[cachedThing](`{"name":"from-redis"}`)
	assert.True(t, ok)
	assert.Equal(t, "from-redis", thing.Name)

	_, ok = UnmarshalCacheValue[cachedThing](42)
	assert.False(t, ok)
}
