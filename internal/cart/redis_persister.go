package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/basho-studio/storefront/pkg/redis"
)

// kvStore is the slice of the redis client the cart needs.
type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisPersister keeps cart documents in redis. A positive ttl expires idle
// carts; every save refreshes it.
type RedisPersister struct {
	client kvStore
	ttl    time.Duration
}

func NewRedisPersister(client kvStore, ttl time.Duration) (*RedisPersister, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisPersister{client: client, ttl: ttl}, nil
}

func (p *RedisPersister) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := p.client.Get(ctx, key)
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (p *RedisPersister) Save(ctx context.Context, key string, doc []byte) error {
	return p.client.Set(ctx, key, string(doc), p.ttl)
}

func (p *RedisPersister) Delete(ctx context.Context, key string) error {
	return p.client.Del(ctx, key)
}
