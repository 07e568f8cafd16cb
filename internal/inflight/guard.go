// Package inflight keeps at most one outstanding request per key, e.g. one
// booking submission per wizard or one order creation per cart session.
package inflight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

const defaultTTL = 30 * time.Second

// ErrInFlight is returned when another request already holds the key.
var ErrInFlight = pkgerrors.New(pkgerrors.CodeInFlight, "a request is already in progress")

// Guard grants exclusive ownership of a key until the returned release func
// is called.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Local guards keys within a single process.
type Local struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocal() *Local {
	return &Local{held: make(map[string]struct{})}
}

func (l *Local) Acquire(ctx context.Context, key string) (func(), error) {
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "in-flight key is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[key]; busy {
		return nil, ErrInFlight
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}

// redisStore defines the operations used by Redis.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	InFlightKey(scope, id string) string
}

// Redis guards keys across replicas with SET NX + TTL. The TTL bounds how
// long a crashed holder can block the key.
type Redis struct {
	client redisStore
	scope  string
	ttl    time.Duration
}

func NewRedis(client redisStore, scope string, ttl time.Duration) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client required for in-flight guard")
	}
	if strings.TrimSpace(scope) == "" {
		return nil, errors.New("in-flight scope is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Redis{client: client, scope: scope, ttl: ttl}, nil
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	if strings.TrimSpace(key) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "in-flight key is required")
	}
	redisKey := r.client.InFlightKey(r.scope, key)
	owner := uuid.NewString()

	ok, err := r.client.SetNX(ctx, redisKey, owner, r.ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("setnx: %w", err), "acquire in-flight guard")
	}
	if !ok {
		return nil, ErrInFlight
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// a cancelled request must still free the key
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			r.release(releaseCtx, redisKey, owner)
		})
	}, nil
}

// release deletes the key only while this owner still holds it.
func (r *Redis) release(ctx context.Context, key, owner string) {
	value, err := r.client.Get(ctx, key)
	if err != nil {
		return
	}
	if value != owner {
		return
	}
	_ = r.client.Del(ctx, key)
}

var (
	_ Guard = (*Local)(nil)
	_ Guard = (*Redis)(nil)
)
