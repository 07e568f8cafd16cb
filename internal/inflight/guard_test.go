package inflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

func TestLocalSecondAcquireFails(t *testing.T) {
	guard := NewLocal()
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "wiz-1")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := guard.Acquire(ctx, "wiz-1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if _, err := guard.Acquire(ctx, "wiz-2"); err != nil {
		t.Fatalf("other keys must not be blocked: %v", err)
	}

	release()
	release()

	again, err := guard.Acquire(ctx, "wiz-1")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}

func TestLocalConcurrentAcquireHasSingleWinner(t *testing.T) {
	guard := NewLocal()
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := guard.Acquire(context.Background(), "sess-1"); err == nil {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins.Load())
	}
}

func TestLocalRejectsBlankKeyAndCancelledContext(t *testing.T) {
	guard := NewLocal()
	if _, err := guard.Acquire(context.Background(), " "); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := guard.Acquire(ctx, "wiz-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return false, f.failSet
	}
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeRedis) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return v, nil
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeRedis) InFlightKey(scope, id string) string {
	return "basho:inflight:" + scope + ":" + id
}

func TestRedisGuardLifecycle(t *testing.T) {
	store := newFakeRedis()
	guard, err := NewRedis(store, "booking", 0)
	if err != nil {
		t.Fatalf("new redis guard: %v", err)
	}
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "wiz-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if store.ttls["basho:inflight:booking:wiz-1"] != defaultTTL {
		t.Fatalf("expected default ttl, got %v", store.ttls["basho:inflight:booking:wiz-1"])
	}
	if _, err := guard.Acquire(ctx, "wiz-1"); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	release()
	if _, ok := store.data["basho:inflight:booking:wiz-1"]; ok {
		t.Fatal("release should delete the key")
	}
}

func TestRedisReleaseKeepsForeignOwner(t *testing.T) {
	store := newFakeRedis()
	guard, _ := NewRedis(store, "booking", time.Second)
	ctx := context.Background()

	release, err := guard.Acquire(ctx, "wiz-1")
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	// the ttl lapsed and someone else took the key
	store.data["basho:inflight:booking:wiz-1"] = "someone-else"

	release()
	if store.data["basho:inflight:booking:wiz-1"] != "someone-else" {
		t.Fatal("release must not delete a key owned by another holder")
	}
}

func TestRedisSetNXFailureIsDependency(t *testing.T) {
	store := newFakeRedis()
	store.failSet = errors.New("connection reset")
	guard, _ := NewRedis(store, "checkout", time.Second)

	if _, err := guard.Acquire(context.Background(), "sess-1"); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewRedisValidation(t *testing.T) {
	if _, err := NewRedis(nil, "booking", time.Second); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedis(newFakeRedis(), "", time.Second); err == nil {
		t.Fatal("expected error for blank scope")
	}
}
