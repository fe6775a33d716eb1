package redis

import (
	"context"
	"testing"
	"time"

	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/usecase/mocks"
)

func TestCachedAccountRepository_ExistsCachesPositives(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	inner := mocks.NewFakeAccountRepository()
	inner.Add(&domain.Account{ID: "acc-1", Name: "acc-1"})

	innerCalls := 0
	inner.ExistsFunc = func(ctx context.Context, id string) (bool, error) {
		innerCalls++
		return id == "acc-1", nil
	}

	repo := NewCachedAccountRepository(inner, NewCache(client))

	for range 3 {
		exists, err := repo.Exists(ctx, "acc-1")
		if err != nil {
			t.Fatalf("exists: %v", err)
		}
		if !exists {
			t.Fatal("expected account to exist")
		}
	}

	// Only the first check reaches the store; the rest hit the cache.
	if innerCalls != 1 {
		t.Errorf("inner store consulted %d times, want 1", innerCalls)
	}
}

func TestCachedAccountRepository_NegativesNotCached(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	inner := mocks.NewFakeAccountRepository()
	repo := NewCachedAccountRepository(inner, NewCache(client))

	exists, err := repo.Exists(ctx, "acc-late")
	if err != nil || exists {
		t.Fatalf("expected miss, got exists=%v err=%v", exists, err)
	}

	// The account shows up afterwards; the earlier miss must not stick.
	now := time.Now().UTC()
	inner.Add(&domain.Account{ID: "acc-late", Name: "late", CreatedAt: now, UpdatedAt: now})

	exists, err = repo.Exists(ctx, "acc-late")
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Error("account created after a miss must be visible")
	}
}

func TestCachedAccountRepository_CreatePrimesCache(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()

	inner := mocks.NewFakeAccountRepository()
	cache := NewCache(client)
	repo := NewCachedAccountRepository(inner, cache)

	now := time.Now().UTC()
	if err := repo.Create(ctx, &domain.Account{ID: "acc-new", Name: "new", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := cache.Get(ctx, existsKey("acc-new")); err != nil {
		t.Errorf("expected existence cache primed after create: %v", err)
	}
}
