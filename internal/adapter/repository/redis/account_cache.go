package redis

import (
	"context"
	"time"

	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/usecase"
)

const existsTTL = 5 * time.Minute

// CachedAccountRepository decorates an AccountRepository with a cache
// over existence checks, which sit on the hot path of every movement.
// Only positive results are cached: accounts are never deleted, so a
// cached "exists" can never go stale, while a miss always falls
// through to the underlying store.
type CachedAccountRepository struct {
	inner usecase.AccountRepository
	cache usecase.Cache
}

// NewCachedAccountRepository creates a new CachedAccountRepository.
func NewCachedAccountRepository(inner usecase.AccountRepository, cache usecase.Cache) *CachedAccountRepository {
	return &CachedAccountRepository{
		inner: inner,
		cache: cache,
	}
}

// Create stores the account and primes the existence cache.
func (r *CachedAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.inner.Create(ctx, account); err != nil {
		return err
	}

	// Cache failures never fail the write.
	_ = r.cache.Set(ctx, existsKey(account.ID), "1", existsTTL)

	return nil
}

// GetByID retrieves an account by ID.
func (r *CachedAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return r.inner.GetByID(ctx, id)
}

// Exists reports whether an account exists, serving cached positives.
func (r *CachedAccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := r.cache.Get(ctx, existsKey(id)); err == nil {
		return true, nil
	}

	exists, err := r.inner.Exists(ctx, id)
	if err != nil {
		return false, err
	}

	if exists {
		_ = r.cache.Set(ctx, existsKey(id), "1", existsTTL)
	}

	return exists, nil
}

// LockByIDs delegates to the underlying store; locks are meaningless
// against a cache.
func (r *CachedAccountRepository) LockByIDs(ctx context.Context, tx usecase.Transaction, ids []string) error {
	return r.inner.LockByIDs(ctx, tx, ids)
}

// List delegates to the underlying store.
func (r *CachedAccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	return r.inner.List(ctx, limit, offset)
}

func existsKey(id string) string {
	return "account:exists:" + id
}
