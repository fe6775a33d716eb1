// Package memory provides an in-process implementation of the
// repository interfaces. It backs the CLI's offline mode and the
// concurrency tests: per-account mutexes give the same serialization
// guarantees as the postgres row locks, so the check-then-insert region
// behaves identically against either store.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds accounts, movements and outbox events in process memory.
// It implements usecase.TransactionManager; the repository views over
// it come from Accounts, Movements and Outbox.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]*domain.Account
	movements     []*domain.Movement
	movementsByID map[string]*domain.Movement
	outbox        []*domain.OutboxEvent
	accountLocks  map[string]*sync.Mutex
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]*domain.Account),
		movementsByID: make(map[string]*domain.Movement),
		accountLocks:  make(map[string]*sync.Mutex),
	}
}

// Accounts returns the account repository view.
func (s *Store) Accounts() *AccountRepository { return &AccountRepository{store: s} }

// Movements returns the movement repository view.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{store: s} }

// Outbox returns the outbox repository view.
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{store: s} }

// Tx stages writes until Commit. Account locks taken through LockByIDs
// are held for the lifetime of the transaction and released on Commit
// or Rollback, whichever comes first.
type Tx struct {
	store    *Store
	staged   []*domain.Movement
	events   []*domain.OutboxEvent
	held     []*sync.Mutex
	finished bool
}

// Begin starts a transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	return &Tx{store: s}, nil
}

// Commit applies the staged writes atomically and releases held locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.finished {
		return nil
	}
	t.finished = true

	t.store.mu.Lock()
	for _, m := range t.staged {
		t.store.movements = append(t.store.movements, m)
		t.store.movementsByID[m.ID] = m
	}
	t.store.outbox = append(t.store.outbox, t.events...)
	t.store.mu.Unlock()

	t.release()
	return nil
}

// Rollback discards the staged writes and releases held locks. Calling
// it after Commit is a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.finished {
		return nil
	}
	t.finished = true

	t.staged = nil
	t.events = nil
	t.release()
	return nil
}

func (t *Tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (s *Store) asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}
	return t, nil
}

// AccountRepository is the in-memory account store.
type AccountRepository struct {
	store *Store
}

// Create stores an account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = account
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// Exists reports whether an account exists.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.accounts[id]
	return ok, nil
}

// LockByIDs acquires the per-account mutexes for ids, which the caller
// passes in sorted order to keep lock acquisition deadlock free. The
// locks stay held until the transaction finishes.
func (r *AccountRepository) LockByIDs(ctx context.Context, tx usecase.Transaction, ids []string) error {
	s := r.store
	t, err := s.asTx(tx)
	if err != nil {
		return err
	}

	locks := make([]*sync.Mutex, 0, len(ids))

	s.mu.Lock()
	for _, id := range ids {
		if _, ok := s.accounts[id]; !ok {
			s.mu.Unlock()
			return domain.ErrAccountNotFound
		}
		lock, ok := s.accountLocks[id]
		if !ok {
			lock = &sync.Mutex{}
			s.accountLocks[id] = lock
		}
		locks = append(locks, lock)
	}
	s.mu.Unlock()

	for _, lock := range locks {
		lock.Lock()
		t.held = append(t.held, lock)
	}

	return nil
}

// List returns accounts ordered by creation time.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	accounts := make([]*domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		copied := *a
		accounts = append(accounts, &copied)
	}
	s.mu.RUnlock()

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return page(accounts, limit, offset), nil
}

// MovementRepository is the in-memory movement store.
type MovementRepository struct {
	store *Store
}

// Create stages a movement inside the transaction.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	t, err := r.store.asTx(tx)
	if err != nil {
		return err
	}
	t.staged = append(t.staged, movement)
	return nil
}

// GetByID retrieves a committed movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	movement, ok := s.movementsByID[id]
	if !ok {
		return nil, domain.ErrMovementNotFound
	}
	copied := *movement
	return &copied, nil
}

// ListByAccount returns the movements visible to an account, newest
// first. Owner-side and sender-side records both qualify.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	s := r.store
	s.mu.RLock()
	var visible []*domain.Movement
	for i := len(s.movements) - 1; i >= 0; i-- {
		if s.movements[i].BelongsTo(accountID) {
			copied := *s.movements[i]
			visible = append(visible, &copied)
		}
	}
	s.mu.RUnlock()

	return page(visible, limit, offset), nil
}

// SumByAccount folds the committed movements into the account balance.
func (r *MovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.SumMovements(accountID, s.movements), nil
}

// SumByAccountTx folds committed movements plus the transaction's own
// staged records.
func (r *MovementRepository) SumByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	t, err := r.store.asTx(tx)
	if err != nil {
		return decimal.Zero, err
	}

	total, err := r.SumByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}

	return total.Add(domain.SumMovements(accountID, t.staged)), nil
}

// OutboxRepository is the in-memory outbox store.
type OutboxRepository struct {
	store *Store
}

// Create stages an outbox event inside the transaction.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := r.store.asTx(tx)
	if err != nil {
		return err
	}
	t.events = append(t.events, event)
	return nil
}

// GetUnpublished returns up to limit unpublished outbox events.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()
	var unpublished []*domain.OutboxEvent
	for _, e := range s.outbox {
		if e.Published {
			continue
		}
		copied := *e
		unpublished = append(unpublished, &copied)
		if len(unpublished) == limit {
			break
		}
	}
	return unpublished, nil
}

// MarkPublished flags an event as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.outbox {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

// DeletePublished removes events published before the cutoff.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.outbox[:0]
	for _, e := range s.outbox {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	s.outbox = kept
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
