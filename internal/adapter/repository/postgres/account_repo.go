package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/usecase"
)

const (
	createAccountSQL = `
		INSERT INTO accounts (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)`

	getAccountByIDSQL = `
		SELECT id, name, created_at, updated_at
		FROM accounts
		WHERE id = $1`

	accountExistsSQL = `
		SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`

	lockAccountsSQL = `
		SELECT id
		FROM accounts
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`

	listAccountsSQL = `
		SELECT id, name, created_at, updated_at
		FROM accounts
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2`
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, createAccountSQL,
		account.ID,
		account.Name,
		account.CreatedAt,
		account.UpdatedAt,
	)

	return err
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account

	err := r.pool.QueryRow(ctx, getAccountByIDSQL, id).Scan(
		&account.ID,
		&account.Name,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}

		return nil, err
	}

	return &account, nil
}

// Exists reports whether an account exists.
func (r *AccountRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := r.pool.QueryRow(ctx, accountExistsSQL, id).Scan(&exists)

	return exists, err
}

// LockByIDs takes row locks on the given accounts inside the
// transaction. The caller passes ids sorted; the ORDER BY keeps the
// acquisition order stable even so. A missing account surfaces as
// domain.ErrAccountNotFound.
func (r *AccountRepository) LockByIDs(ctx context.Context, tx usecase.Transaction, ids []string) error {
	pgxTx := tx.(*Tx).PgxTx()

	rows, err := pgxTx.Query(ctx, lockAccountsSQL, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if locked != len(ids) {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts with pagination.
func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, listAccountsSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(&account.ID, &account.Name, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}
