package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/domain"
	"github.com/finledger/finledger/internal/infrastructure/metrics"
	"github.com/finledger/finledger/internal/usecase"
)

const (
	createMovementSQL = `
		INSERT INTO movements (id, account_id, sender_id, kind, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	getMovementByIDSQL = `
		SELECT id, account_id, sender_id, kind, amount, description, created_at
		FROM movements
		WHERE id = $1`

	listMovementsByAccountSQL = `
		SELECT id, account_id, sender_id, kind, amount, description, created_at
		FROM movements
		WHERE account_id = $1 OR sender_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	// The fold: deposits add, withdrawals subtract, and a transfer adds
	// on the owner side while subtracting on the sender side. A single
	// transfer row therefore contributes both signs depending on which
	// account is asking.
	sumMovementsByAccountSQL = `
		SELECT COALESCE(SUM(
			CASE
				WHEN kind = 'deposit' THEN amount
				WHEN kind = 'withdrawal' THEN -amount
				WHEN kind = 'transfer' AND account_id = $1 THEN amount
				ELSE -amount
			END
		), 0)
		FROM movements
		WHERE account_id = $1 OR sender_id = $1`
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	pool *pgxpool.Pool
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool *pgxpool.Pool) *MovementRepository {
	return &MovementRepository{pool: pool}
}

// Create inserts a movement inside the transaction.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.Movement) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, createMovementSQL,
		movement.ID,
		movement.AccountID,
		movement.SenderID,
		string(movement.Kind),
		decimalToNumeric(movement.Amount),
		movement.Description,
		movement.CreatedAt,
	)

	return err
}

// GetByID retrieves a movement by ID.
func (r *MovementRepository) GetByID(ctx context.Context, id string) (*domain.Movement, error) {
	movement, err := scanMovement(r.pool.QueryRow(ctx, getMovementByIDSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}

		return nil, err
	}

	return movement, nil
}

// ListByAccount lists the movements visible to an account, newest
// first. Owner-side and sender-side rows both qualify.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Movement, error) {
	rows, err := r.pool.Query(ctx, listMovementsByAccountSQL, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.Movement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

// SumByAccount folds the account's movements into its balance.
func (r *MovementRepository) SumByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	return sumByAccount(ctx, r.pool, accountID)
}

// SumByAccountTx folds the balance inside the transaction, so the sum
// reflects the row locks the transaction holds.
func (r *MovementRepository) SumByAccountTx(ctx context.Context, tx usecase.Transaction, accountID string) (decimal.Decimal, error) {
	return sumByAccount(ctx, tx.(*Tx).PgxTx(), accountID)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func sumByAccount(ctx context.Context, q rowQuerier, accountID string) (decimal.Decimal, error) {
	var total pgtype.Numeric

	start := time.Now()
	if err := q.QueryRow(ctx, sumMovementsByAccountSQL, accountID).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	metrics.BalanceFoldDuration.Observe(time.Since(start).Seconds())

	return numericToDecimal(total), nil
}

func scanMovement(row pgx.Row) (*domain.Movement, error) {
	var (
		movement domain.Movement
		kind     string
		amount   pgtype.Numeric
	)

	err := row.Scan(
		&movement.ID,
		&movement.AccountID,
		&movement.SenderID,
		&kind,
		&amount,
		&movement.Description,
		&movement.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	movement.Kind = domain.MovementKind(kind)
	movement.Amount = numericToDecimal(amount)

	return &movement, nil
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
