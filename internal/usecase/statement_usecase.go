package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/domain"
)

// StatementUseCase records and reads movements. It is the only writer of
// the movement store: every deposit, withdrawal and transfer passes
// through here, and the non-negative balance invariant is enforced under
// per-account locks before any record is inserted.
type StatementUseCase struct {
	txManager    TransactionManager
	accountRepo  AccountRepository
	movementRepo MovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	retrier      Retrier
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	movementRepo MovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	retrier Retrier,
) *StatementUseCase {
	return &StatementUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		retrier:      retrier,
	}
}

// DepositInput represents input for recording a deposit.
type DepositInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// Deposit records a deposit movement. Deposits can never violate the
// non-negative invariant, so no balance check is made.
func (uc *StatementUseCase) Deposit(ctx context.Context, input DepositInput) (*domain.Movement, error) {
	if err := validateMovementInput(input.Amount, input.Description); err != nil {
		return nil, err
	}

	if err := uc.ensureAccountExists(ctx, input.AccountID); err != nil {
		return nil, err
	}

	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		Kind:        domain.KindDeposit,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.insertMovement(ctx, movement, nil)
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// WithdrawInput represents input for recording a withdrawal.
type WithdrawInput struct {
	AccountID   string
	Amount      decimal.Decimal
	Description string
}

// Withdraw records a withdrawal movement. The account's derived balance
// is folded inside the same transaction that inserts the record, under a
// lock on the account, so concurrent withdrawals cannot both pass the
// check against a stale balance. Withdrawing the exact balance succeeds.
func (uc *StatementUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*domain.Movement, error) {
	if err := validateMovementInput(input.Amount, input.Description); err != nil {
		return nil, err
	}

	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		Kind:        domain.KindWithdrawal,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.insertMovement(ctx, movement, []string{input.AccountID})
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// TransferInput represents input for recording a transfer.
type TransferInput struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
}

// Transfer records a transfer as a single movement owned by the
// destination with the source as sender. Both account rows are locked in
// sorted ID order and the source balance is folded under that lock, so
// the record either lands fully visible to both parties or not at all.
func (uc *StatementUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Movement, error) {
	if err := validateMovementInput(input.Amount, input.Description); err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccount
	}

	sender := input.FromAccountID
	movement := &domain.Movement{
		ID:          uc.idGen.Generate(),
		AccountID:   input.ToAccountID,
		SenderID:    &sender,
		Kind:        domain.KindTransfer,
		Amount:      input.Amount,
		Description: input.Description,
		CreatedAt:   time.Now().UTC(),
	}

	if err := movement.Validate(); err != nil {
		return nil, err
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.insertMovement(ctx, movement, []string{input.FromAccountID, input.ToAccountID})
	})
	if err != nil {
		return nil, err
	}

	return movement, nil
}

// insertMovement runs the check-then-insert region for one movement.
// lockIDs names the accounts whose balances the movement may reduce;
// their rows are locked before the fold. A nil lockIDs skips the balance
// check entirely (deposits).
func (uc *StatementUseCase) insertMovement(ctx context.Context, movement *domain.Movement, lockIDs []string) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if lockIDs != nil {
		sorted := append([]string(nil), lockIDs...)
		sort.Strings(sorted)

		if err := uc.accountRepo.LockByIDs(ctx, tx, sorted); err != nil {
			return err
		}

		debited := movement.AccountID
		if movement.IsTransfer() {
			debited = *movement.SenderID
		}

		balance, err := uc.movementRepo.SumByAccountTx(ctx, tx, debited)
		if err != nil {
			return err
		}

		if movement.Amount.GreaterThan(balance) {
			return domain.ErrInsufficientFunds
		}
	}

	if err := uc.movementRepo.Create(ctx, tx, movement); err != nil {
		return err
	}

	if err := uc.outboxRepo.Create(ctx, tx, uc.movementEvent(movement)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *StatementUseCase) movementEvent(m *domain.Movement) *domain.OutboxEvent {
	payload := map[string]any{
		"movement_id": m.ID,
		"account_id":  m.AccountID,
		"kind":        string(m.Kind),
		"amount":      m.Amount.String(),
		"recorded_at": m.CreatedAt.Format(time.RFC3339Nano),
	}
	if m.SenderID != nil {
		payload["sender_id"] = *m.SenderID
	}

	return &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   m.ID,
		AggregateType: domain.AggregateTypeMovement,
		EventType:     domain.EventTypeMovementRecorded,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// Balance is the derived view of one account's ledger: the folded total
// plus a page of the movements behind it.
type Balance struct {
	AccountID string
	Total     decimal.Decimal
	Movements []*domain.Movement
}

// GetBalanceInput represents input for reading a balance.
type GetBalanceInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// GetBalance folds the account's movements into its current balance.
func (uc *StatementUseCase) GetBalance(ctx context.Context, input GetBalanceInput) (*Balance, error) {
	if err := uc.ensureAccountExists(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	movements, err := uc.movementRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := uc.movementRepo.SumByAccount(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	return &Balance{
		AccountID: input.AccountID,
		Total:     total,
		Movements: movements,
	}, nil
}

// GetOperationInput represents input for looking up a single movement.
type GetOperationInput struct {
	AccountID  string
	MovementID string
}

// GetOperation retrieves one movement on behalf of an account. Ownership
// is scoped to the owner side and, for transfers, the sender side; any
// other requester gets domain.ErrMovementNotFound rather than a leak of
// someone else's record.
func (uc *StatementUseCase) GetOperation(ctx context.Context, input GetOperationInput) (*domain.Movement, error) {
	if err := uc.ensureAccountExists(ctx, input.AccountID); err != nil {
		return nil, err
	}

	movement, err := uc.movementRepo.GetByID(ctx, input.MovementID)
	if err != nil {
		return nil, err
	}

	if !movement.BelongsTo(input.AccountID) {
		return nil, domain.ErrMovementNotFound
	}

	return movement, nil
}

// ListMovementsInput represents input for listing an account's movements.
type ListMovementsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// ListMovements lists movements visible to an account.
func (uc *StatementUseCase) ListMovements(ctx context.Context, input ListMovementsInput) ([]*domain.Movement, error) {
	if err := uc.ensureAccountExists(ctx, input.AccountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.movementRepo.ListByAccount(ctx, input.AccountID, limit, offset)
}

func (uc *StatementUseCase) ensureAccountExists(ctx context.Context, id string) error {
	exists, err := uc.accountRepo.Exists(ctx, id)
	if err != nil {
		return err
	}

	if !exists {
		return domain.ErrAccountNotFound
	}

	return nil
}

func validateMovementInput(amount decimal.Decimal, description string) error {
	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	return domain.ValidateDescription(description)
}
