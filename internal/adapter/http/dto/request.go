package dto

import (
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{Name: r.Name}
}

// MovementRequest represents a deposit or withdrawal request. The
// account comes from the URL.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// ToDepositInput converts to use case input for the given account.
func (r *MovementRequest) ToDepositInput(accountID string) usecase.DepositInput {
	return usecase.DepositInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// ToWithdrawInput converts to use case input for the given account.
func (r *MovementRequest) ToWithdrawInput(accountID string) usecase.WithdrawInput {
	return usecase.WithdrawInput{
		AccountID:   accountID,
		Amount:      r.Amount,
		Description: r.Description,
	}
}

// CreateTransferRequest represents a request to create a transfer.
type CreateTransferRequest struct {
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Amount:        r.Amount,
		Description:   r.Description,
	}
}
