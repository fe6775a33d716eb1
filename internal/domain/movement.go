package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind identifies the effect of a movement on its owning account.
type MovementKind string

const (
	KindDeposit    MovementKind = "deposit"
	KindWithdrawal MovementKind = "withdrawal"
	KindTransfer   MovementKind = "transfer"
)

// IsValid reports whether k is a known movement kind.
func (k MovementKind) IsValid() bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer:
		return true
	}
	return false
}

// Movement is a single immutable ledger record. A transfer is stored as
// one movement owned by the destination account with SenderID set to the
// source account, so one record carries both sides of the transfer.
type Movement struct {
	ID          string
	AccountID   string
	SenderID    *string
	Kind        MovementKind
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// Validate checks the structural invariants of a movement.
func (m *Movement) Validate() error {
	if !m.Kind.IsValid() {
		return ErrInvalidKind
	}

	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if m.Kind == KindTransfer {
		if m.SenderID == nil || *m.SenderID == "" {
			return ErrMissingSender
		}
		if *m.SenderID == m.AccountID {
			return ErrSameAccount
		}
	} else if m.SenderID != nil {
		return ErrUnexpectedSender
	}

	return nil
}

// IsTransfer reports whether the movement carries a counterparty.
func (m *Movement) IsTransfer() bool {
	return m.Kind == KindTransfer
}

// BelongsTo reports whether accountID may see this movement: the owner
// always can, and the source side of a transfer can as well.
func (m *Movement) BelongsTo(accountID string) bool {
	if m.AccountID == accountID {
		return true
	}

	return m.SenderID != nil && *m.SenderID == accountID
}

// SignedAmount returns the contribution of this movement to accountID's
// balance: deposits count positive, withdrawals negative, transfers
// positive for the destination and negative for the source. Movements
// not visible to accountID contribute zero.
func (m *Movement) SignedAmount(accountID string) decimal.Decimal {
	switch {
	case m.AccountID == accountID && m.Kind == KindDeposit:
		return m.Amount
	case m.AccountID == accountID && m.Kind == KindWithdrawal:
		return m.Amount.Neg()
	case m.AccountID == accountID && m.Kind == KindTransfer:
		return m.Amount
	case m.SenderID != nil && *m.SenderID == accountID && m.Kind == KindTransfer:
		return m.Amount.Neg()
	}

	return decimal.Zero
}

// SumMovements folds a set of movements into accountID's balance.
// It is a plain sum: deterministic, order-independent and side-effect
// free, so recomputing over the same records always yields the same
// result.
func SumMovements(accountID string, movements []*Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.SignedAmount(accountID))
	}

	return total
}
