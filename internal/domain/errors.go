package domain

import "errors"

var (
	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Movement errors
	ErrMovementNotFound  = errors.New("movement not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrSameAccount       = errors.New("cannot transfer to same account")
	ErrInvalidKind       = errors.New("unknown movement kind")
	ErrMissingSender     = errors.New("transfer requires a sender account")
	ErrUnexpectedSender  = errors.New("only transfers carry a sender account")
)
