package account

import "errors"

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrInvalidMutation     = errors.New("mutation violates ledger invariants")
	ErrConcurrencyConflict = errors.New("concurrent mutation conflict")
)
