package withdrawal

import "errors"

var (
	ErrNotFound          = errors.New("withdrawal not found")
	ErrInvalidTransition = errors.New("invalid withdrawal transition")
	ErrAlreadyProcessed  = errors.New("withdrawal already processed")
	ErrAmountTooSmall    = errors.New("withdrawal amount too small")
)
