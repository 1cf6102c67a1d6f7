package domain

import (
	"errors"
	"fmt"
)

var (
	// Validation errors
	ErrInvalidAccountNumber   = errors.New("invalid account number format")
	ErrInvalidOwnerName       = errors.New("invalid owner name format")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidRate            = errors.New("invalid interest rate")
	ErrInvalidYears           = errors.New("invalid number of years")
	ErrInvalidFrequency       = errors.New("invalid compounding frequency")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrAmountTooLarge         = errors.New("transaction amount exceeds maximum limit")
	ErrMissingSourceAccount   = errors.New("source account is required")

	// Ledger errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("operation not allowed in current state")

	// Registry errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// invalidState wraps ErrInvalidState naming the operation and the state it found.
func invalidState(op, state string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidState, op, state)
}
