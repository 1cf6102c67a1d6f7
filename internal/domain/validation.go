package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MinAccountNumberLength = 5
	MinOwnerNameLength     = 2
)

// DefaultMaxTransactionAmount is the per-transaction ceiling used when no
// limit is configured.
var DefaultMaxTransactionAmount = decimal.NewFromInt(1_000_000)

var (
	accountNumberRegex = regexp.MustCompile(`^\d+$`)
	ownerNameRegex     = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
)

// ValidateAccountNumber validates an account number: digits only, at least
// MinAccountNumberLength characters.
func ValidateAccountNumber(number string) error {
	if len(number) < MinAccountNumberLength {
		return fmt.Errorf("%w: must be at least %d digits", ErrInvalidAccountNumber, MinAccountNumberLength)
	}

	if !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: must contain digits only", ErrInvalidAccountNumber)
	}

	return nil
}

// ValidateOwnerName validates an owner name: letters, spaces, hyphens and
// apostrophes, at least MinOwnerNameLength characters after trimming.
func ValidateOwnerName(owner string) error {
	if len(strings.TrimSpace(owner)) < MinOwnerNameLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidOwnerName, MinOwnerNameLength)
	}

	if !ownerNameRegex.MatchString(owner) {
		return fmt.Errorf("%w: only letters, spaces, hyphens and apostrophes allowed", ErrInvalidOwnerName)
	}

	return nil
}

// ValidateAmount validates an amount passed to a ledger operation. Amounts are
// decimals, so non-finite values are unrepresentable; only the sign is checked.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%w: must not be negative", ErrInvalidAmount)
	}
	return nil
}

// ValidateInterestParams validates compound interest parameters: rate within
// [0, 1], positive finite years, positive whole compounding frequency.
func ValidateInterestParams(rate, years float64, frequency int) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: must be between 0 and 1", ErrInvalidRate)
	}

	if math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 {
		return fmt.Errorf("%w: must be positive", ErrInvalidYears)
	}

	if frequency < 1 {
		return fmt.Errorf("%w: must be a positive integer", ErrInvalidFrequency)
	}

	return nil
}
