package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType identifies the kind of ledger entry.
type EntryType string

const (
	EntryDeposit    EntryType = "deposit"
	EntryWithdrawal EntryType = "withdrawal"
	EntryInterest   EntryType = "interest"
	EntryFee        EntryType = "fee"
)

// Entry is one immutable record of a balance-affecting event. Amount is
// signed: negative for outflows. BalanceAfter is the account balance at the
// moment the entry was recorded.
type Entry struct {
	ID           string          `json:"id"`
	Type         EntryType       `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Timestamp    time.Time       `json:"timestamp"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}
