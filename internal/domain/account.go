package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/fincalc"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusFrozen AccountStatus = "frozen"
	StatusClosed AccountStatus = "closed"
)

// InterestSettings configures interest tiering. Fixed at construction.
type InterestSettings struct {
	BaseRate             float64         `json:"base_rate"`
	MinimumBalance       decimal.Decimal `json:"minimum_balance"`
	BonusRate            float64         `json:"bonus_rate"`
	HighBalanceThreshold decimal.Decimal `json:"high_balance_threshold"`
}

// FeeSettings configures fee amounts and the minimum-balance threshold below
// which the overdraft fee is charged. Fixed at construction.
type FeeSettings struct {
	Overdraft      decimal.Decimal `json:"overdraft"`
	Maintenance    decimal.Decimal `json:"maintenance"`
	MinimumBalance decimal.Decimal `json:"minimum_balance"`
}

// DefaultInterestSettings returns the standard interest tiering: 2% base,
// 0.5% bonus above a 10000 balance.
func DefaultInterestSettings() InterestSettings {
	return InterestSettings{
		BaseRate:             0.02,
		MinimumBalance:       decimal.NewFromInt(1000),
		BonusRate:            0.005,
		HighBalanceThreshold: decimal.NewFromInt(10000),
	}
}

// DefaultFeeSettings returns the standard fee schedule.
func DefaultFeeSettings() FeeSettings {
	return FeeSettings{
		Overdraft:      decimal.NewFromInt(35),
		Maintenance:    decimal.NewFromInt(5),
		MinimumBalance: decimal.NewFromInt(500),
	}
}

// Account owns a balance, a status and an append-only log of entries. All
// state is private; mutation happens only through the methods below. Not safe
// for concurrent use: callers embedding it in a concurrent environment must
// serialize mutating operations per account.
type Account struct {
	number      string
	owner       string
	balance     decimal.Decimal
	status      AccountStatus
	entries     []Entry
	createdAt   time.Time
	lastUpdated time.Time
	interest    InterestSettings
	fees        FeeSettings
	clock       Clock
	idGen       IDGenerator
}

// AccountOption customizes account construction.
type AccountOption func(*Account)

// WithClock injects a clock for deterministic timestamps.
func WithClock(c Clock) AccountOption {
	return func(a *Account) { a.clock = c }
}

// WithIDGenerator injects an id source for deterministic entry ids.
func WithIDGenerator(g IDGenerator) AccountOption {
	return func(a *Account) { a.idGen = g }
}

// WithInterestSettings overrides the default interest tiering.
func WithInterestSettings(s InterestSettings) AccountOption {
	return func(a *Account) { a.interest = s }
}

// WithFeeSettings overrides the default fee schedule.
func WithFeeSettings(s FeeSettings) AccountOption {
	return func(a *Account) { a.fees = s }
}

// NewAccount creates an active account. A positive initial balance is
// recorded as an initial deposit entry.
func NewAccount(number, owner string, initialBalance decimal.Decimal, opts ...AccountOption) (*Account, error) {
	if err := ValidateAccountNumber(number); err != nil {
		return nil, err
	}
	if err := ValidateOwnerName(owner); err != nil {
		return nil, err
	}
	if err := ValidateAmount(initialBalance); err != nil {
		return nil, err
	}

	a := &Account{
		number:   number,
		owner:    owner,
		balance:  initialBalance,
		status:   StatusActive,
		interest: DefaultInterestSettings(),
		fees:     DefaultFeeSettings(),
		clock:    systemClock{},
		idGen:    ulidGenerator{},
	}

	for _, opt := range opts {
		opt(a)
	}

	now := a.clock.Now()
	a.createdAt = now
	a.lastUpdated = now

	if initialBalance.IsPositive() {
		a.record(EntryDeposit, initialBalance, "Initial deposit")
	}

	return a, nil
}

// MutationResult describes the outcome of a balance mutation. FeeEntry is set
// when the operation also triggered a fee.
type MutationResult struct {
	NewBalance decimal.Decimal
	Entry      Entry
	FeeEntry   *Entry
}

// Deposit adds amount to the balance and appends a deposit entry.
func (a *Account) Deposit(amount decimal.Decimal, description string) (MutationResult, error) {
	if err := a.requireActive("deposit"); err != nil {
		return MutationResult{}, err
	}
	if err := ValidateAmount(amount); err != nil {
		return MutationResult{}, err
	}

	if description == "" {
		description = "Deposit"
	}

	a.balance = a.balance.Add(amount)
	a.lastUpdated = a.clock.Now()

	entry := a.record(EntryDeposit, amount, description)

	return MutationResult{NewBalance: a.balance, Entry: entry}, nil
}

// Withdraw subtracts amount from the balance. If the resulting balance drops
// below the minimum-balance threshold an overdraft fee is charged and logged
// before the withdrawal entry; both entries carry the post-fee balance.
func (a *Account) Withdraw(amount decimal.Decimal, description string) (MutationResult, error) {
	if err := a.requireActive("withdraw"); err != nil {
		return MutationResult{}, err
	}
	if err := ValidateAmount(amount); err != nil {
		return MutationResult{}, err
	}
	if amount.GreaterThan(a.balance) {
		return MutationResult{}, ErrInsufficientFunds
	}

	if description == "" {
		description = "Withdrawal"
	}

	a.balance = a.balance.Sub(amount)
	a.lastUpdated = a.clock.Now()

	var feeEntry *Entry
	if a.balance.LessThan(a.fees.MinimumBalance) {
		e := a.applyFee("Overdraft fee", a.fees.Overdraft)
		feeEntry = &e
	}

	entry := a.record(EntryWithdrawal, amount.Neg(), description)

	return MutationResult{NewBalance: a.balance, Entry: entry, FeeEntry: feeEntry}, nil
}

// ApplyMaintenanceFee charges the configured maintenance fee.
func (a *Account) ApplyMaintenanceFee() (MutationResult, error) {
	if err := a.requireActive("apply maintenance fee"); err != nil {
		return MutationResult{}, err
	}

	entry := a.applyFee("Maintenance fee", a.fees.Maintenance)
	a.lastUpdated = a.clock.Now()

	return MutationResult{NewBalance: a.balance, Entry: entry}, nil
}

// InterestProjection is the result of a compound interest calculation.
type InterestProjection struct {
	InitialBalance decimal.Decimal
	FinalAmount    decimal.Decimal
	InterestEarned decimal.Decimal
	EffectiveRate  float64
	Years          float64
	Frequency      int
}

// CalculateCompoundInterest projects the balance forward at rate compounded
// frequency times per year. The bonus rate applies when the balance is at or
// above the high-balance threshold. Pure: mutates nothing, appends nothing.
func (a *Account) CalculateCompoundInterest(rate, years float64, frequency int) (InterestProjection, error) {
	if err := ValidateInterestParams(rate, years, frequency); err != nil {
		return InterestProjection{}, err
	}

	effective := rate
	if a.balance.GreaterThanOrEqual(a.interest.HighBalanceThreshold) {
		effective += a.interest.BonusRate
	}

	finalAmount, interestEarned := fincalc.CompoundInterest(a.balance, effective, years, frequency)

	return InterestProjection{
		InitialBalance: a.balance,
		FinalAmount:    finalAmount,
		InterestEarned: interestEarned,
		EffectiveRate:  effective,
		Years:          years,
		Frequency:      frequency,
	}, nil
}

// Statistics summarizes a set of entries. Amounts are absolute values.
type Statistics struct {
	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	LargestDeposit     decimal.Decimal `json:"largest_deposit"`
	LargestWithdrawal  decimal.Decimal `json:"largest_withdrawal"`
	TotalFees          decimal.Decimal `json:"total_fees"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
}

// Statement is a point-in-time view of the account with its entry log
// filtered to the requested period.
type Statement struct {
	AccountNumber  string          `json:"account_number"`
	Owner          string          `json:"owner"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Status         AccountStatus   `json:"status"`
	Entries        []Entry         `json:"entries"`
	CreatedAt      time.Time       `json:"created_at"`
	LastUpdated    time.Time       `json:"last_updated"`
	InterestRate   float64         `json:"interest_rate"`
	Statistics     Statistics      `json:"statistics"`
}

// Statement returns the account state with entries filtered to the inclusive
// [start, end] range. Either bound may be nil.
func (a *Account) Statement(start, end *time.Time) Statement {
	filtered := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		if start != nil && e.Timestamp.Before(*start) {
			continue
		}
		if end != nil && e.Timestamp.After(*end) {
			continue
		}
		filtered = append(filtered, e)
	}

	return Statement{
		AccountNumber:  a.number,
		Owner:          a.owner,
		CurrentBalance: a.balance,
		Status:         a.status,
		Entries:        filtered,
		CreatedAt:      a.createdAt,
		LastUpdated:    a.lastUpdated,
		InterestRate:   a.CurrentInterestRate(),
		Statistics:     calculateStatistics(filtered),
	}
}

// Freeze moves an active account to frozen and logs the reason.
func (a *Account) Freeze(reason string) error {
	if a.status != StatusActive {
		return invalidState("freeze", string(a.status))
	}

	a.status = StatusFrozen
	a.record(EntryFee, decimal.Zero, "Account frozen: "+reason)
	return nil
}

// Unfreeze moves a frozen account back to active and logs the reason.
func (a *Account) Unfreeze(reason string) error {
	if a.status != StatusFrozen {
		return invalidState("unfreeze", string(a.status))
	}

	a.status = StatusActive
	a.record(EntryFee, decimal.Zero, "Account unfrozen: "+reason)
	return nil
}

// Close moves the account to its terminal closed status. Requires a zero
// balance.
func (a *Account) Close(reason string) error {
	if a.status == StatusClosed {
		return invalidState("close", string(a.status))
	}
	if !a.balance.IsZero() {
		return invalidState("close", "balance is not zero")
	}

	a.status = StatusClosed
	a.record(EntryFee, decimal.Zero, "Account closed: "+reason)
	return nil
}

// CurrentInterestRate returns the base rate plus the bonus rate when the
// balance is at or above the high-balance threshold.
func (a *Account) CurrentInterestRate() float64 {
	rate := a.interest.BaseRate
	if a.balance.GreaterThanOrEqual(a.interest.HighBalanceThreshold) {
		rate += a.interest.BonusRate
	}
	return rate
}

func (a *Account) Number() string          { return a.number }
func (a *Account) Owner() string           { return a.owner }
func (a *Account) Balance() decimal.Decimal { return a.balance }
func (a *Account) Status() AccountStatus   { return a.status }
func (a *Account) CreatedAt() time.Time    { return a.createdAt }
func (a *Account) LastUpdated() time.Time  { return a.lastUpdated }

// Entries returns a copy of the entry log in insertion order.
func (a *Account) Entries() []Entry {
	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// AccountState is the serializable form of an account. Every field
// round-trips losslessly through the snapshot store.
type AccountState struct {
	Number      string           `json:"number"`
	Owner       string           `json:"owner"`
	Balance     decimal.Decimal  `json:"balance"`
	Status      AccountStatus    `json:"status"`
	Entries     []Entry          `json:"entries"`
	CreatedAt   time.Time        `json:"created_at"`
	LastUpdated time.Time        `json:"last_updated"`
	Interest    InterestSettings `json:"interest_settings"`
	Fees        FeeSettings      `json:"fee_settings"`
}

// State exports the full account state for snapshotting.
func (a *Account) State() AccountState {
	return AccountState{
		Number:      a.number,
		Owner:       a.owner,
		Balance:     a.balance,
		Status:      a.status,
		Entries:     a.Entries(),
		CreatedAt:   a.createdAt,
		LastUpdated: a.lastUpdated,
		Interest:    a.interest,
		Fees:        a.fees,
	}
}

// RestoreAccount rebuilds an account from a snapshot state.
func RestoreAccount(s AccountState, opts ...AccountOption) (*Account, error) {
	if err := ValidateAccountNumber(s.Number); err != nil {
		return nil, err
	}
	if err := ValidateOwnerName(s.Owner); err != nil {
		return nil, err
	}

	a := &Account{
		number:      s.Number,
		owner:       s.Owner,
		balance:     s.Balance,
		status:      s.Status,
		entries:     append([]Entry(nil), s.Entries...),
		createdAt:   s.CreatedAt,
		lastUpdated: s.LastUpdated,
		interest:    s.Interest,
		fees:        s.Fees,
		clock:       systemClock{},
		idGen:       ulidGenerator{},
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

func (a *Account) requireActive(op string) error {
	if a.status != StatusActive {
		return invalidState(op, string(a.status))
	}
	return nil
}

func (a *Account) record(t EntryType, amount decimal.Decimal, description string) Entry {
	e := Entry{
		ID:           a.idGen.Generate(),
		Type:         t,
		Amount:       amount,
		Description:  description,
		Timestamp:    a.clock.Now(),
		BalanceAfter: a.balance,
	}
	a.entries = append(a.entries, e)
	return e
}

func (a *Account) applyFee(description string, amount decimal.Decimal) Entry {
	a.balance = a.balance.Sub(amount)
	return a.record(EntryFee, amount.Neg(), description)
}

func calculateStatistics(entries []Entry) Statistics {
	stats := Statistics{
		TotalDeposits:      decimal.Zero,
		TotalWithdrawals:   decimal.Zero,
		LargestDeposit:     decimal.Zero,
		LargestWithdrawal:  decimal.Zero,
		TotalFees:          decimal.Zero,
		AverageTransaction: decimal.Zero,
	}

	if len(entries) == 0 {
		return stats
	}

	total := decimal.Zero
	for _, e := range entries {
		amount := e.Amount.Abs()
		total = total.Add(amount)

		switch e.Type {
		case EntryDeposit:
			stats.TotalDeposits = stats.TotalDeposits.Add(amount)
			if amount.GreaterThan(stats.LargestDeposit) {
				stats.LargestDeposit = amount
			}
		case EntryWithdrawal:
			stats.TotalWithdrawals = stats.TotalWithdrawals.Add(amount)
			if amount.GreaterThan(stats.LargestWithdrawal) {
				stats.LargestWithdrawal = amount
			}
		case EntryFee:
			stats.TotalFees = stats.TotalFees.Add(amount)
		}
	}

	stats.AverageTransaction = total.Div(decimal.NewFromInt(int64(len(entries))))

	return stats
}
