package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus represents the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionReversed  TransactionStatus = "reversed"
)

// TransactionType identifies a recognized transaction kind.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionTransfer   TransactionType = "transfer"
	TransactionInterest   TransactionType = "interest"
	TransactionFee        TransactionType = "fee"
)

// TransactionCategory classifies a transaction for reporting.
type TransactionCategory string

const (
	CategoryIncome   TransactionCategory = "income"
	CategoryExpense  TransactionCategory = "expense"
	CategoryTransfer TransactionCategory = "transfer"
	CategoryInterest TransactionCategory = "interest"
	CategoryFee      TransactionCategory = "fee"
)

// Metadata keys written by lifecycle transitions.
const (
	MetaCompletedAt         = "completed_at"
	MetaFailedAt            = "failed_at"
	MetaFailureReason       = "failure_reason"
	MetaCancelledAt         = "cancelled_at"
	MetaCancellationReason  = "cancellation_reason"
	MetaReversedAt          = "reversed_at"
	MetaReversalReason      = "reversal_reason"
	MetaOriginalTransaction = "original_transaction"
	MetaResult              = "result"
	MetaNotes               = "notes"
)

var transactionCategories = map[TransactionType]TransactionCategory{
	TransactionDeposit:    CategoryIncome,
	TransactionWithdrawal: CategoryExpense,
	TransactionTransfer:   CategoryTransfer,
	TransactionInterest:   CategoryInterest,
	TransactionFee:        CategoryFee,
}

var recognizedCategories = map[TransactionCategory]bool{
	CategoryIncome:   true,
	CategoryExpense:  true,
	CategoryTransfer: true,
	CategoryInterest: true,
	CategoryFee:      true,
}

// TransactionParams carries the inputs for creating a transaction. Category
// defaults from Type when empty or unrecognized.
type TransactionParams struct {
	Type        TransactionType
	Amount      decimal.Decimal
	FromAccount string
	ToAccount   string
	Description string
	Category    TransactionCategory
	Metadata    map[string]any
}

// Transaction is a standalone ledger movement with its own lifecycle, used
// for transfer-style workflows. Fields are immutable after creation except
// the status and metadata written by lifecycle transitions.
type Transaction struct {
	id          string
	timestamp   time.Time
	status      TransactionStatus
	txType      TransactionType
	amount      decimal.Decimal
	fromAccount string
	toAccount   string
	description string
	category    TransactionCategory
	metadata    map[string]any
	maxAmount   decimal.Decimal
	clock       Clock
	idGen       IDGenerator
}

// TransactionOption customizes transaction construction.
type TransactionOption func(*Transaction)

// WithTransactionClock injects a clock for deterministic timestamps.
func WithTransactionClock(c Clock) TransactionOption {
	return func(t *Transaction) { t.clock = c }
}

// WithTransactionIDGenerator injects an id source.
func WithTransactionIDGenerator(g IDGenerator) TransactionOption {
	return func(t *Transaction) { t.idGen = g }
}

// WithMaxAmount overrides the per-transaction amount ceiling.
func WithMaxAmount(max decimal.Decimal) TransactionOption {
	return func(t *Transaction) { t.maxAmount = max }
}

// NewTransaction creates a pending transaction after validating its params.
func NewTransaction(params TransactionParams, opts ...TransactionOption) (*Transaction, error) {
	t := &Transaction{
		status:      TransactionPending,
		txType:      params.Type,
		amount:      params.Amount,
		fromAccount: params.FromAccount,
		toAccount:   params.ToAccount,
		description: params.Description,
		category:    determineCategory(params.Category, params.Type),
		metadata:    make(map[string]any, len(params.Metadata)),
		maxAmount:   DefaultMaxTransactionAmount,
		clock:       systemClock{},
		idGen:       ulidGenerator{},
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.validateParams(); err != nil {
		return nil, err
	}

	t.id = t.idGen.Generate()
	t.timestamp = t.clock.Now()

	for k, v := range params.Metadata {
		t.metadata[k] = v
	}

	return t, nil
}

// Complete marks a pending transaction completed. The optional result map is
// stored in metadata.
func (t *Transaction) Complete(result map[string]any) error {
	if t.status != TransactionPending {
		return t.transitionError("complete")
	}

	t.status = TransactionCompleted
	t.metadata[MetaCompletedAt] = t.stamp()
	if result != nil {
		t.metadata[MetaResult] = result
	}
	return nil
}

// Fail marks a pending transaction failed, recording the reason.
func (t *Transaction) Fail(reason string) error {
	if t.status != TransactionPending {
		return t.transitionError("fail")
	}

	t.status = TransactionFailed
	t.metadata[MetaFailedAt] = t.stamp()
	t.metadata[MetaFailureReason] = reason
	return nil
}

// Cancel marks a pending transaction cancelled, recording the reason.
func (t *Transaction) Cancel(reason string) error {
	if t.status != TransactionPending {
		return t.transitionError("cancel")
	}

	t.status = TransactionCancelled
	t.metadata[MetaCancelledAt] = t.stamp()
	t.metadata[MetaCancellationReason] = reason
	return nil
}

// Reverse marks a completed transaction reversed and returns a new pending
// transaction with swapped accounts, linked to this one via metadata. The
// original is not otherwise mutated.
func (t *Transaction) Reverse(reason string) (*Transaction, error) {
	if t.status != TransactionCompleted {
		return nil, t.transitionError("reverse")
	}

	t.status = TransactionReversed
	t.metadata[MetaReversedAt] = t.stamp()
	t.metadata[MetaReversalReason] = reason

	from := t.toAccount
	if from == "" {
		from = t.fromAccount
	}

	return NewTransaction(TransactionParams{
		Type:        t.txType,
		Amount:      t.amount,
		FromAccount: from,
		ToAccount:   t.fromAccount,
		Description: fmt.Sprintf("Reversal: %s - %s", t.description, reason),
		Category:    t.category,
		Metadata: map[string]any{
			MetaOriginalTransaction: t.id,
			MetaReversalReason:      reason,
		},
	},
		WithTransactionClock(t.clock),
		WithTransactionIDGenerator(t.idGen),
		WithMaxAmount(t.maxAmount),
	)
}

// AddNote appends a timestamped free-form note to the metadata.
func (t *Transaction) AddNote(note string) {
	notes, _ := t.metadata[MetaNotes].([]map[string]any)
	t.metadata[MetaNotes] = append(notes, map[string]any{
		"text":      note,
		"timestamp": t.stamp(),
	})
}

// IsModifiable reports whether the transaction is still pending.
func (t *Transaction) IsModifiable() bool { return t.status == TransactionPending }

func (t *Transaction) ID() string                    { return t.id }
func (t *Transaction) Timestamp() time.Time          { return t.timestamp }
func (t *Transaction) Status() TransactionStatus     { return t.status }
func (t *Transaction) Type() TransactionType         { return t.txType }
func (t *Transaction) Amount() decimal.Decimal       { return t.amount }
func (t *Transaction) FromAccount() string           { return t.fromAccount }
func (t *Transaction) ToAccount() string             { return t.toAccount }
func (t *Transaction) Description() string           { return t.description }
func (t *Transaction) Category() TransactionCategory { return t.category }

// Metadata returns a copy of the metadata map.
func (t *Transaction) Metadata() map[string]any {
	out := make(map[string]any, len(t.metadata))
	for k, v := range t.metadata {
		out[k] = v
	}
	return out
}

// TransactionState is the serializable form of a transaction.
type TransactionState struct {
	ID          string              `json:"id"`
	Timestamp   time.Time           `json:"timestamp"`
	Status      TransactionStatus   `json:"status"`
	Type        TransactionType     `json:"type"`
	Amount      decimal.Decimal     `json:"amount"`
	FromAccount string              `json:"from_account"`
	ToAccount   string              `json:"to_account,omitempty"`
	Description string              `json:"description"`
	Category    TransactionCategory `json:"category"`
	Metadata    map[string]any      `json:"metadata,omitempty"`
}

// State exports the full transaction state for snapshotting.
func (t *Transaction) State() TransactionState {
	return TransactionState{
		ID:          t.id,
		Timestamp:   t.timestamp,
		Status:      t.status,
		Type:        t.txType,
		Amount:      t.amount,
		FromAccount: t.fromAccount,
		ToAccount:   t.toAccount,
		Description: t.description,
		Category:    t.category,
		Metadata:    t.Metadata(),
	}
}

// RestoreTransaction rebuilds a transaction from a snapshot state.
func RestoreTransaction(s TransactionState, opts ...TransactionOption) (*Transaction, error) {
	t := &Transaction{
		id:          s.ID,
		timestamp:   s.Timestamp,
		status:      s.Status,
		txType:      s.Type,
		amount:      s.Amount,
		fromAccount: s.FromAccount,
		toAccount:   s.ToAccount,
		description: s.Description,
		category:    s.Category,
		metadata:    make(map[string]any, len(s.Metadata)),
		maxAmount:   DefaultMaxTransactionAmount,
		clock:       systemClock{},
		idGen:       ulidGenerator{},
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.validateParams(); err != nil {
		return nil, err
	}

	for k, v := range s.Metadata {
		t.metadata[k] = v
	}

	return t, nil
}

func (t *Transaction) validateParams() error {
	if _, ok := transactionCategories[t.txType]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, t.txType)
	}

	if !t.amount.IsPositive() {
		return fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}

	if t.amount.GreaterThan(t.maxAmount) {
		return fmt.Errorf("%w: maximum is %s", ErrAmountTooLarge, t.maxAmount)
	}

	if t.fromAccount == "" {
		return ErrMissingSourceAccount
	}

	return nil
}

func (t *Transaction) transitionError(event string) error {
	return fmt.Errorf("%w: cannot %s transaction with status %s", ErrInvalidState, event, t.status)
}

// stamp returns the current time as an RFC 3339 string so metadata survives
// JSON snapshot round trips unchanged.
func (t *Transaction) stamp() string {
	return t.clock.Now().UTC().Format(time.RFC3339Nano)
}

func determineCategory(category TransactionCategory, txType TransactionType) TransactionCategory {
	if recognizedCategories[category] {
		return category
	}
	return transactionCategories[txType]
}
