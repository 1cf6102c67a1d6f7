package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// LedgerUseCase owns the in-memory account registry and the transaction
// registry shared with the transfer workflow. Every mutation is logged,
// counted and followed by a whole-state snapshot save. A single mutex
// serializes all operations: balance-then-log updates are multi-step and not
// atomic by themselves.
type LedgerUseCase struct {
	mu           sync.Mutex
	accounts     map[string]*domain.Account
	accountOrder []string
	transactions map[string]*domain.Transaction
	txOrder      []string

	snapshots SnapshotStore
	retrier   Retrier
	clock     domain.Clock
	idGen     domain.IDGenerator
	interest  domain.InterestSettings
	fees      domain.FeeSettings
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	snapshots SnapshotStore,
	retrier Retrier,
	clock domain.Clock,
	idGen domain.IDGenerator,
	interest domain.InterestSettings,
	fees domain.FeeSettings,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *LedgerUseCase {
	return &LedgerUseCase{
		accounts:     make(map[string]*domain.Account),
		transactions: make(map[string]*domain.Transaction),
		snapshots:    snapshots,
		retrier:      retrier,
		clock:        clock,
		idGen:        idGen,
		interest:     interest,
		fees:         fees,
		logger:       logger,
		metrics:      m,
	}
}

// Restore reloads the full ledger state from the snapshot store. A missing
// snapshot is not an error: the ledger starts empty.
func (uc *LedgerUseCase) Restore(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	snap, err := uc.snapshots.Load(ctx)
	if err != nil {
		if err == ErrNoSnapshot {
			uc.logger.Info().Msg("no snapshot found, starting empty")
			return nil
		}
		return err
	}

	accounts := make(map[string]*domain.Account, len(snap.Accounts))
	order := make([]string, 0, len(snap.Accounts))
	for _, state := range snap.Accounts {
		account, err := domain.RestoreAccount(state,
			domain.WithClock(uc.clock),
			domain.WithIDGenerator(uc.idGen),
		)
		if err != nil {
			return err
		}
		accounts[account.Number()] = account
		order = append(order, account.Number())
	}

	transactions := make(map[string]*domain.Transaction, len(snap.Transactions))
	txOrder := make([]string, 0, len(snap.Transactions))
	for _, state := range snap.Transactions {
		txn, err := domain.RestoreTransaction(state,
			domain.WithTransactionClock(uc.clock),
			domain.WithTransactionIDGenerator(uc.idGen),
		)
		if err != nil {
			return err
		}
		transactions[txn.ID()] = txn
		txOrder = append(txOrder, txn.ID())
	}

	uc.accounts = accounts
	uc.accountOrder = order
	uc.transactions = transactions
	uc.txOrder = txOrder

	uc.logger.Info().
		Int("accounts", len(accounts)).
		Int("transactions", len(transactions)).
		Msg("ledger state restored from snapshot")

	return nil
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	Number         string
	Owner          string
	InitialBalance decimal.Decimal
}

// OpenAccount creates and registers a new account.
func (uc *LedgerUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.accounts[input.Number]; ok {
		return nil, domain.ErrAccountExists
	}

	account, err := domain.NewAccount(input.Number, input.Owner, input.InitialBalance,
		domain.WithClock(uc.clock),
		domain.WithIDGenerator(uc.idGen),
		domain.WithInterestSettings(uc.interest),
		domain.WithFeeSettings(uc.fees),
	)
	if err != nil {
		return nil, err
	}

	uc.accounts[account.Number()] = account
	uc.accountOrder = append(uc.accountOrder, account.Number())

	uc.metrics.AccountsOpened.Inc()
	uc.metrics.AccountBalance.WithLabelValues(account.Number()).Set(account.Balance().InexactFloat64())
	uc.logger.Info().
		Str("account", account.Number()).
		Str("owner", account.Owner()).
		Str("balance", account.Balance().String()).
		Msg("account opened")

	uc.persist(ctx)

	return account, nil
}

// GetAccount retrieves an account by number.
func (uc *LedgerUseCase) GetAccount(number string) (*domain.Account, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return uc.lookup(number)
}

// ListAccounts returns all accounts in opening order.
func (uc *LedgerUseCase) ListAccounts() []*domain.Account {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*domain.Account, 0, len(uc.accountOrder))
	for _, number := range uc.accountOrder {
		out = append(out, uc.accounts[number])
	}
	return out
}

// DepositInput represents input for a deposit.
type DepositInput struct {
	Number      string
	Amount      decimal.Decimal
	Description string
}

// Deposit adds funds to an account.
func (uc *LedgerUseCase) Deposit(ctx context.Context, input DepositInput) (domain.MutationResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(input.Number)
	if err != nil {
		return domain.MutationResult{}, err
	}

	result, err := account.Deposit(input.Amount, input.Description)
	if err != nil {
		return domain.MutationResult{}, err
	}

	uc.metrics.Deposits.Inc()
	uc.metrics.AccountOperations.WithLabelValues("deposit").Inc()
	uc.metrics.DepositAmount.Observe(input.Amount.InexactFloat64())
	uc.metrics.AccountBalance.WithLabelValues(input.Number).Set(result.NewBalance.InexactFloat64())
	uc.logger.Info().
		Str("account", input.Number).
		Str("amount", input.Amount.String()).
		Str("balance", result.NewBalance.String()).
		Msg("deposit")

	uc.persist(ctx)

	return result, nil
}

// WithdrawInput represents input for a withdrawal.
type WithdrawInput struct {
	Number      string
	Amount      decimal.Decimal
	Description string
}

// Withdraw removes funds from an account, charging the overdraft fee when
// the balance falls below the configured minimum.
func (uc *LedgerUseCase) Withdraw(ctx context.Context, input WithdrawInput) (domain.MutationResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(input.Number)
	if err != nil {
		return domain.MutationResult{}, err
	}

	result, err := account.Withdraw(input.Amount, input.Description)
	if err != nil {
		return domain.MutationResult{}, err
	}

	uc.metrics.Withdrawals.Inc()
	uc.metrics.AccountOperations.WithLabelValues("withdraw").Inc()
	uc.metrics.AccountBalance.WithLabelValues(input.Number).Set(result.NewBalance.InexactFloat64())

	event := uc.logger.Info().
		Str("account", input.Number).
		Str("amount", input.Amount.String()).
		Str("balance", result.NewBalance.String())
	if result.FeeEntry != nil {
		uc.metrics.OverdraftFees.Inc()
		event = event.Str("overdraft_fee", result.FeeEntry.Amount.Abs().String())
	}
	event.Msg("withdrawal")

	uc.persist(ctx)

	return result, nil
}

// Freeze freezes an account.
func (uc *LedgerUseCase) Freeze(ctx context.Context, number, reason string) error {
	return uc.statusChange(ctx, number, "freeze", reason, func(a *domain.Account) error {
		return a.Freeze(reason)
	})
}

// Unfreeze unfreezes an account.
func (uc *LedgerUseCase) Unfreeze(ctx context.Context, number, reason string) error {
	return uc.statusChange(ctx, number, "unfreeze", reason, func(a *domain.Account) error {
		return a.Unfreeze(reason)
	})
}

// Close closes an account. The balance must be zero.
func (uc *LedgerUseCase) Close(ctx context.Context, number, reason string) error {
	return uc.statusChange(ctx, number, "close", reason, func(a *domain.Account) error {
		return a.Close(reason)
	})
}

// ApplyMaintenanceFee charges the configured maintenance fee to an account.
func (uc *LedgerUseCase) ApplyMaintenanceFee(ctx context.Context, number string) (domain.MutationResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(number)
	if err != nil {
		return domain.MutationResult{}, err
	}

	result, err := account.ApplyMaintenanceFee()
	if err != nil {
		return domain.MutationResult{}, err
	}

	uc.metrics.AccountOperations.WithLabelValues("maintenance_fee").Inc()
	uc.metrics.AccountBalance.WithLabelValues(number).Set(result.NewBalance.InexactFloat64())
	uc.logger.Info().
		Str("account", number).
		Str("balance", result.NewBalance.String()).
		Msg("maintenance fee applied")

	uc.persist(ctx)

	return result, nil
}

// Statement returns the account statement for the inclusive [start, end]
// range; either bound may be nil.
func (uc *LedgerUseCase) Statement(number string, start, end *time.Time) (domain.Statement, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(number)
	if err != nil {
		return domain.Statement{}, err
	}

	return account.Statement(start, end), nil
}

// ProjectInterest runs a compound interest projection for an account.
func (uc *LedgerUseCase) ProjectInterest(number string, rate, years float64, frequency int) (domain.InterestProjection, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(number)
	if err != nil {
		return domain.InterestProjection{}, err
	}

	return account.CalculateCompoundInterest(rate, years, frequency)
}

// RegisterTransaction adds or updates a transaction in the registry and
// persists a snapshot.
func (uc *LedgerUseCase) RegisterTransaction(ctx context.Context, txn *domain.Transaction) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, ok := uc.transactions[txn.ID()]; !ok {
		uc.txOrder = append(uc.txOrder, txn.ID())
	}
	uc.transactions[txn.ID()] = txn

	uc.persist(ctx)
}

// GetTransaction retrieves a registered transaction by id.
func (uc *LedgerUseCase) GetTransaction(id string) (*domain.Transaction, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	txn, ok := uc.transactions[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	return txn, nil
}

// ListTransactions returns all registered transactions in creation order.
func (uc *LedgerUseCase) ListTransactions() []*domain.Transaction {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*domain.Transaction, 0, len(uc.txOrder))
	for _, id := range uc.txOrder {
		out = append(out, uc.transactions[id])
	}
	return out
}

func (uc *LedgerUseCase) statusChange(ctx context.Context, number, op, reason string, fn func(*domain.Account) error) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	account, err := uc.lookup(number)
	if err != nil {
		return err
	}

	if err := fn(account); err != nil {
		return err
	}

	uc.metrics.AccountOperations.WithLabelValues(op).Inc()
	uc.logger.Info().
		Str("account", number).
		Str("reason", reason).
		Str("status", string(account.Status())).
		Msgf("account %s", op)

	uc.persist(ctx)

	return nil
}

func (uc *LedgerUseCase) lookup(number string) (*domain.Account, error) {
	account, ok := uc.accounts[number]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// persist writes the whole ledger state to the snapshot store. The in-memory
// mutation already happened; a failed save is logged and counted but not
// surfaced to the caller. Callers hold the mutex.
func (uc *LedgerUseCase) persist(ctx context.Context) {
	snap := Snapshot{
		SchemaVersion: SnapshotVersion,
		SavedAt:       uc.clock.Now(),
		Accounts:      make([]domain.AccountState, 0, len(uc.accountOrder)),
		Transactions:  make([]domain.TransactionState, 0, len(uc.txOrder)),
	}
	for _, number := range uc.accountOrder {
		snap.Accounts = append(snap.Accounts, uc.accounts[number].State())
	}
	for _, id := range uc.txOrder {
		snap.Transactions = append(snap.Transactions, uc.transactions[id].State())
	}

	err := uc.retrier.Retry(ctx, func() error {
		return uc.snapshots.Save(ctx, snap)
	})
	if err != nil {
		uc.metrics.SnapshotErrors.Inc()
		uc.logger.Error().Err(err).Msg("snapshot save failed")
		return
	}

	uc.metrics.SnapshotSaves.Inc()
}
