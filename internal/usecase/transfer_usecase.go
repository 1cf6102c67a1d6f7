package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

// TransferUseCase drives the transaction lifecycle across two accounts:
// build a pending transaction, move the funds, then complete or fail the
// record. Transactions live in the ledger's registry so they ride along in
// snapshots.
type TransferUseCase struct {
	ledger    *LedgerUseCase
	clock     domain.Clock
	idGen     domain.IDGenerator
	maxAmount decimal.Decimal
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	ledger *LedgerUseCase,
	clock domain.Clock,
	idGen domain.IDGenerator,
	maxAmount decimal.Decimal,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *TransferUseCase {
	return &TransferUseCase{
		ledger:    ledger,
		clock:     clock,
		idGen:     idGen,
		maxAmount: maxAmount,
		logger:    logger,
		metrics:   m,
	}
}

// TransferInput represents input for creating a transfer.
type TransferInput struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Description string
	Metadata    map[string]any
}

// Transfer moves funds between two accounts under a transfer transaction.
// On a failed leg the transaction is registered as failed; a failed deposit
// leg is compensated by re-crediting the source.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*domain.Transaction, error) {
	if input.FromAccount == input.ToAccount {
		uc.metrics.TransferErrors.WithLabelValues("validation").Inc()
		return nil, fmt.Errorf("%w: cannot transfer to the same account", domain.ErrInvalidAmount)
	}

	txn, err := domain.NewTransaction(domain.TransactionParams{
		Type:        domain.TransactionTransfer,
		Amount:      input.Amount,
		FromAccount: input.FromAccount,
		ToAccount:   input.ToAccount,
		Description: input.Description,
		Metadata:    input.Metadata,
	},
		domain.WithTransactionClock(uc.clock),
		domain.WithTransactionIDGenerator(uc.idGen),
		domain.WithMaxAmount(uc.maxAmount),
	)
	if err != nil {
		uc.metrics.TransferErrors.WithLabelValues("validation").Inc()
		return nil, err
	}

	return uc.execute(ctx, txn)
}

// Reverse reverses a completed transfer: the original is marked reversed and
// a new linked transaction moves the funds back.
func (uc *TransferUseCase) Reverse(ctx context.Context, id, reason string) (*domain.Transaction, error) {
	original, err := uc.ledger.GetTransaction(id)
	if err != nil {
		return nil, err
	}

	reversal, err := original.Reverse(reason)
	if err != nil {
		uc.metrics.TransferErrors.WithLabelValues("invalid_state").Inc()
		return nil, err
	}

	// The original's status changed; write it back before moving funds.
	uc.ledger.RegisterTransaction(ctx, original)

	result, err := uc.execute(ctx, reversal)
	if err != nil {
		return nil, err
	}

	uc.metrics.TransfersReversed.Inc()
	uc.logger.Info().
		Str("transaction", reversal.ID()).
		Str("original", id).
		Str("reason", reason).
		Msg("transfer reversed")

	return result, nil
}

// List returns all registered transactions in creation order.
func (uc *TransferUseCase) List() []*domain.Transaction {
	return uc.ledger.ListTransactions()
}

// Cancel cancels a pending registered transaction.
func (uc *TransferUseCase) Cancel(ctx context.Context, id, reason string) error {
	txn, err := uc.ledger.GetTransaction(id)
	if err != nil {
		return err
	}

	if err := txn.Cancel(reason); err != nil {
		uc.metrics.TransferErrors.WithLabelValues("invalid_state").Inc()
		return err
	}

	uc.ledger.RegisterTransaction(ctx, txn)
	return nil
}

func (uc *TransferUseCase) execute(ctx context.Context, txn *domain.Transaction) (*domain.Transaction, error) {
	from := txn.FromAccount()
	to := txn.ToAccount()
	amount := txn.Amount()

	if _, err := uc.ledger.Withdraw(ctx, WithdrawInput{
		Number:      from,
		Amount:      amount,
		Description: "Transfer to " + to,
	}); err != nil {
		uc.failTransfer(ctx, txn, err)
		return nil, err
	}

	if _, err := uc.ledger.Deposit(ctx, DepositInput{
		Number:      to,
		Amount:      amount,
		Description: "Transfer from " + from,
	}); err != nil {
		// Compensate the debited source. The credit cannot fail validation
		// (the amount was just withdrawn), but an inactive source would
		// leave the funds in limbo, so log loudly if it does.
		if _, cerr := uc.ledger.Deposit(ctx, DepositInput{
			Number:      from,
			Amount:      amount,
			Description: "Transfer compensation from failed credit",
		}); cerr != nil {
			uc.logger.Error().Err(cerr).
				Str("account", from).
				Str("amount", amount.String()).
				Msg("transfer compensation failed")
		}

		uc.failTransfer(ctx, txn, err)
		return nil, err
	}

	if err := txn.Complete(nil); err != nil {
		return nil, err
	}
	uc.ledger.RegisterTransaction(ctx, txn)

	uc.metrics.TransfersCreated.Inc()
	uc.logger.Info().
		Str("transaction", txn.ID()).
		Str("from", from).
		Str("to", to).
		Str("amount", amount.String()).
		Msg("transfer completed")

	return txn, nil
}

func (uc *TransferUseCase) failTransfer(ctx context.Context, txn *domain.Transaction, cause error) {
	if err := txn.Fail(cause.Error()); err != nil {
		uc.logger.Error().Err(err).Str("transaction", txn.ID()).Msg("could not mark transfer failed")
	}
	uc.ledger.RegisterTransaction(ctx, txn)
	uc.metrics.TransferErrors.WithLabelValues("execution").Inc()
}
