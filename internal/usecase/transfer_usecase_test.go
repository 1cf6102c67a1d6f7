package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
)

func newTestTransfer(t *testing.T, store SnapshotStore) (*TransferUseCase, *LedgerUseCase) {
	t.Helper()

	ledger := newTestLedger(store)
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	transfer := NewTransferUseCase(
		ledger,
		clock,
		&seqIDGen{},
		domain.DefaultMaxTransactionAmount,
		zerolog.Nop(),
		metrics.New(prometheus.NewRegistry()),
	)

	openTestAccount(t, ledger, "1111111111", 5000)
	openTestAccount(t, ledger, "2222222222", 2000)

	return transfer, ledger
}

func accountBalance(t *testing.T, ledger *LedgerUseCase, number string) decimal.Decimal {
	t.Helper()

	account, err := ledger.GetAccount(number)
	require.NoError(t, err)
	return account.Balance()
}

func TestTransfer(t *testing.T) {
	transfer, ledger := newTestTransfer(t, &memStore{})

	txn, err := transfer.Transfer(context.Background(), TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(500),
		Description: "rent split",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionCompleted, txn.Status())
	assert.Equal(t, domain.TransactionTransfer, txn.Type())
	assert.True(t, accountBalance(t, ledger, "1111111111").Equal(decimal.NewFromInt(4500)))
	assert.True(t, accountBalance(t, ledger, "2222222222").Equal(decimal.NewFromInt(2500)))

	registered, err := ledger.GetTransaction(txn.ID())
	require.NoError(t, err)
	assert.Same(t, txn, registered)
}

func TestTransferSameAccount(t *testing.T) {
	transfer, _ := newTestTransfer(t, &memStore{})

	_, err := transfer.Transfer(context.Background(), TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "1111111111",
		Amount:      decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestTransferAmountTooLarge(t *testing.T) {
	transfer, ledger := newTestTransfer(t, &memStore{})

	_, err := transfer.Transfer(context.Background(), TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(2_000_000),
	})
	assert.ErrorIs(t, err, domain.ErrAmountTooLarge)
	assert.Empty(t, ledger.ListTransactions(), "rejected params never reach the registry")
}

func TestTransferInsufficientFunds(t *testing.T) {
	transfer, ledger := newTestTransfer(t, &memStore{})

	_, err := transfer.Transfer(context.Background(), TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(100_000),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	// Balances untouched, the transaction is registered as failed.
	assert.True(t, accountBalance(t, ledger, "1111111111").Equal(decimal.NewFromInt(5000)))
	assert.True(t, accountBalance(t, ledger, "2222222222").Equal(decimal.NewFromInt(2000)))

	transactions := ledger.ListTransactions()
	require.Len(t, transactions, 1)
	assert.Equal(t, domain.TransactionFailed, transactions[0].Status())
	assert.NotEmpty(t, transactions[0].Metadata()[domain.MetaFailureReason])
}

func TestTransferCompensatesFailedCredit(t *testing.T) {
	transfer, ledger := newTestTransfer(t, &memStore{})
	ctx := context.Background()

	require.NoError(t, ledger.Freeze(ctx, "2222222222", "fraud hold"))

	_, err := transfer.Transfer(ctx, TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	// The debited source is re-credited after the failed deposit leg.
	assert.True(t, accountBalance(t, ledger, "1111111111").Equal(decimal.NewFromInt(5000)))
	assert.True(t, accountBalance(t, ledger, "2222222222").Equal(decimal.NewFromInt(2000)))

	transactions := ledger.ListTransactions()
	require.Len(t, transactions, 1)
	assert.Equal(t, domain.TransactionFailed, transactions[0].Status())
}

func TestReverse(t *testing.T) {
	transfer, ledger := newTestTransfer(t, &memStore{})
	ctx := context.Background()

	txn, err := transfer.Transfer(ctx, TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	reversal, err := transfer.Reverse(ctx, txn.ID(), "disputed")
	require.NoError(t, err)

	assert.Equal(t, domain.TransactionReversed, txn.Status())
	assert.Equal(t, domain.TransactionCompleted, reversal.Status())
	assert.Equal(t, txn.ID(), reversal.Metadata()[domain.MetaOriginalTransaction])

	// Funds are back where they started.
	assert.True(t, accountBalance(t, ledger, "1111111111").Equal(decimal.NewFromInt(5000)))
	assert.True(t, accountBalance(t, ledger, "2222222222").Equal(decimal.NewFromInt(2000)))

	assert.Len(t, ledger.ListTransactions(), 2)
}

func TestReverseUnknownTransaction(t *testing.T) {
	transfer, _ := newTestTransfer(t, &memStore{})

	_, err := transfer.Reverse(context.Background(), "missing", "why not")
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestReverseTwice(t *testing.T) {
	transfer, _ := newTestTransfer(t, &memStore{})
	ctx := context.Background()

	txn, err := transfer.Transfer(ctx, TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	_, err = transfer.Reverse(ctx, txn.ID(), "first")
	require.NoError(t, err)

	_, err = transfer.Reverse(ctx, txn.ID(), "second")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelCompletedTransfer(t *testing.T) {
	transfer, _ := newTestTransfer(t, &memStore{})
	ctx := context.Background()

	txn, err := transfer.Transfer(ctx, TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, transfer.Cancel(ctx, txn.ID(), "too late"), domain.ErrInvalidState)
	assert.ErrorIs(t, transfer.Cancel(ctx, "missing", "x"), domain.ErrTransactionNotFound)
}

func TestTransferList(t *testing.T) {
	transfer, _ := newTestTransfer(t, &memStore{})
	ctx := context.Background()

	_, err := transfer.Transfer(ctx, TransferInput{
		FromAccount: "1111111111",
		ToAccount:   "2222222222",
		Amount:      decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	_, err = transfer.Transfer(ctx, TransferInput{
		FromAccount: "2222222222",
		ToAccount:   "1111111111",
		Amount:      decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	list := transfer.List()
	require.Len(t, list, 2)
	assert.True(t, list[0].Amount().Equal(decimal.NewFromInt(10)))
	assert.True(t, list[1].Amount().Equal(decimal.NewFromInt(20)))
}
