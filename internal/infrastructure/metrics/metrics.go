package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Account metrics
	AccountsOpened    prometheus.Counter
	AccountOperations *prometheus.CounterVec
	AccountBalance    *prometheus.GaugeVec

	// Ledger metrics
	Deposits      prometheus.Counter
	Withdrawals   prometheus.Counter
	OverdraftFees prometheus.Counter
	DepositAmount prometheus.Histogram

	// Transfer metrics
	TransfersCreated  prometheus.Counter
	TransfersReversed prometheus.Counter
	TransferErrors    *prometheus.CounterVec

	// Snapshot metrics
	SnapshotSaves  prometheus.Counter
	SnapshotErrors prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AccountsOpened: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_accounts_opened_total",
			Help: "Total number of accounts opened",
		}),
		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_account_operations_total",
				Help: "Total number of account operations by type",
			},
			[]string{"operation"},
		),
		AccountBalance: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bankledger_account_balance",
				Help: "Current account balance",
			},
			[]string{"account_number"},
		),

		Deposits: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_deposits_total",
			Help: "Total number of deposits",
		}),
		Withdrawals: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_withdrawals_total",
			Help: "Total number of withdrawals",
		}),
		OverdraftFees: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_overdraft_fees_total",
			Help: "Total number of overdraft fees charged",
		}),
		DepositAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "bankledger_deposit_amount",
			Help:    "Deposit amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_transfers_created_total",
			Help: "Total number of transfers created",
		}),
		TransfersReversed: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_transfers_reversed_total",
			Help: "Total number of transfers reversed",
		}),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bankledger_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		SnapshotSaves: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_snapshot_saves_total",
			Help: "Total number of snapshot saves",
		}),
		SnapshotErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "bankledger_snapshot_errors_total",
			Help: "Total number of failed snapshot saves",
		}),
	}
}
