package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	filerepo "github.com/iho/bankledger/internal/adapter/repository/file"
	redisrepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/adapter/repository/retry"
	"github.com/iho/bankledger/internal/fincalc"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/ids"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	redisinfra "github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

// app wires the ledger against the configured snapshot store. State is
// restored before every command and saved after every mutation.
type app struct {
	ledger   *usecase.LedgerUseCase
	transfer *usecase.TransferUseCase
	close    func()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	m := metrics.New(prometheus.NewRegistry())

	var store usecase.SnapshotStore
	closeFn := func() {}

	if cfg.RedisURL != "" {
		client, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		store = redisrepo.NewSnapshotStore(client, cfg.SnapshotKey)
		closeFn = func() { _ = client.Close() }
	} else {
		store = filerepo.NewSnapshotStore(cfg.SnapshotPath)
	}

	clock := ids.NewSystemClock()
	idGen := ids.NewULIDGenerator()

	ledger := usecase.NewLedgerUseCase(
		store,
		retry.NewRetrier(log),
		clock,
		idGen,
		cfg.InterestSettings(),
		cfg.FeeSettings(),
		log,
		m,
	)

	if err := ledger.Restore(ctx); err != nil {
		closeFn()
		return nil, fmt.Errorf("failed to restore ledger state: %w", err)
	}

	transfer := usecase.NewTransferUseCase(ledger, clock, idGen, cfg.MaxAmount(), log, m)

	return &app{ledger: ledger, transfer: transfer, close: closeFn}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "bankledger",
		Short:         "In-memory banking ledger with snapshot persistence",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(accountCmd(), transferCmd(), loanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "open <number> <owner> [initial-balance]",
			Short: "Open a new account",
			Args:  cobra.RangeArgs(2, 3),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				initial := decimal.Zero
				if len(args) == 3 {
					var err error
					initial, err = parseAmount(args[2])
					if err != nil {
						return err
					}
				}

				account, err := a.ledger.OpenAccount(ctx, usecase.OpenAccountInput{
					Number:         args[0],
					Owner:          args[1],
					InitialBalance: initial,
				})
				if err != nil {
					return err
				}

				fmt.Printf("Opened account %s for %s, balance %s\n",
					account.Number(), account.Owner(), account.Balance())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "deposit <number> <amount> [description]",
			Short: "Deposit into an account",
			Args:  cobra.RangeArgs(2, 3),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}

				result, err := a.ledger.Deposit(ctx, usecase.DepositInput{
					Number:      args[0],
					Amount:      amount,
					Description: optionalArg(args, 2),
				})
				if err != nil {
					return err
				}

				fmt.Printf("Deposited %s, new balance %s\n", amount, result.NewBalance)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "withdraw <number> <amount> [description]",
			Short: "Withdraw from an account",
			Args:  cobra.RangeArgs(2, 3),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}

				result, err := a.ledger.Withdraw(ctx, usecase.WithdrawInput{
					Number:      args[0],
					Amount:      amount,
					Description: optionalArg(args, 2),
				})
				if err != nil {
					return err
				}

				fmt.Printf("Withdrew %s, new balance %s\n", amount, result.NewBalance)
				if result.FeeEntry != nil {
					fmt.Printf("Overdraft fee charged: %s\n", result.FeeEntry.Amount.Abs())
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "freeze <number> <reason>",
			Short: "Freeze an account",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.ledger.Freeze(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "unfreeze <number> <reason>",
			Short: "Unfreeze an account",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.ledger.Unfreeze(ctx, args[0], args[1])
			}),
		},
		&cobra.Command{
			Use:   "close <number> <reason>",
			Short: "Close an account (requires zero balance)",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				return a.ledger.Close(ctx, args[0], args[1])
			}),
		},
		statementCmd(),
		interestCmd(),
		&cobra.Command{
			Use:   "list",
			Short: "List all accounts",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				for _, account := range a.ledger.ListAccounts() {
					fmt.Printf("%s  %-24s %-8s %s\n",
						account.Number(), account.Owner(), account.Status(), account.Balance())
				}
				return nil
			}),
		},
	)

	return cmd
}

func statementCmd() *cobra.Command {
	var fromStr, toStr string

	cmd := &cobra.Command{
		Use:   "statement <number>",
		Short: "Print an account statement",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			from, err := parseDate(fromStr)
			if err != nil {
				return err
			}
			to, err := parseDate(toStr)
			if err != nil {
				return err
			}

			stmt, err := a.ledger.Statement(args[0], from, to)
			if err != nil {
				return err
			}

			fmt.Printf("Account %s (%s): %s, balance %s, rate %.2f%%\n",
				stmt.AccountNumber, stmt.Owner, stmt.Status, stmt.CurrentBalance, stmt.InterestRate*100)
			for _, e := range stmt.Entries {
				fmt.Printf("  %s  %-10s %12s  %12s  %s\n",
					e.Timestamp.Format(time.RFC3339), e.Type, e.Amount, e.BalanceAfter, e.Description)
			}
			s := stmt.Statistics
			fmt.Printf("Deposits %s (largest %s), withdrawals %s (largest %s), fees %s, avg %s\n",
				s.TotalDeposits, s.LargestDeposit, s.TotalWithdrawals, s.LargestWithdrawal,
				s.TotalFees, s.AverageTransaction.Round(2))
			return nil
		}),
	}

	cmd.Flags().StringVar(&fromStr, "from", "", "start date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&toStr, "to", "", "end date (YYYY-MM-DD, inclusive)")

	return cmd
}

func interestCmd() *cobra.Command {
	var frequency int

	cmd := &cobra.Command{
		Use:   "interest <number> <rate> <years>",
		Short: "Project compound interest on the current balance",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			rate, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[1], err)
			}
			years, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid years %q: %w", args[2], err)
			}

			proj, err := a.ledger.ProjectInterest(args[0], rate, years, frequency)
			if err != nil {
				return err
			}

			fmt.Printf("Balance %s at %.3f%% over %g years (compounded %dx/year): final %s, interest earned %s\n",
				proj.InitialBalance, proj.EffectiveRate*100, proj.Years, proj.Frequency,
				proj.FinalAmount, proj.InterestEarned)
			return nil
		}),
	}

	cmd.Flags().IntVar(&frequency, "frequency", 12, "compounding frequency per year")

	return cmd
}

func transferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer operations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "create <from> <to> <amount> [description]",
			Short: "Transfer funds between two accounts",
			Args:  cobra.RangeArgs(3, 4),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				amount, err := parseAmount(args[2])
				if err != nil {
					return err
				}

				txn, err := a.transfer.Transfer(ctx, usecase.TransferInput{
					FromAccount: args[0],
					ToAccount:   args[1],
					Amount:      amount,
					Description: optionalArg(args, 3),
				})
				if err != nil {
					return err
				}

				fmt.Printf("Transfer %s completed: %s -> %s, amount %s\n",
					txn.ID(), txn.FromAccount(), txn.ToAccount(), txn.Amount())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "reverse <transaction-id> <reason>",
			Short: "Reverse a completed transfer",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				txn, err := a.transfer.Reverse(ctx, args[0], args[1])
				if err != nil {
					return err
				}

				fmt.Printf("Reversal %s completed: %s -> %s, amount %s\n",
					txn.ID(), txn.FromAccount(), txn.ToAccount(), txn.Amount())
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List all transactions",
			Args:  cobra.NoArgs,
			RunE: withApp(func(ctx context.Context, a *app, args []string) error {
				for _, txn := range a.transfer.List() {
					fmt.Printf("%s  %-9s %-10s %12s  %s -> %s\n",
						txn.ID(), txn.Status(), txn.Type(), txn.Amount(),
						txn.FromAccount(), txn.ToAccount())
				}
				return nil
			}),
		},
	)

	return cmd
}

func loanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan calculations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "payment <principal> <annual-rate> <years>",
			Short: "Monthly payment for a fixed-rate loan",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				principal, rate, years, err := parseLoanArgs(args)
				if err != nil {
					return err
				}

				fmt.Printf("Monthly payment: %s\n", fincalc.MonthlyPayment(principal, rate, years))
				return nil
			},
		},
		&cobra.Command{
			Use:   "schedule <principal> <annual-rate> <years>",
			Short: "Full amortization schedule",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				principal, rate, years, err := parseLoanArgs(args)
				if err != nil {
					return err
				}

				fmt.Println("  #     payment    principal     interest      balance")
				for _, row := range fincalc.AmortizationSchedule(principal, rate, years) {
					fmt.Printf("%3d  %10s  %11s  %11s  %11s\n",
						row.Period, row.Payment, row.Principal, row.Interest, row.Balance)
				}
				return nil
			},
		},
	)

	return cmd
}

// withApp builds the app for a command run and tears it down afterwards.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return fn(ctx, a, args)
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}

func parseLoanArgs(args []string) (decimal.Decimal, float64, int, error) {
	principal, err := parseAmount(args[0])
	if err != nil {
		return decimal.Zero, 0, 0, err
	}

	rate, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return decimal.Zero, 0, 0, fmt.Errorf("invalid rate %q: %w", args[1], err)
	}

	years, err := strconv.Atoi(args[2])
	if err != nil {
		return decimal.Zero, 0, 0, fmt.Errorf("invalid years %q: %w", args[2], err)
	}

	return principal, rate, years, nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
