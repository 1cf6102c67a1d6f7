// Package fincalc implements the closed-form financial formulas used by the
// ledger: compound interest, fixed loan payments and amortization schedules.
// Inputs are assumed validated by the caller; rate math runs in float64 and
// monetary results are rounded to 2 decimal places.
package fincalc

import (
	"math"

	"github.com/shopspring/decimal"
)

// CompoundInterest computes A = P(1 + r/n)^(nt) for principal P, annual rate
// r, t years, compounded n times per year. Returns the final amount and the
// interest earned, both rounded to 2 places.
func CompoundInterest(principal decimal.Decimal, rate, years float64, frequency int) (finalAmount, interestEarned decimal.Decimal) {
	p := principal.InexactFloat64()

	final := p * math.Pow(1+rate/float64(frequency), float64(frequency)*years)

	finalAmount = decimal.NewFromFloat(final).Round(2)
	interestEarned = decimal.NewFromFloat(final - p).Round(2)
	return finalAmount, interestEarned
}

// MonthlyPayment computes the fixed payment of an amortizing loan:
// P * r * (1+r)^n / ((1+r)^n - 1) with r the monthly rate and n the number of
// monthly payments. Zero-rate loans are special-cased to principal/n instead
// of propagating a division by zero.
func MonthlyPayment(principal decimal.Decimal, annualRate float64, years int) decimal.Decimal {
	n := years * 12
	if n <= 0 {
		return decimal.Zero
	}

	if annualRate == 0 {
		return principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	}

	monthlyRate := annualRate / 12
	factor := math.Pow(1+monthlyRate, float64(n))
	payment := principal.InexactFloat64() * monthlyRate * factor / (factor - 1)

	return decimal.NewFromFloat(payment).Round(2)
}

// ScheduleRow is one period of an amortization schedule.
type ScheduleRow struct {
	Period    int             `json:"period"`
	Payment   decimal.Decimal `json:"payment"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
}

// AmortizationSchedule produces the per-month breakdown of a fixed-payment
// loan. Interest per period is the running balance times the monthly rate;
// the remaining balance is floored at zero. Deterministic given its inputs.
func AmortizationSchedule(principal decimal.Decimal, annualRate float64, years int) []ScheduleRow {
	n := years * 12
	if n <= 0 {
		return nil
	}

	monthlyRate := decimal.NewFromFloat(annualRate).Div(decimal.NewFromInt(12))
	payment := MonthlyPayment(principal, annualRate, years)

	balance := principal
	schedule := make([]ScheduleRow, 0, n)

	for i := 1; i <= n; i++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principalPart := payment.Sub(interest)

		balance = balance.Sub(principalPart)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		schedule = append(schedule, ScheduleRow{
			Period:    i,
			Payment:   payment,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}

	return schedule
}
