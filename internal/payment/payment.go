// Package payment derives the monthly cost of a lease from its deposit,
// rent and maintenance terms.
package payment

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// ErrOverflow is returned when the total does not fit in an int64.
var ErrOverflow = errors.New("total monthly payment overflows int64")

var maxTotal = decimal.NewFromInt(math.MaxInt64)

// monthsPercent turns an annual percentage into a monthly fraction: /12/100.
var monthsPercent = decimal.NewFromInt(12 * 100)

// divisionPrecision is the number of fractional digits kept before the
// single final rounding step.
const divisionPrecision = 24

// Terms are the financial fields of a listing that feed the total.
type Terms struct {
	JeonseDepositAmount    int64
	WolseDepositAmount     int64
	AnnualInterestRate     float64 // percent per year, 3.5 means 3.5%
	WolseMonthlyPayment    int64
	GwanlibiMonthlyPayment int64
}

// MonthlyInterest returns the monthly opportunity cost of the combined
// deposits at the given annual rate, rounded half to even. Callers must keep
// the result within int64; see Checked.
func MonthlyInterest(jeonseDeposit, wolseDeposit int64, annualRatePercent float64) int64 {
	return monthlyInterest(jeonseDeposit, wolseDeposit, annualRatePercent).IntPart()
}

func monthlyInterest(jeonseDeposit, wolseDeposit int64, annualRatePercent float64) decimal.Decimal {
	if annualRatePercent == 0 {
		return decimal.Zero
	}
	deposits := decimal.NewFromInt(jeonseDeposit).Add(decimal.NewFromInt(wolseDeposit))
	rate := decimal.NewFromFloat(annualRatePercent)
	return deposits.Mul(rate).DivRound(monthsPercent, divisionPrecision).RoundBank(0)
}

// Total returns the total monthly payment for the given terms.
func Total(t Terms) int64 {
	interest := MonthlyInterest(t.JeonseDepositAmount, t.WolseDepositAmount, t.AnnualInterestRate)
	return interest + t.WolseMonthlyPayment + t.GwanlibiMonthlyPayment
}

// Checked is Total computed without wrapping. It returns ErrOverflow when
// the exact result exceeds math.MaxInt64.
func Checked(t Terms) (int64, error) {
	total := monthlyInterest(t.JeonseDepositAmount, t.WolseDepositAmount, t.AnnualInterestRate).
		Add(decimal.NewFromInt(t.WolseMonthlyPayment)).
		Add(decimal.NewFromInt(t.GwanlibiMonthlyPayment))
	if total.GreaterThan(maxTotal) {
		return 0, ErrOverflow
	}
	return total.IntPart(), nil
}
