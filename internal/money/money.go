// Package money rounds and formats single-currency amounts.
package money

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Round rounds amount to whole units, half to even.
func Round(amount float64) float64 {
	return decimal.NewFromFloat(amount).RoundBank(0).InexactFloat64()
}

// PerPerson divides total by party and returns the exact share.
func PerPerson(total float64, party int) float64 {
	if party <= 0 {
		return total
	}
	return decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(party))).InexactFloat64()
}

// Times multiplies a per-person amount by a party size.
func Times(amount float64, n int) float64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(int64(n))).InexactFloat64()
}

// Sum adds amounts without accumulating binary rounding error.
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}

// Whole formats amount rounded to whole units with thousands separators.
func Whole(amount float64) string {
	return humanize.Comma(decimal.NewFromFloat(amount).RoundBank(0).IntPart())
}

// Format renders amount as "AUD $2,800". Negative amounts keep their sign
// in front of the currency.
func Format(currency string, amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-%s $%s", currency, Whole(-amount))
	}
	return fmt.Sprintf("%s $%s", currency, Whole(amount))
}

// Points renders a points quantity with thousands separators.
func Points(n int) string {
	return humanize.Comma(int64(n))
}
