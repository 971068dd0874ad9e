// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// Money holds an amount in minor currency units (pence for GBP).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

const DefaultCurrency = "GBP"

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// GBP builds a Money value from pence.
func GBP(pence int64) Money {
	return Money{Amount: pence, Currency: DefaultCurrency}
}

// FromPounds converts a major-unit amount (e.g. 62.50) to Money,
// rounding half up to the nearest minor unit.
func FromPounds(v float64) Money {
	return GBP(int64(math.Floor(v*100 + 0.5)))
}

// Pounds returns the amount in major units.
func (m Money) Pounds() float64 {
	return float64(m.Amount) / 100
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.currencyOr(o.Currency)}
}

// MulFloat scales the amount by f, rounding half up to the nearest minor unit.
func (m Money) MulFloat(f float64) Money {
	return Money{Amount: int64(math.Floor(float64(m.Amount)*f + 0.5)), Currency: m.Currency}
}

// String formats the amount with its currency symbol, e.g. "£122.50".
func (m Money) String() string {
	sym, ok := currencySymbols[m.currencyOr(DefaultCurrency)]
	if !ok {
		sym = m.Currency
	}
	return fmt.Sprintf("%s%.2f", sym, m.Pounds())
}

func (m Money) currencyOr(def string) string {
	if m.Currency != "" {
		return m.Currency
	}
	return def
}
