package currency

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// IDR is the settlement currency. Every *_idr ledger column is denominated in it.
const IDR = "IDR"

// RateTable maps a currency code to the number of IDR one unit buys.
type RateTable interface {
	Rate(code string) decimal.Decimal
}

// StaticRates is a fixed lookup table. Unknown codes resolve to 1.
type StaticRates map[string]decimal.Decimal

var defaultRates = map[string]int64{
	"IDR": 1,
	"USD": 15750,
	"EUR": 17000,
	"SGD": 11700,
	"JPY": 105,
	"CNY": 2170,
	"MYR": 3350,
	"AUD": 10300,
	"GBP": 19900,
}

// NewStaticRates returns the built-in table.
func NewStaticRates() StaticRates {
	rates := make(StaticRates, len(defaultRates))
	for code, r := range defaultRates {
		rates[code] = decimal.NewFromInt(r)
	}
	return rates
}

// WithOverrides returns a copy of the table with the given codes replaced.
func (s StaticRates) WithOverrides(overrides map[string]decimal.Decimal) StaticRates {
	out := make(StaticRates, len(s)+len(overrides))
	for code, r := range s {
		out[code] = r
	}
	for code, r := range overrides {
		out[Normalize(code)] = r
	}
	return out
}

func (s StaticRates) Rate(code string) decimal.Decimal {
	if r, ok := s[Normalize(code)]; ok {
		return r
	}
	return decimal.NewFromInt(1)
}

// Normalize upper-cases and trims a currency code; empty means IDR.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return IDR
	}
	return code
}

// ConvertToIDR expresses amount in IDR. IDR amounts pass through untouched.
func ConvertToIDR(rates RateTable, amount decimal.Decimal, code string) decimal.Decimal {
	if Normalize(code) == IDR {
		return amount
	}
	return amount.Mul(rates.Rate(code)).Round(2)
}

// ParseOverrides reads "USD=16000,EUR=17500" into a rate map.
func ParseOverrides(raw string) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid currency rate %q: expected CODE=rate", pair)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid currency rate %q: %w", pair, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("invalid currency rate %q: must be positive", pair)
		}
		out[Normalize(code)] = rate
	}
	return out, nil
}
