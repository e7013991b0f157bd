package currency_test

import (
	"testing"

	"procurement/internal/currency"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToIDR_IDRPassesThrough(t *testing.T) {
	rates := currency.NewStaticRates()
	amount := decimal.RequireFromString("1234.56")

	assert.True(t, amount.Equal(currency.ConvertToIDR(rates, amount, "IDR")))
	assert.True(t, amount.Equal(currency.ConvertToIDR(rates, amount, "")))
}

func TestConvertToIDR_MultipliesByRate(t *testing.T) {
	rates := currency.NewStaticRates()

	got := currency.ConvertToIDR(rates, decimal.NewFromInt(10), "usd")

	assert.Equal(t, "157500", got.String())
}

func TestRate_UnknownCodeFallsBackToOne(t *testing.T) {
	// GIVEN: a code missing from the table
	// WHEN: converting an amount
	// THEN: the amount is unchanged and no error is raised
	rates := currency.NewStaticRates()

	assert.Equal(t, "1", rates.Rate("XYZ").String())
	assert.Equal(t, "42", currency.ConvertToIDR(rates, decimal.NewFromInt(42), "XYZ").String())
}

func TestWithOverrides_DoesNotMutateBase(t *testing.T) {
	base := currency.NewStaticRates()
	custom := base.WithOverrides(map[string]decimal.Decimal{"usd": decimal.NewFromInt(16000)})

	assert.Equal(t, "16000", custom.Rate("USD").String())
	assert.Equal(t, "15750", base.Rate("USD").String())
}

func TestParseOverrides(t *testing.T) {
	got, err := currency.ParseOverrides(" usd=16000 , EUR=17500.5,")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "16000", got["USD"].String())
	assert.Equal(t, "17500.5", got["EUR"].String())

	_, err = currency.ParseOverrides("USD")
	assert.Error(t, err)

	_, err = currency.ParseOverrides("USD=-1")
	assert.Error(t, err)
}
