package currency

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLedgerUnits(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "whole amount", amount: "3", want: "3000000000000000000"},
		{name: "two fractional digits", amount: "3.04", want: "3040000000000000000"},
		{name: "sub-unit amount", amount: "0.003", want: "3000000000000000"},
		{name: "above int64 range", amount: "15", want: "15000000000000000000"},
		{name: "zero", amount: "0", want: "0"},
		{name: "full 18 digits", amount: "0.000000000000000001", want: "1"},
		{name: "truncates 19th digit", amount: "1.0000000000000000019", want: "1000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)

			want, ok := new(big.Int).SetString(tt.want, 10)
			require.True(t, ok)

			got := ToLedgerUnits(amount)
			assert.Zero(t, got.Cmp(want), "got %s, want %s", got, want)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// Exact round trip for any input with at most 18 fractional digits.
	for _, s := range []string{"3", "3.04", "0.003", "15", "23.04", "0.000000000000000001", "123456789.123456789123456789"} {
		amount, err := decimal.NewFromString(s)
		require.NoError(t, err)

		back := ToDecimal(ToLedgerUnits(amount))
		assert.True(t, back.Equal(amount), "round trip of %s gave %s", amount, back)
	}
}

func TestToDecimalNil(t *testing.T) {
	assert.True(t, ToDecimal(nil).IsZero())
}
