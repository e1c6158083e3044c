package protocol

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

func TestParseScheme(t *testing.T) {
	tests := []struct {
		tag     string
		want    Scheme
		wantErr bool
	}{
		{tag: "exact", want: SchemeExact},
		{tag: "upto", want: SchemeUpto},
		{tag: "deferred", want: SchemeDeferred},
		{tag: "EXACT", wantErr: true},
		{tag: "prepaid", wantErr: true},
		{tag: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := ParseScheme(tt.tag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.TypeInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchemes(t *testing.T) {
	all := Schemes()
	assert.Len(t, all, 3)
	for _, s := range all {
		assert.NoError(t, s.Validate())
	}
}

func TestActualCost(t *testing.T) {
	tests := []struct {
		name        string
		scheme      Scheme
		baseCost    string
		ratePer1000 string
		usageUnits  int64
		want        string
	}{
		{name: "exact ignores usage", scheme: SchemeExact, baseCost: "15.0", ratePer1000: "0.02", usageUnits: 5000, want: "15"},
		{name: "deferred ignores usage", scheme: SchemeDeferred, baseCost: "5.0", ratePer1000: "0.02", usageUnits: 5000, want: "5"},
		{name: "upto zero usage", scheme: SchemeUpto, baseCost: "3.0", ratePer1000: "0.02", usageUnits: 0, want: "3"},
		{name: "upto metered", scheme: SchemeUpto, baseCost: "3.0", ratePer1000: "0.02", usageUnits: 2000, want: "3.04"},
		{name: "upto fractional block", scheme: SchemeUpto, baseCost: "3.0", ratePer1000: "0.02", usageUnits: 500, want: "3.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := decimal.NewFromString(tt.baseCost)
			require.NoError(t, err)
			rate, err := decimal.NewFromString(tt.ratePer1000)
			require.NoError(t, err)
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)

			got, err := tt.scheme.ActualCost(base, rate, tt.usageUnits)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestActualCostUnknownScheme(t *testing.T) {
	_, err := Scheme("prepaid").ActualCost(decimal.NewFromInt(1), decimal.Zero, 0)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}
