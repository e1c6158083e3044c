// Package currency converts between display-unit token amounts and
// integer ledger units.
//
// The settlement token (JPYC) carries 18 decimals on chain, so one
// display unit equals 10^18 ledger units. All wire amounts are integer
// ledger units; decimals exist only at the edges for configuration and
// reporting.
package currency

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the number of fractional digits the token supports
const TokenDecimals = 18

// Symbol is the display symbol of the settlement token
const Symbol = "JPYC"

// scale is 10^18, the number of ledger units per display unit
var scale = decimal.New(1, TokenDecimals)

// ToLedgerUnits converts a display amount to integer ledger units.
//
// The conversion truncates toward zero rather than rounding; an input
// with more than 18 fractional digits loses the excess. Inputs with at
// most 18 fractional digits convert exactly.
func ToLedgerUnits(amount decimal.Decimal) *big.Int {
	return amount.Mul(scale).Truncate(0).BigInt()
}

// ToDecimal converts integer ledger units back to a display amount.
// Exact for every value ToLedgerUnits can produce.
func ToDecimal(units *big.Int) decimal.Decimal {
	if units == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(units, -TokenDecimals)
}
