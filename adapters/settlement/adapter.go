// Package settlement provides the external-ledger boundary for the
// payment protocol. The payment client moves value and queries balances
// exclusively through the Adapter interface; a simulated backend and a
// live settlement-gateway backend satisfy the same contract.
package settlement

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Mode selects a settlement backend. The mode is an explicit
// configuration choice made by the caller, never inferred from which
// adapter value happens to be present.
type Mode string

const (
	// ModeSimulated settles against an in-memory ledger
	ModeSimulated Mode = "simulated"

	// ModeLive settles through a settlement gateway backed by the chain
	ModeLive Mode = "live"
)

// ParseMode parses a configuration string into a Mode
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSimulated, ModeLive:
		return Mode(s), nil
	default:
		return "", errors.Newf(errors.TypeConfig, "unknown settlement mode: %q", s)
	}
}

// Receipt reports the confirmation state of a settled transfer
type Receipt struct {
	// BlockNumber is the block that included the transfer
	BlockNumber uint64 `json:"block_number"`

	// GasUsed is the gas consumed by the transfer
	GasUsed uint64 `json:"gas_used"`

	// Confirmed is true once the transfer is final
	Confirmed bool `json:"confirmed"`
}

// Balance reports an address's native and token holdings in display units
type Balance struct {
	// Address is the queried address
	Address string `json:"address"`

	// Native is the gas-token balance
	Native decimal.Decimal `json:"native_balance"`

	// Token is the payment-token balance
	Token decimal.Decimal `json:"token_balance"`
}

// Adapter is the settlement boundary consumed by the payment client.
//
// Implementations must be safe for concurrent use. Transfer amounts are
// integer ledger units.
type Adapter interface {
	// Transfer moves amount ledger units of the payment token to
	// toAddress and returns a settlement reference (transaction hash).
	// Any transport or contract failure is a settlement error.
	Transfer(ctx context.Context, toAddress string, amount *big.Int) (string, error)

	// WaitForConfirmation blocks until the referenced transfer is
	// confirmed, the timeout elapses, or ctx is canceled. Polling backs
	// off exponentially between attempts. An elapsed timeout is a
	// settlement timeout error.
	WaitForConfirmation(ctx context.Context, reference string, timeout time.Duration) (*Receipt, error)

	// GetBalance returns the native and token balances of an address
	GetBalance(ctx context.Context, address string) (*Balance, error)
}

// pollWait sleeps for the current backoff interval or returns early
// when ctx is done. It returns the next interval, doubled up to max.
func pollWait(ctx context.Context, interval, max time.Duration) (time.Duration, error) {
	t := time.NewTimer(interval)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
		return interval, ctx.Err()
	}

	next := interval * 2
	if next > max {
		next = max
	}
	return next, nil
}
