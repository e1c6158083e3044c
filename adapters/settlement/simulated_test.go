package settlement

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "simulated", want: ModeSimulated},
		{in: "live", want: ModeLive},
		{in: "mainnet", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimulatedTransferAndBalance(t *testing.T) {
	sim := NewSimulated()
	ctx := context.Background()

	amount := new(big.Int)
	amount.SetString("3040000000000000000", 10) // 3.04 in ledger units

	ref, err := sim.Transfer(ctx, "0xProvider1", amount)
	require.NoError(t, err)
	assert.NotEmpty(t, ref)

	bal, err := sim.GetBalance(ctx, "0xProvider1")
	require.NoError(t, err)
	assert.Equal(t, "0xProvider1", bal.Address)
	assert.True(t, bal.Token.Equal(decimal.RequireFromString("3.04")), "token balance %s", bal.Token)

	// second transfer accumulates
	_, err = sim.Transfer(ctx, "0xProvider1", amount)
	require.NoError(t, err)
	bal, err = sim.GetBalance(ctx, "0xProvider1")
	require.NoError(t, err)
	assert.True(t, bal.Token.Equal(decimal.RequireFromString("6.08")))
}

func TestSimulatedTransferInvalidAmount(t *testing.T) {
	sim := NewSimulated()

	_, err := sim.Transfer(context.Background(), "0xProvider1", nil)
	require.Error(t, err)

	_, err = sim.Transfer(context.Background(), "0xProvider1", big.NewInt(-1))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSettlement))
}

func TestSimulatedCredit(t *testing.T) {
	sim := NewSimulated()

	sim.Credit("0xStore", decimal.RequireFromString("1000"))
	bal, err := sim.GetBalance(context.Background(), "0xStore")
	require.NoError(t, err)
	assert.True(t, bal.Token.Equal(decimal.RequireFromString("1000")))

	bal, err = sim.GetBalance(context.Background(), "0xNobody")
	require.NoError(t, err)
	assert.True(t, bal.Token.IsZero())
}

func TestSimulatedWaitForConfirmation(t *testing.T) {
	sim := NewSimulated(WithConfirmDelay(30 * time.Millisecond))
	ctx := context.Background()

	ref, err := sim.Transfer(ctx, "0xProvider1", big.NewInt(100))
	require.NoError(t, err)

	receipt, err := sim.WaitForConfirmation(ctx, ref, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, receipt.Confirmed)
	assert.NotZero(t, receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
}

func TestSimulatedWaitForConfirmationTimeout(t *testing.T) {
	sim := NewSimulated(WithConfirmDelay(5 * time.Second))
	ctx := context.Background()

	ref, err := sim.Transfer(ctx, "0xProvider1", big.NewInt(100))
	require.NoError(t, err)

	_, err = sim.WaitForConfirmation(ctx, ref, 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSettlementTimeout))
}

func TestSimulatedWaitForConfirmationUnknownReference(t *testing.T) {
	sim := NewSimulated()

	_, err := sim.WaitForConfirmation(context.Background(), "0xsimdeadbeef", time.Second)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestSimulatedTransferCancelledContext(t *testing.T) {
	sim := NewSimulated()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Transfer(ctx, "0xProvider1", big.NewInt(1))
	require.ErrorIs(t, err, context.Canceled)
}
