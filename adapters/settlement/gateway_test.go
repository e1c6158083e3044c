package settlement

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

func TestGatewayTransfer(t *testing.T) {
	var got transferRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transfer", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(transferResponse{TxHash: "0xabc123"})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	ref, err := g.Transfer(context.Background(), "0xProvider1", big.NewInt(1000))
	require.NoError(t, err)

	assert.Equal(t, "0xabc123", ref)
	assert.Equal(t, "0xProvider1", got.To)
	assert.Equal(t, "1000", got.Amount)
	assert.Equal(t, "0xToken", got.Token)
}

func TestGatewayTransferRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(transferResponse{Error: "insufficient funds"})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	_, err := g.Transfer(context.Background(), "0xProvider1", big.NewInt(1000))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSettlement))
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestGatewayWaitForConfirmation(t *testing.T) {
	// unconfirmed on the first poll, confirmed on the second
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/receipt/0xabc123", r.URL.Path)
		n := atomic.AddInt32(&calls, 1)
		json.NewEncoder(w).Encode(receiptResponse{
			TxHash:      "0xabc123",
			BlockNumber: 77,
			GasUsed:     21000,
			Confirmed:   n > 1,
		})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	receipt, err := g.WaitForConfirmation(context.Background(), "0xabc123", 10*time.Second)
	require.NoError(t, err)

	assert.True(t, receipt.Confirmed)
	assert.Equal(t, uint64(77), receipt.BlockNumber)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(2))
}

func TestGatewayWaitForConfirmationTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// receipt never appears; gateway keeps answering 404
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	_, err := g.WaitForConfirmation(context.Background(), "0xabc123", 300*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSettlementTimeout))
}

func TestGatewayGetBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/balance/0xProvider1", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{
			Address: "0xProvider1",
			Native:  "0.5",
			Token:   "23.04",
		})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	bal, err := g.GetBalance(context.Background(), "0xProvider1")
	require.NoError(t, err)

	assert.Equal(t, "0xProvider1", bal.Address)
	assert.Equal(t, "0.5", bal.Native.String())
	assert.Equal(t, "23.04", bal.Token.String())
}

func TestGatewayGetBalanceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL, "0xToken")
	_, err := g.GetBalance(context.Background(), "0xProvider1")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeSettlement))
}
