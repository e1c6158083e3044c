package protocol

import (
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTx(id string, status Status, amount int64, scheme Scheme) *Transaction {
	return &Transaction{
		ID:        id,
		RequestID: "req-" + id,
		Scheme:    scheme,
		Amount:    big.NewInt(amount),
		Status:    status,
		CreatedAt: time.Now(),
	}
}

func TestLedgerAppendAndGet(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, 0, l.Len())

	tx := newTestTx("tx-1", StatusCompleted, 100, SchemeExact)
	l.Append(tx)

	got := l.Get("tx-1")
	require.NotNil(t, got)
	assert.Equal(t, "tx-1", got.ID)
	assert.Nil(t, l.Get("tx-2"))
	assert.Equal(t, 1, l.Len())

	// returned copies do not alias ledger state
	got.Status = StatusRefunded
	assert.Equal(t, StatusCompleted, l.Get("tx-1").Status)
}

func TestLedgerGetByRequest(t *testing.T) {
	l := NewLedger()
	l.Append(newTestTx("tx-1", StatusCompleted, 100, SchemeExact))
	l.Append(newTestTx("tx-2", StatusFailed, 200, SchemeUpto))

	got := l.GetByRequest("req-tx-2")
	require.NotNil(t, got)
	assert.Equal(t, "tx-2", got.ID)
	assert.Nil(t, l.GetByRequest("req-tx-9"))
}

func TestLedgerAllPreservesOrder(t *testing.T) {
	l := NewLedger()
	for i := 0; i < 5; i++ {
		l.Append(newTestTx(fmt.Sprintf("tx-%d", i), StatusCompleted, int64(i), SchemeExact))
	}

	all := l.All()
	require.Len(t, all, 5)
	for i, tx := range all {
		assert.Equal(t, fmt.Sprintf("tx-%d", i), tx.ID)
	}
}

func TestLedgerTotalSpentCountsOnlyCompleted(t *testing.T) {
	l := NewLedger()
	l.Append(newTestTx("tx-1", StatusCompleted, 300, SchemeUpto))
	l.Append(newTestTx("tx-2", StatusFailed, 500, SchemeExact))
	l.Append(newTestTx("tx-3", StatusPending, 700, SchemeExact))
	l.Append(newTestTx("tx-4", StatusCompleted, 400, SchemeDeferred))

	assert.Equal(t, "700", l.TotalSpent().String())
}

func TestLedgerSummarize(t *testing.T) {
	l := NewLedger()
	l.Append(newTestTx("tx-1", StatusCompleted, 300, SchemeUpto))
	l.Append(newTestTx("tx-2", StatusCompleted, 500, SchemeExact))
	l.Append(newTestTx("tx-3", StatusFailed, 700, SchemeExact))

	s := l.Summarize()
	assert.Equal(t, 3, s.TotalCount)
	assert.Equal(t, 2, s.CompletedCount)
	assert.Equal(t, 1, s.FailedCount)
	assert.Equal(t, 1, s.ByScheme[SchemeUpto])
	assert.Equal(t, 1, s.ByScheme[SchemeExact])
	assert.Equal(t, 0, s.ByScheme[SchemeDeferred])
}

func TestLedgerConcurrentAppend(t *testing.T) {
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(newTestTx(fmt.Sprintf("tx-%d", i), StatusCompleted, 1, SchemeExact))
			l.TotalSpent()
			l.All()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
	assert.Equal(t, "50", l.TotalSpent().String())
}
