package protocol

import (
	"math/big"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/0ji3/a2a-supply-chain-project/core/currency"
)

// Summary aggregates the ledger's transaction history
type Summary struct {
	// TotalCount is the number of recorded transactions
	TotalCount int `json:"total_transactions"`

	// CompletedCount is the number of completed transactions
	CompletedCount int `json:"completed"`

	// FailedCount is the number of failed transactions
	FailedCount int `json:"failed"`

	// TotalSpent is the display-unit sum of completed amounts
	TotalSpent decimal.Decimal `json:"total_spent"`

	// ByScheme counts completed transactions per scheme
	ByScheme map[Scheme]int `json:"by_scheme"`
}

// Ledger is the in-memory transaction record owned by a payment client.
//
// A single mutex serializes appends; reads copy out a snapshot so
// callers never observe a half-applied write. The durable record of
// payment is the external settlement ledger itself, reachable through
// each transaction's reference.
type Ledger struct {
	mu      sync.RWMutex
	byID    map[string]*Transaction
	ordered []*Transaction
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		byID: make(map[string]*Transaction),
	}
}

// Append records a transaction. The ledger takes ownership of tx;
// callers must not mutate it afterwards.
func (l *Ledger) Append(tx *Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byID[tx.ID] = tx
	l.ordered = append(l.ordered, tx)
}

// Get returns the transaction with the given id, or nil
func (l *Ledger) Get(id string) *Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	tx, ok := l.byID[id]
	if !ok {
		return nil
	}
	cp := *tx
	return &cp
}

// GetByRequest returns the transaction recorded for a request id, or nil
func (l *Ledger) GetByRequest(requestID string) *Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, tx := range l.ordered {
		if tx.RequestID == requestID {
			cp := *tx
			return &cp
		}
	}
	return nil
}

// All returns every transaction in append order
func (l *Ledger) All() []*Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Transaction, 0, len(l.ordered))
	for _, tx := range l.ordered {
		cp := *tx
		out = append(out, &cp)
	}
	return out
}

// Len returns the number of recorded transactions
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ordered)
}

// TotalSpent sums the ledger-unit amounts of completed transactions
func (l *Ledger) TotalSpent() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := new(big.Int)
	for _, tx := range l.ordered {
		if tx.Status == StatusCompleted {
			total.Add(total, tx.Amount)
		}
	}
	return total
}

// Summarize aggregates counts and spend over the ledger
func (l *Ledger) Summarize() *Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	byScheme := make(map[Scheme]int, len(Schemes()))
	for _, s := range Schemes() {
		byScheme[s] = 0
	}

	summary := &Summary{
		TotalCount: len(l.ordered),
		ByScheme:   byScheme,
	}

	total := new(big.Int)
	for _, tx := range l.ordered {
		switch tx.Status {
		case StatusCompleted:
			summary.CompletedCount++
			byScheme[tx.Scheme]++
			total.Add(total, tx.Amount)
		case StatusFailed:
			summary.FailedCount++
		}
	}

	summary.TotalSpent = currency.ToDecimal(total)
	return summary
}
