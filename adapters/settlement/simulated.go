package settlement

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// simulatedTransfer is one recorded transfer in the simulated ledger
type simulatedTransfer struct {
	toAddress   string
	amount      *big.Int
	submittedAt time.Time
}

// Simulated is an in-memory settlement backend. Transfers settle
// against per-address token balances and become confirmed after a
// configurable delay, so confirmation waiting behaves like a fast
// test chain.
type Simulated struct {
	mu           sync.Mutex
	balances     map[string]*big.Int
	transfers    map[string]*simulatedTransfer
	confirmDelay time.Duration
	blockNumber  uint64
	logger       *zap.Logger
}

// SimulatedOption configures a Simulated adapter
type SimulatedOption func(*Simulated)

// WithConfirmDelay sets how long a transfer takes to confirm
func WithConfirmDelay(d time.Duration) SimulatedOption {
	return func(s *Simulated) { s.confirmDelay = d }
}

// WithSimulatedLogger sets the adapter logger
func WithSimulatedLogger(logger *zap.Logger) SimulatedOption {
	return func(s *Simulated) { s.logger = logger }
}

// NewSimulated creates a simulated settlement backend
func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		balances:     make(map[string]*big.Int),
		transfers:    make(map[string]*simulatedTransfer),
		confirmDelay: 50 * time.Millisecond,
		blockNumber:  1,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credit funds an address with display-unit tokens, for seeding test
// and demo wallets
func (s *Simulated) Credit(address string, amount decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.credit(address, currency.ToLedgerUnits(amount))
}

func (s *Simulated) credit(address string, units *big.Int) {
	bal, ok := s.balances[address]
	if !ok {
		bal = new(big.Int)
		s.balances[address] = bal
	}
	bal.Add(bal, units)
}

// Transfer records an instant in-memory transfer and returns a
// synthetic transaction hash
func (s *Simulated) Transfer(ctx context.Context, toAddress string, amount *big.Int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if amount == nil || amount.Sign() < 0 {
		return "", errors.Newf(errors.TypeSettlement, "invalid transfer amount")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ref := "0xsim" + strings.ReplaceAll(uuid.New().String(), "-", "")
	s.credit(toAddress, amount)
	s.transfers[ref] = &simulatedTransfer{
		toAddress:   toAddress,
		amount:      new(big.Int).Set(amount),
		submittedAt: time.Now(),
	}
	s.blockNumber++

	s.logger.Debug("simulated transfer",
		zap.String("to", toAddress),
		zap.String("amount", currency.ToDecimal(amount).String()),
		zap.String("reference", ref))

	return ref, nil
}

// WaitForConfirmation polls with exponential backoff until the
// transfer's confirm delay has elapsed or the timeout expires
func (s *Simulated) WaitForConfirmation(ctx context.Context, reference string, timeout time.Duration) (*Receipt, error) {
	deadline := time.Now().Add(timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	interval := 10 * time.Millisecond
	for {
		receipt, err := s.receipt(reference)
		if err != nil {
			return nil, err
		}
		if receipt.Confirmed {
			return receipt, nil
		}
		if time.Now().After(deadline) {
			return nil, errors.SettlementTimeout(
				fmt.Sprintf("transfer %s unconfirmed after %s", reference, timeout))
		}

		next, err := pollWait(ctx, interval, 500*time.Millisecond)
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, errors.SettlementTimeout(
					fmt.Sprintf("transfer %s unconfirmed after %s", reference, timeout))
			}
			return nil, err
		}
		interval = next
	}
}

func (s *Simulated) receipt(reference string) (*Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := s.transfers[reference]
	if !ok {
		return nil, errors.NotFound("transfer", reference)
	}
	return &Receipt{
		BlockNumber: s.blockNumber,
		GasUsed:     21000,
		Confirmed:   time.Since(tr.submittedAt) >= s.confirmDelay,
	}, nil
}

// GetBalance returns the simulated token balance; native balance is
// reported as zero since no gas is consumed here
func (s *Simulated) GetBalance(ctx context.Context, address string) (*Balance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token := decimal.Zero
	if bal, ok := s.balances[address]; ok {
		token = currency.ToDecimal(bal)
	}
	return &Balance{
		Address: address,
		Native:  decimal.Zero,
		Token:   token,
	}, nil
}
