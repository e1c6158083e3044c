package protocol

import (
	"context"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/0ji3/a2a-supply-chain-project/adapters/settlement"
	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Client is the payment protocol engine. It creates requests, validates
// and settles responses, and owns the transaction ledger.
//
// The client is configured with exactly one settlement adapter, chosen
// explicitly by the caller (simulated or live); it never infers the mode
// from what it was given.
type Client struct {
	requesterID int64
	adapter     settlement.Adapter
	ledger      *Ledger
	logger      *zap.Logger

	// strictExact fails EXACT settlement on amount mismatch instead
	// of warning
	strictExact bool

	// confirmTimeout, when positive, waits for on-chain confirmation
	// after each transfer
	confirmTimeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithStrictExact fails EXACT-scheme responses whose actual amount
// differs from the request's base amount
func WithStrictExact() Option {
	return func(c *Client) { c.strictExact = true }
}

// WithConfirmation makes the client wait up to timeout for on-chain
// confirmation after each transfer
func WithConfirmation(timeout time.Duration) Option {
	return func(c *Client) { c.confirmTimeout = timeout }
}

// WithLogger sets the client logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a payment client for the given requester identity.
// The ledger is owned by the client; adapter must not be nil.
func NewClient(requesterID int64, adapter settlement.Adapter, ledger *Ledger, opts ...Option) *Client {
	if ledger == nil {
		ledger = NewLedger()
	}
	c := &Client{
		requesterID: requesterID,
		adapter:     adapter,
		ledger:      ledger,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequesterID returns the client's agent identity
func (c *Client) RequesterID() int64 {
	return c.requesterID
}

// CreateRequest builds a payment request for a provider. Amounts are
// display units; capAmount applies only to the UPTO scheme and may be
// nil. Negative amounts fail with an input validation error.
func (c *Client) CreateRequest(providerID int64, description string, scheme Scheme, baseAmount decimal.Decimal, capAmount *decimal.Decimal, metadata map[string]interface{}) (*Request, error) {
	if baseAmount.IsNegative() {
		return nil, errors.Input("base amount must be non-negative")
	}
	if capAmount != nil && capAmount.IsNegative() {
		return nil, errors.Input("cap amount must be non-negative")
	}

	req, err := NewRequest(
		c.requesterID,
		providerID,
		description,
		scheme,
		currency.ToLedgerUnits(baseAmount),
		capLedgerUnits(capAmount),
		metadata,
	)
	if err != nil {
		return nil, err
	}

	c.logger.Info("created payment request",
		zap.String("request_id", req.ID),
		zap.Int64("provider_id", providerID),
		zap.String("scheme", scheme.String()),
		zap.String("base_amount", baseAmount.String()),
		zap.String("description", description))

	return req, nil
}

// ProcessResponse validates a response against its request under the
// request's scheme, settles the charged amount through the settlement
// adapter, and records the transaction.
//
// Validation failures (an UPTO response above its cap, or an EXACT
// mismatch in strict mode) reject the response before any transaction
// exists. Adapter failures are recorded as FAILED transactions and
// surface as settlement errors; the caller decides whether to retry
// the phase.
func (c *Client) ProcessResponse(ctx context.Context, req *Request, resp *Response) (*Transaction, error) {
	warning, err := req.Scheme.checkResponse(req, resp)
	if err != nil {
		c.logger.Error("response rejected",
			zap.String("request_id", req.ID),
			zap.String("scheme", req.Scheme.String()),
			zap.Error(err))
		return nil, err
	}
	if warning != "" {
		if c.strictExact && req.Scheme == SchemeExact {
			return nil, errors.Input(warning)
		}
		c.logger.Warn(warning, zap.String("request_id", req.ID))
	}

	tx := &Transaction{
		ID:          "tx-" + uuid.New().String(),
		RequestID:   req.ID,
		ResponseID:  resp.ID,
		RequesterID: req.RequesterID,
		ProviderID:  req.ProviderID,
		Scheme:      req.Scheme,
		Amount:      resp.ActualAmount,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}

	ref, err := c.adapter.Transfer(ctx, resp.PaymentAddress, resp.ActualAmount)
	if err != nil {
		tx.Status = StatusFailed
		tx.ErrorMessage = err.Error()
		c.ledger.Append(tx)

		c.logger.Error("settlement transfer failed",
			zap.String("transaction_id", tx.ID),
			zap.String("request_id", req.ID),
			zap.Error(err))
		return nil, errors.Settlement("transfer failed", err)
	}
	tx.Reference = ref

	if c.confirmTimeout > 0 {
		receipt, err := c.adapter.WaitForConfirmation(ctx, ref, c.confirmTimeout)
		if err != nil {
			tx.Status = StatusFailed
			tx.ErrorMessage = err.Error()
			c.ledger.Append(tx)

			c.logger.Error("settlement confirmation failed",
				zap.String("transaction_id", tx.ID),
				zap.String("reference", ref),
				zap.Error(err))
			return nil, err
		}
		tx.BlockNumber = receipt.BlockNumber
	}

	now := time.Now()
	tx.Status = StatusCompleted
	tx.CompletedAt = &now
	c.ledger.Append(tx)

	c.logger.Info("payment completed",
		zap.String("transaction_id", tx.ID),
		zap.String("request_id", req.ID),
		zap.String("amount", currency.ToDecimal(tx.Amount).String()),
		zap.String("scheme", tx.Scheme.String()),
		zap.String("reference", ref))

	return c.ledger.Get(tx.ID), nil
}

// GetTransaction returns a recorded transaction by id, or nil
func (c *Client) GetTransaction(id string) *Transaction {
	return c.ledger.Get(id)
}

// Transactions returns every recorded transaction in append order
func (c *Client) Transactions() []*Transaction {
	return c.ledger.All()
}

// TotalSpent returns the display-unit sum of completed transactions
func (c *Client) TotalSpent() decimal.Decimal {
	return currency.ToDecimal(c.ledger.TotalSpent())
}

// TransactionSummary aggregates the ledger
func (c *Client) TransactionSummary() *Summary {
	return c.ledger.Summarize()
}

// capLedgerUnits converts an optional display-unit cap to ledger units
func capLedgerUnits(cap *decimal.Decimal) *big.Int {
	if cap == nil {
		return nil
	}
	return currency.ToLedgerUnits(*cap)
}
