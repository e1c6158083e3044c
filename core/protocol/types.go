// Package protocol implements the agent-to-agent micropayment protocol:
// payment requests, scheme-validated responses, settlement, and the
// transaction ledger.
package protocol

import (
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Status is the settlement state of a transaction
type Status string

const (
	StatusPending    Status = "pending"
	StatusAuthorized Status = "authorized"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// Request is a payment request issued by the requesting agent before a
// provider performs work
type Request struct {
	// ID uniquely identifies the request
	ID string `json:"request_id"`

	// RequesterID is the registry identity of the paying agent
	RequesterID int64 `json:"requester_id"`

	// ProviderID is the registry identity of the serving agent
	ProviderID int64 `json:"provider_id"`

	// Description is a human-readable summary of the requested service
	Description string `json:"description"`

	// Scheme is the charging policy, fixed at creation
	Scheme Scheme `json:"scheme"`

	// BaseAmount is the base fee in ledger units
	BaseAmount *big.Int `json:"base_amount"`

	// CapAmount is the maximum charge in ledger units; only meaningful
	// for the UPTO scheme, nil otherwise
	CapAmount *big.Int `json:"cap_amount,omitempty"`

	// Metadata carries opaque request context
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is the request creation time
	CreatedAt time.Time `json:"created_at"`
}

// Response is the provider's answer to a Request: the work result plus
// the amount actually charged
type Response struct {
	// RequestID correlates to the originating request
	RequestID string `json:"request_id"`

	// ID uniquely identifies the response
	ID string `json:"response_id"`

	// Status is the provider-reported execution status
	Status string `json:"status"`

	// Result is the opaque work product
	Result map[string]interface{} `json:"result,omitempty"`

	// ActualAmount is the charged amount in ledger units
	ActualAmount *big.Int `json:"actual_amount"`

	// PaymentAddress is the destination wallet for settlement
	PaymentAddress string `json:"payment_address"`

	// ExecutionTime is how long the work took, if reported
	ExecutionTime time.Duration `json:"execution_time_ms,omitempty"`

	// UsageMetrics carries opaque usage counters
	UsageMetrics map[string]interface{} `json:"usage_metrics,omitempty"`
}

// Transaction records one settled (or failed) payment. A transaction
// exists only for responses that passed scheme validation.
type Transaction struct {
	// ID uniquely identifies the transaction
	ID string `json:"transaction_id"`

	// RequestID links to the request
	RequestID string `json:"request_id"`

	// ResponseID links to the response
	ResponseID string `json:"response_id"`

	// RequesterID is the paying agent
	RequesterID int64 `json:"requester_id"`

	// ProviderID is the paid agent
	ProviderID int64 `json:"provider_id"`

	// Scheme is copied from the request
	Scheme Scheme `json:"scheme"`

	// Amount is the settled amount in ledger units
	Amount *big.Int `json:"amount"`

	// Reference is the settlement reference (chain tx hash), if any
	Reference string `json:"reference,omitempty"`

	// BlockNumber is the confirming block, if confirmation was awaited
	BlockNumber uint64 `json:"block_number,omitempty"`

	// Status is the settlement state
	Status Status `json:"status"`

	// CreatedAt is when the transaction was created
	CreatedAt time.Time `json:"created_at"`

	// CompletedAt is when settlement completed, if it did
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// ErrorMessage describes the failure for FAILED transactions
	ErrorMessage string `json:"error_message,omitempty"`
}

// NewRequest builds a validated Request with a fresh id and timestamp.
// Amounts are ledger units and must be non-negative; CapAmount may be nil.
func NewRequest(requesterID, providerID int64, description string, scheme Scheme, baseAmount, capAmount *big.Int, metadata map[string]interface{}) (*Request, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	if baseAmount == nil || baseAmount.Sign() < 0 {
		return nil, errors.Input("base amount must be non-negative")
	}
	if capAmount != nil && capAmount.Sign() < 0 {
		return nil, errors.Input("cap amount must be non-negative")
	}

	return &Request{
		ID:          "req-" + uuid.New().String(),
		RequesterID: requesterID,
		ProviderID:  providerID,
		Description: description,
		Scheme:      scheme,
		BaseAmount:  baseAmount,
		CapAmount:   capAmount,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}, nil
}

// NewResponse builds a validated Response for a request.
func NewResponse(requestID, status string, result map[string]interface{}, actualAmount *big.Int, paymentAddress string, executionTime time.Duration, usageMetrics map[string]interface{}) (*Response, error) {
	if actualAmount == nil || actualAmount.Sign() < 0 {
		return nil, errors.Input("actual amount must be non-negative")
	}

	return &Response{
		RequestID:      requestID,
		ID:             "res-" + uuid.New().String(),
		Status:         status,
		Result:         result,
		ActualAmount:   actualAmount,
		PaymentAddress: paymentAddress,
		ExecutionTime:  executionTime,
		UsageMetrics:   usageMetrics,
	}, nil
}
