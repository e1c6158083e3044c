package pipeline

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
)

// PhaseOutput is one phase's work product, in execution order
type PhaseOutput struct {
	// Phase is the phase name
	Phase string `json:"phase"`

	// Result is the executor's opaque work product
	Result map[string]interface{} `json:"result"`
}

// Result aggregates one pipeline run. On failure, already-settled
// transactions from earlier phases are retained: payment is
// at-least-once, never rolled back.
type Result struct {
	// Params echoes the run parameters
	Params Params `json:"params"`

	// Outputs holds each completed phase's result, in order
	Outputs []PhaseOutput `json:"outputs"`

	// Transactions lists every settled payment, in order
	Transactions []*protocol.Transaction `json:"transactions"`

	// TotalCost is the display-unit sum of transaction amounts
	TotalCost decimal.Decimal `json:"total_cost"`

	// Elapsed is the wall-clock run duration
	Elapsed time.Duration `json:"elapsed_ms"`

	// Success is true when every phase completed and settled
	Success bool `json:"success"`

	// FailedPhase identifies the aborting phase on failure
	FailedPhase string `json:"failed_phase,omitempty"`

	// ErrorMessage describes the failure
	ErrorMessage string `json:"error_message,omitempty"`
}

// Output returns the result of a completed phase by name, or nil
func (r *Result) Output(phase string) map[string]interface{} {
	for _, out := range r.Outputs {
		if out.Phase == phase {
			return out.Result
		}
	}
	return nil
}
