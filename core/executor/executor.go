// Package executor defines the phase executor contract consumed by the
// pipeline, plus the built-in executors backing the stock supply-chain
// phases. The pipeline treats results as opaque; only the next phase's
// input construction reads named fields.
package executor

import (
	"context"
	"time"
)

// StatusSuccess is the execution status reported by a successful run
const StatusSuccess = "success"

// StatusFailed is the execution status reported by a failed run
const StatusFailed = "failed"

// Outcome is what a phase executor reports back: a status, the opaque
// work product, usage counters, and how long the work took.
type Outcome struct {
	// Status is StatusSuccess on success; anything else aborts the phase
	Status string `json:"status"`

	// Result is the opaque work product handed to later phases
	Result map[string]interface{} `json:"result"`

	// UsageMetrics carries usage counters (e.g. records_processed)
	// that feed usage-based charging
	UsageMetrics map[string]interface{} `json:"usage_metrics"`

	// ExecutionTime is how long the work took
	ExecutionTime time.Duration `json:"execution_time_ms"`

	// ErrorMessage describes the failure when Status is not success
	ErrorMessage string `json:"error_message,omitempty"`
}

// Executor performs the work behind one pipeline phase. Implementations
// must respect ctx cancellation for any blocking work.
type Executor interface {
	// Name identifies the executor; it matches the phase name in
	// the pipeline configuration
	Name() string

	// Execute runs the phase against its input and reports an outcome.
	// A returned error means the executor itself broke; a non-success
	// Outcome.Status means the work was attempted and failed.
	Execute(ctx context.Context, input map[string]interface{}) (*Outcome, error)
}

// Registry maps phase names to executors
type Registry struct {
	executors map[string]Executor
}

// NewRegistry creates a registry holding the given executors
func NewRegistry(executors ...Executor) *Registry {
	r := &Registry{executors: make(map[string]Executor, len(executors))}
	for _, e := range executors {
		r.executors[e.Name()] = e
	}
	return r
}

// Register adds or replaces an executor
func (r *Registry) Register(e Executor) {
	r.executors[e.Name()] = e
}

// Get returns the executor for a phase name
func (r *Registry) Get(name string) (Executor, bool) {
	e, ok := r.executors[name]
	return e, ok
}
