// Package pipeline sequences the supply-chain phases, feeds each
// phase's output into the next, gates completion on settled payment,
// and aggregates the run result.
package pipeline

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/core/executor"
	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Orchestrator drives a fixed, linearly-dependent sequence of phases.
// Each phase is executed, charged per its scheme, and settled through
// the payment client before the next phase starts. There is no
// intra-pipeline parallelism: phase i+1 reads phase i's output.
type Orchestrator struct {
	client   *protocol.Client
	registry *executor.Registry
	phases   []PhaseConfig
	logger   *zap.Logger
	sink     EventSink
}

// OrchestratorOption configures an Orchestrator
type OrchestratorOption func(*Orchestrator)

// WithEventSink registers a progress event sink
func WithEventSink(sink EventSink) OrchestratorOption {
	return func(o *Orchestrator) { o.sink = sink }
}

// WithPipelineLogger sets the orchestrator logger
func WithPipelineLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = logger }
}

// NewOrchestrator creates an orchestrator over the given phases. Every
// phase must have a registered executor.
func NewOrchestrator(client *protocol.Client, registry *executor.Registry, phases []PhaseConfig, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(phases) == 0 {
		return nil, errors.New(errors.TypeConfig, "pipeline needs at least one phase")
	}
	for i := range phases {
		if err := phases[i].Validate(); err != nil {
			return nil, err
		}
		if _, ok := registry.Get(phases[i].Name); !ok {
			return nil, errors.Newf(errors.TypeConfig, "no executor registered for phase %q", phases[i].Name)
		}
	}

	o := &Orchestrator{
		client:   client,
		registry: registry,
		phases:   phases,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Phases returns the configured phases in execution order
func (o *Orchestrator) Phases() []PhaseConfig {
	return o.phases
}

// Run executes the pipeline. Phase failures and settlement failures
// abort the run and are reported inside the Result; transactions
// settled by earlier phases are retained. A non-nil error is returned
// only for invalid parameters or context cancellation.
func (o *Orchestrator) Run(ctx context.Context, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		Params:    params,
		TotalCost: decimal.Zero,
	}

	o.logger.Info("pipeline started",
		zap.String("product", params.ProductName),
		zap.String("store", params.StoreName),
		zap.Int("phases", len(o.phases)))

	for i := range o.phases {
		if err := ctx.Err(); err != nil {
			result.Elapsed = time.Since(start)
			return result, err
		}

		cfg := &o.phases[i]
		o.emit(cfg.Name, PhaseRunning, o.progress(i), cfg.DisplayName+" started")

		tx, output, err := o.runPhase(ctx, cfg, params, result)
		if err != nil {
			if ctx.Err() != nil {
				result.Elapsed = time.Since(start)
				return result, ctx.Err()
			}
			o.emit(cfg.Name, PhaseFailed, o.progress(i), err.Error())
			result.Success = false
			result.FailedPhase = cfg.Name
			result.ErrorMessage = err.Error()
			result.Elapsed = time.Since(start)

			o.logger.Error("pipeline aborted",
				zap.String("phase", cfg.Name),
				zap.Error(err))
			return result, nil
		}

		result.Outputs = append(result.Outputs, PhaseOutput{Phase: cfg.Name, Result: output})
		result.Transactions = append(result.Transactions, tx)
		result.TotalCost = result.TotalCost.Add(currency.ToDecimal(tx.Amount))
		o.emit(cfg.Name, PhaseCompleted, o.progress(i+1), cfg.DisplayName+" completed")
	}

	result.Success = true
	result.Elapsed = time.Since(start)

	o.logger.Info("pipeline completed",
		zap.String("total_cost", result.TotalCost.String()),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("transactions", len(result.Transactions)))

	return result, nil
}

// runPhase creates the payment request, executes the phase, computes
// the actual charge from usage, and settles it.
func (o *Orchestrator) runPhase(ctx context.Context, cfg *PhaseConfig, params Params, result *Result) (*protocol.Transaction, map[string]interface{}, error) {
	req, err := o.client.CreateRequest(
		cfg.ProviderID,
		cfg.DisplayName+" for "+params.ProductName,
		cfg.Scheme,
		cfg.BaseCost,
		cfg.MaxCost,
		map[string]interface{}{
			"product_sku": params.ProductSKU,
			"store_name":  params.StoreName,
			"phase":       cfg.Name,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	exec, _ := o.registry.Get(cfg.Name)
	outcome, err := exec.Execute(ctx, o.phaseInput(params, result))
	if err != nil {
		return nil, nil, errors.Wrap(errors.TypeExecution, "phase executor failed", err)
	}
	if outcome.Status != executor.StatusSuccess {
		msg := outcome.ErrorMessage
		if msg == "" {
			msg = "executor reported status " + outcome.Status
		}
		return nil, nil, errors.Execution(cfg.DisplayName + " failed: " + msg)
	}

	actualCost, err := cfg.Scheme.ActualCost(cfg.BaseCost, cfg.RatePer1000, usageUnits(outcome.UsageMetrics))
	if err != nil {
		return nil, nil, err
	}

	resp, err := protocol.NewResponse(
		req.ID,
		outcome.Status,
		outcome.Result,
		currency.ToLedgerUnits(actualCost),
		cfg.PaymentAddress,
		outcome.ExecutionTime,
		outcome.UsageMetrics,
	)
	if err != nil {
		return nil, nil, err
	}

	tx, err := o.client.ProcessResponse(ctx, req, resp)
	if err != nil {
		return nil, nil, err
	}
	return tx, outcome.Result, nil
}

// phaseInput builds a phase's input from the run parameters and every
// prior phase's output, keyed by phase name.
func (o *Orchestrator) phaseInput(params Params, result *Result) map[string]interface{} {
	input := map[string]interface{}{
		"product_sku":      params.ProductSKU,
		"product_name":     params.ProductName,
		"product_category": params.ProductCategory,
		"store_name":       params.StoreName,
		"weather":          params.Weather,
		"day_type":         params.DayType,
		"selling_price":    params.SellingPrice,
		"disposal_cost":    params.DisposalCost,
		"shortage_cost":    params.ShortageCost,
	}
	if len(params.SalesHistory) > 0 {
		input["sales_history"] = params.SalesHistory
	}
	for _, out := range result.Outputs {
		input[out.Phase] = out.Result
	}
	return input
}

// usageUnits extracts the records_processed counter used by
// usage-proportional charging
func usageUnits(metrics map[string]interface{}) int64 {
	if metrics == nil {
		return 0
	}
	switch v := metrics["records_processed"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func (o *Orchestrator) progress(completed int) int {
	return completed * 100 / len(o.phases)
}

func (o *Orchestrator) emit(phase string, status PhaseStatus, progress int, message string) {
	if o.sink == nil {
		return
	}
	o.sink(Event{
		PhaseName: phase,
		Status:    status,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}
