package executor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ReportGenerator assembles a human-readable optimization report from
// the forecast and optimization phases.
type ReportGenerator struct {
	logger *zap.Logger
}

// NewReportGenerator creates the report generator executor
func NewReportGenerator(logger *zap.Logger) *ReportGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportGenerator{logger: logger}
}

// Name returns the phase name this executor backs
func (r *ReportGenerator) Name() string { return "report_generator" }

// Execute assembles the report. Input keys:
//
//	store_name           string
//	product_name         string
//	demand_forecast      map  prior phase result
//	inventory_optimizer  map  prior phase result
func (r *ReportGenerator) Execute(ctx context.Context, input map[string]interface{}) (*Outcome, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	storeName := stringInput(input, "store_name")
	productName := stringInput(input, "product_name")

	sections := map[string]interface{}{}
	if forecast, ok := input["demand_forecast"].(map[string]interface{}); ok {
		if demand, ok := floatField(forecast, "predicted_demand"); ok {
			sections["demand_forecast"] = fmt.Sprintf("predicted demand: %d units", int(demand))
		}
	}
	if opt, ok := input["inventory_optimizer"].(map[string]interface{}); ok {
		if qty, ok := floatField(opt, "optimal_order_quantity"); ok {
			sections["inventory_optimization"] = fmt.Sprintf("recommended order: %d units", int(qty))
		}
		if profit, ok := floatField(opt, "expected_profit"); ok {
			sections["expected_profit"] = fmt.Sprintf("expected profit: %d", int(profit))
		}
	}

	if len(sections) == 0 {
		return &Outcome{
			Status:        StatusFailed,
			ErrorMessage:  "nothing to report: no upstream phase results",
			ExecutionTime: time.Since(start),
		}, nil
	}

	r.logger.Info("report generated",
		zap.String("store", storeName),
		zap.String("product", productName))

	return &Outcome{
		Status: StatusSuccess,
		Result: map[string]interface{}{
			"report_summary": fmt.Sprintf("%s %s optimization report", storeName, productName),
			"sections":       sections,
		},
		UsageMetrics:  map[string]interface{}{},
		ExecutionTime: time.Since(start),
	}, nil
}
