package executor

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// InventoryOptimizer computes a newsvendor-style order quantity from a
// demand forecast and the product's unit economics.
type InventoryOptimizer struct {
	logger *zap.Logger
}

// NewInventoryOptimizer creates the inventory optimizer executor
func NewInventoryOptimizer(logger *zap.Logger) *InventoryOptimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryOptimizer{logger: logger}
}

// Name returns the phase name this executor backs
func (o *InventoryOptimizer) Name() string { return "inventory_optimizer" }

// Execute runs the optimization. Input keys:
//
//	demand_forecast map    the prior phase's result (required)
//	selling_price   float64
//	disposal_cost   float64
//	shortage_cost   float64
func (o *InventoryOptimizer) Execute(ctx context.Context, input map[string]interface{}) (*Outcome, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	forecast, ok := input["demand_forecast"].(map[string]interface{})
	if !ok {
		return &Outcome{
			Status:        StatusFailed,
			ErrorMessage:  "missing required input: demand_forecast",
			ExecutionTime: time.Since(start),
		}, nil
	}

	demandMean, ok := floatField(forecast, "predicted_demand")
	if !ok {
		return &Outcome{
			Status:        StatusFailed,
			ErrorMessage:  "demand forecast has no predicted_demand",
			ExecutionTime: time.Since(start),
		}, nil
	}

	lower, upper := intervalBounds(forecast, demandMean)
	// Estimate sigma from the 95% interval width
	demandStd := (upper - lower) / (2 * 1.96)
	if demandStd <= 0 {
		demandStd = demandMean * 0.05
	}

	sellingPrice := floatInput(input, "selling_price", 198.0)
	disposalCost := floatInput(input, "disposal_cost", 120.0)
	unitCost := sellingPrice * 0.6
	shortageCost := floatInput(input, "shortage_cost", sellingPrice-unitCost)

	// Newsvendor critical ratio: Cu / (Cu + Co)
	criticalRatio := shortageCost / (shortageCost + disposalCost)
	optimalOrder := demandMean + demandStd*normQuantile(criticalRatio)

	orderQuantity := int(math.Max(0, math.Round(optimalOrder)))
	safetyStock := int(demandMean * 0.15)
	expectedWaste := int(math.Max(0, optimalOrder-demandMean))
	expectedShortage := int(math.Max(0, demandMean-optimalOrder))
	expectedProfit := int((sellingPrice - unitCost) * math.Min(float64(orderQuantity), demandMean))

	o.logger.Info("inventory optimization complete",
		zap.Int("order_quantity", orderQuantity),
		zap.Float64("critical_ratio", criticalRatio))

	return &Outcome{
		Status: StatusSuccess,
		Result: map[string]interface{}{
			"optimal_order_quantity": orderQuantity,
			"safety_stock":           safetyStock,
			"expected_waste":         expectedWaste,
			"expected_shortage":      expectedShortage,
			"expected_profit":        expectedProfit,
			"unit_cost":              unitCost,
			"critical_ratio":         math.Round(criticalRatio*1000) / 1000,
		},
		UsageMetrics:  map[string]interface{}{},
		ExecutionTime: time.Since(start),
	}, nil
}

func floatField(m map[string]interface{}, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func floatInput(input map[string]interface{}, key string, def float64) float64 {
	if v, ok := floatField(input, key); ok && v > 0 {
		return v
	}
	return def
}

func intervalBounds(forecast map[string]interface{}, mean float64) (lower, upper float64) {
	lower, upper = mean*0.91, mean*1.09
	ci, ok := forecast["confidence_interval"].(map[string]interface{})
	if !ok {
		return lower, upper
	}
	if l, ok := floatField(ci, "lower"); ok {
		lower = l
	}
	if u, ok := floatField(ci, "upper"); ok {
		upper = u
	}
	return lower, upper
}

// normQuantile is the standard normal inverse CDF (Acklam's rational
// approximation, good to ~1e-9 over (0,1)).
func normQuantile(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	if p >= 1 {
		return math.Inf(1)
	}

	a := []float64{-3.969683028665376e+01, 2.209460984245205e+02, -2.759285104469687e+02,
		1.383577518672690e+02, -3.066479806614716e+01, 2.506628277459239e+00}
	b := []float64{-5.447609879822406e+01, 1.615858368580409e+02, -1.556989798598866e+02,
		6.680131188771972e+01, -1.328068155288572e+01}
	c := []float64{-7.784894002430293e-03, -3.223964580411365e-01, -2.400758277161838e+00,
		-2.549732539343734e+00, 4.374664141464968e+00, 2.938163982698783e+00}
	d := []float64{7.784695709041462e-03, 3.224671290700398e-01, 2.445134137142996e+00,
		3.754408661907416e+00}

	const plow = 0.02425
	switch {
	case p < plow:
		q := math.Sqrt(-2 * math.Log(p))
		return (((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	case p > 1-plow:
		q := math.Sqrt(-2 * math.Log(1-p))
		return -(((((c[0]*q+c[1])*q+c[2])*q+c[3])*q+c[4])*q + c[5]) /
			((((d[0]*q+d[1])*q+d[2])*q+d[3])*q + 1)
	default:
		q := p - 0.5
		r := q * q
		return (((((a[0]*r+a[1])*r+a[2])*r+a[3])*r+a[4])*r + a[5]) * q /
			(((((b[0]*r+b[1])*r+b[2])*r+b[3])*r+b[4])*r + 1)
	}
}
