package executor

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("demand_forecast")
	assert.False(t, ok)

	forecast := NewDemandForecast(nil)
	r.Register(forecast)

	got, ok := r.Get("demand_forecast")
	require.True(t, ok)
	assert.Equal(t, "demand_forecast", got.Name())
}

func TestDemandForecastDefaultHistory(t *testing.T) {
	f := NewDemandForecast(nil)

	outcome, err := f.Execute(context.Background(), map[string]interface{}{
		"weather":  "sunny",
		"day_type": "weekday",
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, outcome.Status)

	predicted, ok := outcome.Result["predicted_demand"].(int)
	require.True(t, ok)
	assert.Greater(t, predicted, 0)

	ci, ok := outcome.Result["confidence_interval"].(map[string]interface{})
	require.True(t, ok)
	assert.Less(t, ci["lower"].(int), predicted)
	assert.Greater(t, ci["upper"].(int), predicted)

	assert.Equal(t, int64(30), outcome.UsageMetrics["records_processed"])
	assert.Equal(t, "sunny", outcome.Result["weather_factor"])
}

func TestDemandForecastMovingAverage(t *testing.T) {
	f := NewDemandForecast(nil)

	// 10 days; only the trailing 7 (all 210) should be averaged
	history := []float64{900, 900, 900, 210, 210, 210, 210, 210, 210, 210}
	outcome, err := f.Execute(context.Background(), map[string]interface{}{
		"sales_history": history,
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 210, outcome.Result["predicted_demand"])
	assert.Equal(t, int64(10), outcome.UsageMetrics["records_processed"])
}

func TestDemandForecastEmptyHistory(t *testing.T) {
	f := NewDemandForecast(nil)

	outcome, err := f.Execute(context.Background(), map[string]interface{}{
		"sales_history": []float64{},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "no historical data")
}

func TestDemandForecastCancelledContext(t *testing.T) {
	f := NewDemandForecast(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Execute(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestInventoryOptimizer(t *testing.T) {
	o := NewInventoryOptimizer(nil)

	outcome, err := o.Execute(context.Background(), map[string]interface{}{
		"demand_forecast": map[string]interface{}{
			"predicted_demand": 340,
			"confidence_interval": map[string]interface{}{
				"lower": 309,
				"upper": 370,
			},
		},
		"selling_price": 198.0,
		"disposal_cost": 120.0,
		"shortage_cost": 80.0,
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, outcome.Status)

	qty, ok := outcome.Result["optimal_order_quantity"].(int)
	require.True(t, ok)
	assert.Greater(t, qty, 0)

	// critical ratio 80/(80+120) = 0.4 is below the median, so the
	// optimizer orders slightly under the mean
	ratio, ok := outcome.Result["critical_ratio"].(float64)
	require.True(t, ok)
	assert.InDelta(t, 0.4, ratio, 0.001)
	assert.Less(t, qty, 340)

	assert.Equal(t, 51, outcome.Result["safety_stock"])
}

func TestInventoryOptimizerMissingForecast(t *testing.T) {
	o := NewInventoryOptimizer(nil)

	outcome, err := o.Execute(context.Background(), map[string]interface{}{
		"selling_price": 198.0,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.ErrorMessage, "demand_forecast")
}

func TestNormQuantile(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{p: 0.5, want: 0},
		{p: 0.975, want: 1.959964},
		{p: 0.025, want: -1.959964},
		{p: 0.9, want: 1.281552},
		{p: 0.4, want: -0.253347},
		{p: 0.01, want: -2.326348},
	}

	for _, tt := range tests {
		got := normQuantile(tt.p)
		assert.InDelta(t, tt.want, got, 1e-5, "p=%v", tt.p)
	}

	assert.True(t, math.IsInf(normQuantile(0), -1))
	assert.True(t, math.IsInf(normQuantile(1), 1))
}

func TestReportGenerator(t *testing.T) {
	r := NewReportGenerator(nil)

	outcome, err := r.Execute(context.Background(), map[string]interface{}{
		"store_name":   "Shibuya",
		"product_name": "Tomato",
		"demand_forecast": map[string]interface{}{
			"predicted_demand": 340,
		},
		"inventory_optimizer": map[string]interface{}{
			"optimal_order_quantity": 333,
			"expected_profit":        26000,
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, outcome.Status)

	assert.Equal(t, "Shibuya Tomato optimization report", outcome.Result["report_summary"])
	sections, ok := outcome.Result["sections"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, sections["demand_forecast"], "340")
	assert.Contains(t, sections["inventory_optimization"], "333")
	assert.Contains(t, sections["expected_profit"], "26000")
}

func TestReportGeneratorNoUpstream(t *testing.T) {
	r := NewReportGenerator(nil)

	outcome, err := r.Execute(context.Background(), map[string]interface{}{
		"store_name": "Shibuya",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, outcome.Status)
}
