package api

import (
	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
)

// OptimizeRequest starts one pipeline run
type OptimizeRequest struct {
	ProductSKU      string    `json:"product_sku"`
	ProductName     string    `json:"product_name"`
	ProductCategory string    `json:"product_category"`
	StoreName       string    `json:"store_name"`
	Weather         string    `json:"weather"`
	DayType         string    `json:"day_type"`
	SellingPrice    float64   `json:"selling_price"`
	DisposalCost    float64   `json:"disposal_cost"`
	ShortageCost    float64   `json:"shortage_cost"`
	SalesHistory    []float64 `json:"sales_history,omitempty"`
}

// params converts the request into pipeline parameters with the
// original demo defaults filled in
func (r *OptimizeRequest) params() pipeline.Params {
	p := pipeline.Params{
		ProductSKU:      r.ProductSKU,
		ProductName:     r.ProductName,
		ProductCategory: r.ProductCategory,
		StoreName:       r.StoreName,
		Weather:         r.Weather,
		DayType:         r.DayType,
		SellingPrice:    r.SellingPrice,
		DisposalCost:    r.DisposalCost,
		ShortageCost:    r.ShortageCost,
		SalesHistory:    r.SalesHistory,
	}
	if p.SellingPrice == 0 {
		p.SellingPrice = 198.0
	}
	if p.DisposalCost == 0 {
		p.DisposalCost = 120.0
	}
	if p.ShortageCost == 0 {
		p.ShortageCost = 80.0
	}
	return p
}

// OptimizeAccepted acknowledges an accepted run
type OptimizeAccepted struct {
	RunID   string `json:"run_id"`
	Message string `json:"message"`
}

// PhaseState is one phase's live status
type PhaseState struct {
	Status   pipeline.PhaseStatus `json:"status"`
	Progress int                  `json:"progress"`
}

// StatusResponse reports the live phase states and whether a run is
// in flight
type StatusResponse struct {
	Running bool                  `json:"running"`
	Agents  map[string]PhaseState `json:"agents"`
}

// errorResponse is the uniform error payload
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
