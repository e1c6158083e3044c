package pipeline

import (
	_ "embed"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

//go:embed phase_defaults.yaml
var phaseDefaultsYAML []byte

// PhaseConfig describes one pipeline phase: which provider performs it,
// how it is charged, and where the payment goes.
type PhaseConfig struct {
	// Name matches the executor backing this phase
	Name string `json:"name"`

	// DisplayName is the human-readable phase label
	DisplayName string `json:"display_name"`

	// ProviderID is the registry identity of the serving agent
	ProviderID int64 `json:"provider_id"`

	// Scheme is the charging policy
	Scheme protocol.Scheme `json:"scheme"`

	// BaseCost is the base fee in display units
	BaseCost decimal.Decimal `json:"base_cost"`

	// MaxCost caps the charge for the UPTO scheme; nil means uncapped
	MaxCost *decimal.Decimal `json:"max_cost,omitempty"`

	// RatePer1000 is the surcharge per 1000 usage units (UPTO only)
	RatePer1000 decimal.Decimal `json:"rate_per_1000"`

	// PaymentAddress is the provider's settlement wallet
	PaymentAddress string `json:"payment_address"`
}

// Validate checks the phase configuration
func (p *PhaseConfig) Validate() error {
	if p.Name == "" {
		return errors.New(errors.TypeConfig, "phase name is required")
	}
	if err := p.Scheme.Validate(); err != nil {
		return err
	}
	if p.BaseCost.IsNegative() {
		return errors.Newf(errors.TypeConfig, "phase %s: base cost must be non-negative", p.Name)
	}
	if p.MaxCost != nil && p.MaxCost.IsNegative() {
		return errors.Newf(errors.TypeConfig, "phase %s: max cost must be non-negative", p.Name)
	}
	if p.PaymentAddress == "" {
		return errors.Newf(errors.TypeConfig, "phase %s: payment address is required", p.Name)
	}
	return nil
}

// yamlPhase is the on-disk shape of a phase entry
type yamlPhase struct {
	Name           string `yaml:"name"`
	DisplayName    string `yaml:"display_name"`
	ProviderID     int64  `yaml:"provider_id"`
	Scheme         string `yaml:"scheme"`
	BaseCost       string `yaml:"base_cost"`
	MaxCost        string `yaml:"max_cost"`
	RatePer1000    string `yaml:"rate_per_1000"`
	PaymentAddress string `yaml:"payment_address"`
}

type yamlCatalog struct {
	Phases []yamlPhase `yaml:"phases"`
}

// DefaultPhases returns the embedded three-phase supply-chain catalog:
// demand forecast (UPTO), inventory optimization (EXACT), report
// generation (DEFERRED).
func DefaultPhases() ([]PhaseConfig, error) {
	var catalog yamlCatalog
	if err := yaml.Unmarshal(phaseDefaultsYAML, &catalog); err != nil {
		return nil, errors.Config("failed to parse embedded phase catalog", err)
	}

	phases := make([]PhaseConfig, 0, len(catalog.Phases))
	for _, yp := range catalog.Phases {
		cfg, err := phaseFromYAML(yp)
		if err != nil {
			return nil, err
		}
		phases = append(phases, *cfg)
	}
	return phases, nil
}

func phaseFromYAML(yp yamlPhase) (*PhaseConfig, error) {
	scheme, err := protocol.ParseScheme(yp.Scheme)
	if err != nil {
		return nil, errors.Config("phase "+yp.Name, err)
	}

	baseCost, err := decimal.NewFromString(yp.BaseCost)
	if err != nil {
		return nil, errors.Config("phase "+yp.Name+": invalid base cost", err)
	}

	var maxCost *decimal.Decimal
	if yp.MaxCost != "" {
		mc, err := decimal.NewFromString(yp.MaxCost)
		if err != nil {
			return nil, errors.Config("phase "+yp.Name+": invalid max cost", err)
		}
		maxCost = &mc
	}

	rate := decimal.Zero
	if yp.RatePer1000 != "" {
		rate, err = decimal.NewFromString(yp.RatePer1000)
		if err != nil {
			return nil, errors.Config("phase "+yp.Name+": invalid rate", err)
		}
	}

	cfg := &PhaseConfig{
		Name:           yp.Name,
		DisplayName:    yp.DisplayName,
		ProviderID:     yp.ProviderID,
		Scheme:         scheme,
		BaseCost:       baseCost,
		MaxCost:        maxCost,
		RatePer1000:    rate,
		PaymentAddress: yp.PaymentAddress,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Params names the product and context one pipeline run optimizes for
type Params struct {
	// ProductSKU identifies the product
	ProductSKU string `json:"product_sku"`

	// ProductName is the display name
	ProductName string `json:"product_name"`

	// ProductCategory groups the product
	ProductCategory string `json:"product_category"`

	// StoreName is the requesting store
	StoreName string `json:"store_name"`

	// Weather is tomorrow's forecast weather
	Weather string `json:"weather"`

	// DayType is tomorrow's day type (weekday/weekend)
	DayType string `json:"day_type"`

	// SellingPrice is the per-unit selling price
	SellingPrice float64 `json:"selling_price"`

	// DisposalCost is the per-unit cost of unsold stock
	DisposalCost float64 `json:"disposal_cost"`

	// ShortageCost is the per-unit opportunity cost of a stockout
	ShortageCost float64 `json:"shortage_cost"`

	// SalesHistory is trailing daily sales, oldest first; executors
	// fall back to demo data when empty
	SalesHistory []float64 `json:"sales_history,omitempty"`
}

// Validate checks run parameters
func (p *Params) Validate() error {
	if p.ProductSKU == "" {
		return errors.Input("product SKU is required")
	}
	if p.StoreName == "" {
		return errors.Input("store name is required")
	}
	if p.SellingPrice < 0 || p.DisposalCost < 0 || p.ShortageCost < 0 {
		return errors.Input("costs must be non-negative")
	}
	return nil
}
