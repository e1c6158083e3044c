// Package pipelinefile loads pipeline definitions from HCL files. A
// definition names the pipeline and declares its phases in execution
// order, each with its provider, charging scheme, costs, and payment
// destination:
//
//	pipeline "supply-chain" {
//	  phase "demand_forecast" {
//	    display_name    = "Demand Forecast"
//	    provider_id     = 1
//	    scheme          = "upto"
//	    base_cost       = "3.0"
//	    max_cost        = "10.0"
//	    rate_per_1000   = "0.02"
//	    payment_address = "0x3C44..."
//	  }
//	}
package pipelinefile

import (
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
)

// Definition is a named pipeline with its ordered phases
type Definition struct {
	// Name is the pipeline label
	Name string

	// Phases are the configured phases in file order
	Phases []pipeline.PhaseConfig
}

type fileRoot struct {
	Pipelines []pipelineBlock `hcl:"pipeline,block"`
}

type pipelineBlock struct {
	Name   string       `hcl:"name,label"`
	Phases []phaseBlock `hcl:"phase,block"`
}

type phaseBlock struct {
	Name           string  `hcl:"name,label"`
	DisplayName    string  `hcl:"display_name,optional"`
	ProviderID     int64   `hcl:"provider_id"`
	Scheme         string  `hcl:"scheme"`
	BaseCost       string  `hcl:"base_cost"`
	MaxCost        *string `hcl:"max_cost,optional"`
	RatePer1000    *string `hcl:"rate_per_1000,optional"`
	PaymentAddress string  `hcl:"payment_address"`
}

// Load parses a pipeline definition file. The first pipeline block in
// the file is returned; files must contain exactly one.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("failed to read pipeline file", err)
	}
	return Parse(data, path)
}

// Parse decodes HCL source into a Definition. filename is used in
// diagnostics only.
func Parse(src []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Config("failed to parse pipeline file", diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, errors.Config("failed to decode pipeline file", diags)
	}

	if len(root.Pipelines) != 1 {
		return nil, errors.Newf(errors.TypeConfig,
			"pipeline file must contain exactly one pipeline block, found %d", len(root.Pipelines))
	}

	return definitionFromBlock(&root.Pipelines[0])
}

func definitionFromBlock(block *pipelineBlock) (*Definition, error) {
	if len(block.Phases) == 0 {
		return nil, errors.Newf(errors.TypeConfig, "pipeline %q declares no phases", block.Name)
	}

	def := &Definition{Name: block.Name}
	for i := range block.Phases {
		cfg, err := phaseFromBlock(&block.Phases[i])
		if err != nil {
			return nil, err
		}
		def.Phases = append(def.Phases, *cfg)
	}
	return def, nil
}

func phaseFromBlock(block *phaseBlock) (*pipeline.PhaseConfig, error) {
	scheme, err := protocol.ParseScheme(block.Scheme)
	if err != nil {
		return nil, errors.Config("phase "+block.Name, err)
	}

	baseCost, err := decimal.NewFromString(block.BaseCost)
	if err != nil {
		return nil, errors.Config("phase "+block.Name+": invalid base cost", err)
	}

	var maxCost *decimal.Decimal
	if block.MaxCost != nil {
		mc, err := decimal.NewFromString(*block.MaxCost)
		if err != nil {
			return nil, errors.Config("phase "+block.Name+": invalid max cost", err)
		}
		maxCost = &mc
	}

	rate := decimal.Zero
	if block.RatePer1000 != nil {
		rate, err = decimal.NewFromString(*block.RatePer1000)
		if err != nil {
			return nil, errors.Config("phase "+block.Name+": invalid rate", err)
		}
	}

	displayName := block.DisplayName
	if displayName == "" {
		displayName = block.Name
	}

	cfg := &pipeline.PhaseConfig{
		Name:           block.Name,
		DisplayName:    displayName,
		ProviderID:     block.ProviderID,
		Scheme:         scheme,
		BaseCost:       baseCost,
		MaxCost:        maxCost,
		RatePer1000:    rate,
		PaymentAddress: block.PaymentAddress,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
