// Package app wires the payment client, executors, and orchestrator
// from application configuration.
package app

import (
	"time"

	"github.com/0ji3/a2a-supply-chain-project/adapters/settlement"
	"github.com/0ji3/a2a-supply-chain-project/core/executor"
	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
	"github.com/0ji3/a2a-supply-chain-project/internal/config"
	"github.com/0ji3/a2a-supply-chain-project/internal/errors"
	"github.com/0ji3/a2a-supply-chain-project/internal/logging"
)

// App holds the assembled application components
type App struct {
	// Adapter is the configured settlement backend
	Adapter settlement.Adapter

	// Client is the payment protocol engine
	Client *protocol.Client

	// Registry holds the built-in phase executors
	Registry *executor.Registry

	// Phases is the configured phase catalog
	Phases []pipeline.PhaseConfig
}

// New assembles the application from configuration. The settlement
// backend is chosen by the configured mode, never inferred.
func New(cfg *config.Config) (*App, error) {
	adapter, err := buildAdapter(&cfg.Settlement)
	if err != nil {
		return nil, err
	}

	opts := []protocol.Option{
		protocol.WithLogger(logging.Named("protocol")),
	}
	if cfg.Client.StrictExact {
		opts = append(opts, protocol.WithStrictExact())
	}
	if cfg.Client.ConfirmTimeoutSeconds > 0 {
		opts = append(opts, protocol.WithConfirmation(
			time.Duration(cfg.Client.ConfirmTimeoutSeconds)*time.Second))
	}

	client := protocol.NewClient(cfg.Client.RequesterID, adapter, protocol.NewLedger(), opts...)

	registry := executor.NewRegistry(
		executor.NewDemandForecast(logging.Named("forecast")),
		executor.NewInventoryOptimizer(logging.Named("optimizer")),
		executor.NewReportGenerator(logging.Named("report")),
	)

	phases, err := pipeline.DefaultPhases()
	if err != nil {
		return nil, err
	}

	return &App{
		Adapter:  adapter,
		Client:   client,
		Registry: registry,
		Phases:   phases,
	}, nil
}

// Orchestrator builds a pipeline orchestrator over the app's phases
func (a *App) Orchestrator(opts ...pipeline.OrchestratorOption) (*pipeline.Orchestrator, error) {
	opts = append(opts, pipeline.WithPipelineLogger(logging.Named("pipeline")))
	return pipeline.NewOrchestrator(a.Client, a.Registry, a.Phases, opts...)
}

func buildAdapter(cfg *config.SettlementConfig) (settlement.Adapter, error) {
	mode, err := settlement.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	switch mode {
	case settlement.ModeSimulated:
		return settlement.NewSimulated(
			settlement.WithConfirmDelay(time.Duration(cfg.ConfirmDelayMs)*time.Millisecond),
			settlement.WithSimulatedLogger(logging.Named("settlement")),
		), nil
	case settlement.ModeLive:
		if cfg.GatewayURL == "" {
			return nil, errors.New(errors.TypeConfig, "live settlement requires gateway_url")
		}
		return settlement.NewGateway(cfg.GatewayURL, cfg.TokenAddress,
			settlement.WithGatewayLogger(logging.Named("settlement")),
		), nil
	default:
		return nil, errors.Newf(errors.TypeConfig, "unknown settlement mode: %q", mode)
	}
}
