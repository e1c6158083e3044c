// Package cmd - run command
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/0ji3/a2a-supply-chain-project/adapters/pipelinefile"
	"github.com/0ji3/a2a-supply-chain-project/adapters/settlement"
	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
	"github.com/0ji3/a2a-supply-chain-project/internal/app"
	"github.com/0ji3/a2a-supply-chain-project/internal/config"
)

var (
	pipelineFile string
	productSKU   string
	productName  string
	category     string
	storeName    string
	weather      string
	dayType      string
	sellingPrice float64
	live         bool
	yes          bool
)

// runCmd executes one pipeline run
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the optimization pipeline for a product",
	Long: `Run the full phase sequence: each phase executes, is charged
under its payment scheme, and settles before the next phase starts.

Examples:
  supply-chain run --product TOMATO-001 --store "Shibuya Store"
  supply-chain run --product TOMATO-001 --store "Shibuya Store" --live
  supply-chain run --pipeline ./custom.hcl --product TOMATO-001 --store "Shibuya Store"`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&pipelineFile, "pipeline", "", "pipeline definition file (HCL); defaults to the built-in catalog")
	runCmd.Flags().StringVar(&productSKU, "product", "", "product SKU (required)")
	runCmd.Flags().StringVar(&productName, "name", "Tomato", "product display name")
	runCmd.Flags().StringVar(&category, "category", "vegetables", "product category")
	runCmd.Flags().StringVar(&storeName, "store", "", "store name (required)")
	runCmd.Flags().StringVar(&weather, "weather", "sunny", "tomorrow's weather")
	runCmd.Flags().StringVar(&dayType, "day-type", "weekend", "tomorrow's day type (weekday, weekend)")
	runCmd.Flags().Float64Var(&sellingPrice, "price", 198.0, "per-unit selling price")
	runCmd.Flags().BoolVar(&live, "live", false, "settle on the live chain instead of the simulator")
	runCmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the live-settlement confirmation prompt")

	_ = runCmd.MarkFlagRequired("product")
	_ = runCmd.MarkFlagRequired("store")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if live {
		cfg.Settlement.Mode = string(settlement.ModeLive)
	}

	// Live runs move real funds; ask before proceeding.
	if cfg.Settlement.Mode == string(settlement.ModeLive) && !yes {
		prompt := promptui.Prompt{
			Label:     "Settle payments on the live chain",
			IsConfirm: true,
		}
		if _, err := prompt.Run(); err != nil {
			fmt.Println("Aborted.")
			return nil
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}

	if pipelineFile != "" {
		def, err := pipelinefile.Load(pipelineFile)
		if err != nil {
			return err
		}
		a.Phases = def.Phases
	}

	// Fund the demo wallet when simulating, so balances are inspectable
	if sim, ok := a.Adapter.(*settlement.Simulated); ok {
		sim.Credit("0xStore", decimal.NewFromInt(1000))
	}

	orch, err := a.Orchestrator(pipeline.WithEventSink(printEvent))
	if err != nil {
		return err
	}

	params := pipeline.Params{
		ProductSKU:      productSKU,
		ProductName:     productName,
		ProductCategory: category,
		StoreName:       storeName,
		Weather:         weather,
		DayType:         dayType,
		SellingPrice:    sellingPrice,
		DisposalCost:    120.0,
		ShortageCost:    80.0,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := orch.Run(ctx, params)
	if err != nil {
		return err
	}

	printResult(result)
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func printEvent(ev pipeline.Event) {
	fmt.Printf("  [%s] %-20s %-10s %s\n",
		ev.Timestamp.Format("15:04:05"), ev.PhaseName, ev.Status, ev.Message)
}

func printResult(result *pipeline.Result) {
	fmt.Println()
	fmt.Println("Optimization result")
	fmt.Println("===================")
	fmt.Printf("  Store:    %s\n", result.Params.StoreName)
	fmt.Printf("  Product:  %s (%s)\n", result.Params.ProductName, result.Params.ProductSKU)

	if forecast := result.Output("demand_forecast"); forecast != nil {
		fmt.Printf("  Forecast: %v units\n", forecast["predicted_demand"])
	}
	if opt := result.Output("inventory_optimizer"); opt != nil {
		fmt.Printf("  Order:    %v units\n", opt["optimal_order_quantity"])
	}

	fmt.Println()
	fmt.Println("Payments")
	for i, tx := range result.Transactions {
		fmt.Printf("  %d. %s %s (%s) tx=%s\n",
			i+1, currency.ToDecimal(tx.Amount), currency.Symbol, tx.Scheme, tx.Reference)
	}
	fmt.Printf("\n  Total cost: %s %s\n", result.TotalCost, currency.Symbol)
	fmt.Printf("  Elapsed:    %s\n", result.Elapsed.Round(time.Millisecond))

	if !result.Success {
		fmt.Printf("\n  FAILED at %s: %s\n", result.FailedPhase, result.ErrorMessage)
	}
}
