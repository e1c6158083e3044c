// Package cmd provides the CLI commands for the supply-chain pipeline.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0ji3/a2a-supply-chain-project/internal/config"
	"github.com/0ji3/a2a-supply-chain-project/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "supply-chain",
	Short: "Run the agent-to-agent payment pipeline",
	Long: `supply-chain coordinates a multi-phase optimization pipeline in
which each phase is performed by an independent agent and settled
through a micropayment before the next phase runs.

Examples:
  supply-chain run --product TOMATO-001 --store "Shibuya Store"
  supply-chain run --pipeline ./pipeline.hcl --product TOMATO-001 --store "Shibuya Store"
  supply-chain summary
  supply-chain balance 0x70997970C51812dc3A010C7d01b50e0d17dc79C8`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.supply-chain.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("supply-chain version 0.1.0")
	},
}
