// Package cmd - summary and balance commands
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/0ji3/a2a-supply-chain-project/core/currency"
	"github.com/0ji3/a2a-supply-chain-project/internal/app"
	"github.com/0ji3/a2a-supply-chain-project/internal/config"
)

// summaryCmd prints the transaction summary of a fresh client. It is
// mostly useful against a live gateway where state persists outside
// this process; simulated runs report through `run` itself.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the payment transaction summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(config.Get())
		if err != nil {
			return err
		}

		summary := a.Client.TransactionSummary()
		fmt.Printf("Transactions: %d total, %d completed, %d failed\n",
			summary.TotalCount, summary.CompletedCount, summary.FailedCount)
		fmt.Printf("Total spent:  %s %s\n", summary.TotalSpent, currency.Symbol)
		for scheme, count := range summary.ByScheme {
			fmt.Printf("  %-10s %d\n", scheme, count)
		}
		return nil
	},
}

// balanceCmd queries an address's balances through the settlement adapter
var balanceCmd = &cobra.Command{
	Use:   "balance [address]",
	Short: "Query an address's native and token balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(config.Get())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		balance, err := a.Adapter.GetBalance(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Address: %s\n", balance.Address)
		fmt.Printf("Native:  %s\n", balance.Native)
		fmt.Printf("Token:   %s %s\n", balance.Token, currency.Symbol)
		return nil
	},
}
