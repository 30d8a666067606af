package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "equitysim",
	Short: "A discrete-event equity market simulator",
	Long: `Equitysim replays a historical timeline of market events (price bars,
dividend lifecycle events, earnings) and drives a simulated brokerage
account through them under a pluggable trading strategy.

It provides tools for:
  - Running event-driven backtests over a date range
  - FIFO lot accounting with realized PnL
  - Dividend entitlement capture and deferred cash settlement
  - Bid-ask spreads estimated from price history (Roll's estimator)
  - Importing historical event data into a local SQLite store
  - Journaling trades and daily equity curves to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
