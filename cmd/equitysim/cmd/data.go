package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/equitysim/store"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Manage the historical event store",
}

var dataImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import event CSVs into the store",
	Long: `Import loads historical market events into the SQLite event store.

Accepted inputs:
  events.csv      plain CSV
  events.csv.xz   xz-compressed CSV
  events.zip      zip archive of CSVs

CSV columns: type,begin,end,ticker,exchange followed by the per-type payload:
  OHLCV                  open,high,low,close,volume
  DIVIDEND_ANNOUNCEMENT  amount,ex_dividend_date,payment_date
  EX_DIVIDEND            amount,payment_date
  DIVIDEND_PAYMENT       amount
  EARNINGS               eps,eps_estimate,estimate_count,fiscal_quarter_end`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDataImport,
}

var dataImportDB string

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataImportCmd)

	dataImportCmd.Flags().StringVarP(&dataImportDB, "db", "d", "./events.sqlite", "path to the SQLite event store")
}

func runDataImport(cmd *cobra.Command, args []string) error {
	st, err := store.NewSQLite(dataImportDB)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer st.Close()

	total := 0
	for _, path := range args {
		n, err := store.Import(st, path)
		total += n
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Printf("%s: %d events\n", path, n)
	}

	fmt.Printf("Imported %d events into %s\n", total, dataImportDB)
	return nil
}
