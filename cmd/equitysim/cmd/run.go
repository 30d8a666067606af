package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/equitysim/backtest"
	"github.com/rustyeddy/equitysim/config"
	"github.com/rustyeddy/equitysim/feed"
	"github.com/rustyeddy/equitysim/journal"
	"github.com/rustyeddy/equitysim/market"
	"github.com/rustyeddy/equitysim/sim"
	"github.com/rustyeddy/equitysim/store"
	"github.com/rustyeddy/equitysim/strategies"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation over a date range",
	Long: `Run replays stored market events day by day and drives the simulated
brokerage account through them under the chosen strategy.

Supported strategies:
  - noop: never trades (baseline)
  - buy-hold: goes all-in on the ticker at the first opportunity
  - dividend-capture: buys on announcements, exits after the ex-dividend day

Example:
  equitysim run --db events.sqlite --start 2024-09-01 --end 2024-12-31 \
      --strategy buy-hold --ticker IVV --cash 100000000`,
	RunE: runSimulation,
}

var (
	runConfigPath string
	runDBPath     string
	runCash       int64
	runAccountID  string
	runStart      string
	runEnd        string
	runStrategy   string
	runTicker     string
	runJournal    string
	runTrades     string
	runEquity     string
	runJournalDB  string
	runQuiet      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "config file (flags override it)")
	runCmd.Flags().StringVarP(&runDBPath, "db", "d", "./events.sqlite", "path to the SQLite event store")
	runCmd.Flags().Int64Var(&runCash, "cash", 100_000_000, "starting cash in the smallest currency unit")
	runCmd.Flags().StringVar(&runAccountID, "account", "SIM-001", "account ID for journaling")
	runCmd.Flags().StringVar(&runStart, "start", "", "first simulated day (2006-01-02)")
	runCmd.Flags().StringVar(&runEnd, "end", "", "last simulated day, inclusive (2006-01-02)")
	runCmd.Flags().StringVarP(&runStrategy, "strategy", "s", "noop", "strategy name (noop, buy-hold, dividend-capture)")
	runCmd.Flags().StringVarP(&runTicker, "ticker", "t", "IVV", "strategy ticker")
	runCmd.Flags().StringVar(&runJournal, "journal", "none", "journal type (none, csv, sqlite)")
	runCmd.Flags().StringVar(&runTrades, "trades-file", "./trades.csv", "CSV journal: trades output path")
	runCmd.Flags().StringVar(&runEquity, "equity-file", "./equity.csv", "CSV journal: equity output path")
	runCmd.Flags().StringVar(&runJournalDB, "journal-db", "./journal.sqlite", "SQLite journal: database path")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress per-day progress output")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if runConfigPath != "" {
		loaded, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	applyFlags(cmd, cfg)

	start, end, err := cfg.Backtest.Dates()
	if err != nil {
		return err
	}

	st, err := store.NewSQLite(cfg.Data.DBPath)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}
	defer st.Close()

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	strat, err := strategies.ByName(cfg.Backtest.Strategy, cfg.Backtest.Ticker)
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	data := feed.New(st, feed.StartOfDay(start))
	ledger := sim.NewLedger(cfg.Account.Cash, data, j)

	runner := &backtest.Runner{
		Strategy:  strat,
		Brokerage: ledger,
		Data:      data,
		Journal:   j,
	}
	if !runQuiet {
		runner.OnDay = func(day time.Time, value market.Cash) {
			fmt.Printf("Processed day %s: market value %s\n",
				day.Format("2006-01-02"), market.FormatPrice(value))
		}
	}

	final, err := runner.Run(start, end)
	if err != nil {
		return err
	}

	fmt.Printf("\nAccount %s  %s -> %s  strategy=%s\n",
		cfg.Account.ID, cfg.Backtest.Start, cfg.Backtest.End, strat.Name())
	fmt.Printf("Starting cash: %s\n", market.FormatPrice(cfg.Account.Cash))
	fmt.Printf("Final value:   %s\n", market.FormatPrice(final))
	fmt.Printf("Cash:          %s\n", market.FormatPrice(ledger.Cash()))
	fmt.Printf("Open lots:     %d\n", len(ledger.Positions()))
	fmt.Printf("Realized PnL:  %s over %d fills\n",
		market.FormatPrice(realized(ledger)), len(ledger.PNLs()))
	return nil
}

// applyFlags lets explicit flags override a loaded config file.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("db") {
		cfg.Data.DBPath = runDBPath
	}
	if set("cash") {
		cfg.Account.Cash = runCash
	}
	if set("account") {
		cfg.Account.ID = runAccountID
	}
	if set("start") || cfg.Backtest.Start == "" {
		cfg.Backtest.Start = runStart
	}
	if set("end") || cfg.Backtest.End == "" {
		cfg.Backtest.End = runEnd
	}
	if set("strategy") {
		cfg.Backtest.Strategy = runStrategy
	}
	if set("ticker") {
		cfg.Backtest.Ticker = runTicker
	}
	if set("journal") {
		cfg.Journal.Type = runJournal
	}
	if set("trades-file") {
		cfg.Journal.TradesFile = runTrades
	}
	if set("equity-file") {
		cfg.Journal.EquityFile = runEquity
	}
	if set("journal-db") {
		cfg.Journal.DBPath = runJournalDB
	}
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "none", "":
		return journal.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}

func realized(l *sim.Ledger) market.Cash {
	var total market.Cash
	for _, p := range l.PNLs() {
		total += p.Realized()
	}
	return total
}
