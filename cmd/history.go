package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blink-swap/config"
	"blink-swap/pkg/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past swap attempts",
	Long: `Show swap attempts recorded on this machine, newest first.

Examples:
  blink-swap history
  blink-swap history --limit 5
  blink-swap history --json`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of records to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	store, err := history.NewStorage(cfg.HistoryFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := store.List()
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(records) == 0 {
		fmt.Println("No swaps recorded yet.")
		return
	}

	fmt.Printf("\n%-20s %-24s %-12s %s\n", "WHEN", "SWAP", "STATUS", "SIGNATURE")
	fmt.Println(strings.Repeat("-", 100))
	for _, rec := range records {
		swap := fmt.Sprintf("%s %s -> %s %s", rec.InAmount, rec.InputSymbol, rec.OutAmount, rec.OutputSymbol)
		sig := rec.Signature
		if sig != "" {
			sig = shortMint(sig)
		}
		fmt.Printf("%-20s %-24s %-12s %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			swap,
			historyStatus(rec),
			sig)
	}
	fmt.Printf("\n%d of %d records (%s)\n", len(records), store.Count(), store.FilePath())
}

func historyStatus(rec history.Record) string {
	switch rec.Status {
	case "confirmed":
		return color.GreenString(rec.Status)
	case "failed":
		if rec.Failure != "" {
			return color.RedString(rec.Failure)
		}
		return color.RedString(rec.Status)
	default:
		return rec.Status
	}
}
