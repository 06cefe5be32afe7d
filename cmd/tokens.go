package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blink-swap/config"
	"blink-swap/pkg/catalog"
	"blink-swap/pkg/types"
)

var (
	tokenFilter string
	allTokens   bool
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List swappable tokens",
	Long: `List the tokens available for swapping.

By default only the built-in catalog is shown. With --all the full Jupiter
strict token list is fetched and merged in.

Examples:
  blink-swap tokens
  blink-swap tokens --symbol usd
  blink-swap tokens --all`,
	Run: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)

	tokensCmd.Flags().StringVar(&tokenFilter, "symbol", "", "Filter by symbol substring")
	tokensCmd.Flags().BoolVar(&allTokens, "all", false, "Fetch the full remote token list")
}

func runTokens(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cat := buildCatalog(cfg)

	if allTokens {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		if !jsonOutput {
			s.Suffix = " Fetching token list..."
			s.Start()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		remote := catalog.NewRemoteList(cfg.TokenListURL)
		merged, err := catalog.Load(ctx, remote, cat.ListAssets()...)
		cancel()
		if !jsonOutput {
			s.Stop()
		}
		if err != nil {
			color.Yellow("Could not fetch remote token list, showing built-in catalog only.")
			if verbose {
				fmt.Printf("Debug: %v\n", err)
			}
		}
		cat = merged
	}

	assets := cat.ListAssets()
	if tokenFilter != "" {
		assets = filterAssets(assets, tokenFilter)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(assets, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(assets) == 0 {
		fmt.Println("No tokens match.")
		return
	}

	fmt.Printf("\n%-10s %-10s %-30s %s\n", "SYMBOL", "DECIMALS", "NAME", "MINT")
	fmt.Println(strings.Repeat("-", 100))
	for _, a := range assets {
		fmt.Printf("%-10s %-10d %-30s %s\n",
			color.YellowString(a.Symbol), a.Decimals, truncate(a.Name, 30), a.Mint)
	}
	fmt.Printf("\n%d tokens\n", len(assets))
}

func filterAssets(assets []types.Asset, filter string) []types.Asset {
	needle := strings.ToLower(filter)
	var out []types.Asset
	for _, a := range assets {
		if strings.Contains(strings.ToLower(a.Symbol), needle) {
			out = append(out, a)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-2] + ".."
}
