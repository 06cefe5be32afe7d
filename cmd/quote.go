package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blink-swap/config"
	"blink-swap/pkg/jupiter"
	"blink-swap/pkg/parser"
	"blink-swap/pkg/quoter"
	"blink-swap/pkg/types"
)

var (
	quoteSlippageBps int
	watchQuote       bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <amount> <input-token> to <output-token>",
	Short: "Fetch a swap quote without executing",
	Long: `Fetch a Jupiter quote for a swap without signing or submitting anything.

With --watch the quote is kept fresh: it refreshes on an interval and marks
itself stale while a newer quote is in flight. Press Ctrl+C to stop.

Examples:
  blink-swap quote 1 SOL to USDC
  blink-swap quote 0.5 SOL to BARK --slippage-bps 25
  blink-swap quote 1 SOL to USDC --watch`,
	Args: cobra.MinimumNArgs(1),
	Run:  runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)

	quoteCmd.Flags().IntVar(&quoteSlippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
	quoteCmd.Flags().BoolVarP(&watchQuote, "watch", "w", false, "Keep the quote fresh until interrupted")
}

func runQuote(cmd *cobra.Command, args []string) {
	commandStr := strings.Join(args, " ")
	quoteReq, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	logger := newLogger(verbose)
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	cat := buildCatalog(cfg)

	slippage := cfg.SlippageBps
	if quoteSlippageBps > 0 {
		slippage = quoteSlippageBps
	}

	req, err := resolveRequest(cat, quoteReq, slippage)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	// Quoting needs no wallet; the template is built against whichever key
	// is configured, or a throwaway one when none is.
	user := solana.NewWallet().PublicKey()
	apiClient := jupiter.New(cfg.JupiterBaseURL, user)

	if watchQuote {
		watchQuoteLoop(apiClient, req, cfg, logger)
		return
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	route, err := apiClient.FetchRoute(context.Background(), req)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		if errors.Is(err, jupiter.ErrNoRoute) {
			printError(fmt.Errorf("no route found for %s -> %s at this size", req.InputAsset.Symbol, req.OutputAsset.Symbol))
		} else {
			printError(err)
		}
		os.Exit(1)
	}

	if jsonOutput {
		printRouteJSON(route, "quote")
		return
	}
	displayRoute(route)
}

func watchQuoteLoop(fetcher quoter.RouteFetcher, req types.QuoteRequest, cfg *config.Config, logger *zap.Logger) {
	ctrl := quoter.NewController(fetcher, logger,
		quoter.WithRefreshInterval(cfg.RefreshInterval),
		quoter.WithDebounce(cfg.Debounce),
	)
	defer ctrl.Close()

	ctrl.Submit(req)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Printf("Watching %s %s -> %s (refresh every %s, Ctrl+C to stop)\n",
		req.InputAmount, req.InputAsset.Symbol, req.OutputAsset.Symbol, cfg.RefreshInterval)

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastShown time.Time
	var lastState quoter.State

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopped.")
			return
		case <-ticker.C:
			snap := ctrl.Snapshot()
			switch snap.State {
			case quoter.StateReady:
				if snap.Route != nil && snap.Route.FetchedAt.After(lastShown) {
					lastShown = snap.Route.FetchedAt
					printWatchLine(snap)
				}
			case quoter.StateError:
				if lastState != quoter.StateError {
					color.Red("[%s] quote failed: %v", time.Now().Format("15:04:05"), snap.Err)
				}
			}
			lastState = snap.State
		}
	}
}

func printWatchLine(snap quoter.Snapshot) {
	route := snap.Route
	line := fmt.Sprintf("[%s] %s %s -> %s %s (impact %s, min %s)",
		route.FetchedAt.Format("15:04:05"),
		route.InAmountDisplay(), route.Request.InputAsset.Symbol,
		route.OutAmountDisplay(), color.YellowString(route.Request.OutputAsset.Symbol),
		formatPriceImpact(route.PriceImpactBps),
		route.MinOutAmountDisplay())
	fmt.Println(line)
}
