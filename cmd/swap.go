package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"blink-swap/config"
	"blink-swap/pkg/executor"
	"blink-swap/pkg/history"
	"blink-swap/pkg/jupiter"
	"blink-swap/pkg/parser"
	"blink-swap/pkg/types"
	"blink-swap/pkg/wallet"
)

var (
	swapSlippageBps int
	noConfirm       bool
	dryRun          bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <input-token> to <output-token>",
	Short: "Swap tokens through the Jupiter aggregator",
	Long: `Quote and execute a token swap on Solana through the Jupiter aggregator.

The swap transaction is signed with the wallet configured via
BLINK_SWAP_WALLET_PRIVATE_KEY (or wallet_private_key in ~/.blink-swap.yaml)
and submitted to the configured RPC endpoint.

Examples:
  # Swap 1 SOL for USDC
  blink-swap swap 1 SOL to USDC

  # Tighter slippage tolerance (25 bps = 0.25%)
  blink-swap swap 0.5 SOL to BARK --slippage-bps 25

  # Skip the confirmation prompt
  blink-swap swap 100 USDC to SOL --yes

  # Quote and build only, do not submit
  blink-swap swap 1 SOL to USDC --dry-run`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().IntVar(&swapSlippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Fetch the quote and build the transaction without submitting")
}

func runSwap(cmd *cobra.Command, args []string) {
	commandStr := strings.Join(args, " ")
	swapReq, err := parser.ParseSwapCommand(commandStr)
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
	if err := cfg.RequireWallet(); err != nil {
		printError(err)
		os.Exit(1)
	}

	signer, err := wallet.NewFromBase58(cfg.WalletKey)
	if err != nil {
		printError(fmt.Errorf("invalid wallet key: %w", err))
		os.Exit(1)
	}

	cat := buildCatalog(cfg)

	slippage := cfg.SlippageBps
	if swapSlippageBps > 0 {
		slippage = swapSlippageBps
	}

	req, err := resolveRequest(cat, swapReq, slippage)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	apiClient := jupiter.New(cfg.JupiterBaseURL, signer.PublicKey())

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Fetching quote..."
		s.Start()
	}

	ctx := context.Background()
	route, err := apiClient.FetchRoute(ctx, req)
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

	logger.Debug("route fetched",
		zap.String("in", route.InAmountDisplay().String()),
		zap.String("out", route.OutAmountDisplay().String()))

	if jsonOutput {
		printRouteJSON(route, "quote_generated")
	} else {
		displayRoute(route)
	}

	if dryRun {
		if !jsonOutput {
			fmt.Println("\nDry run: transaction not submitted.")
		}
		os.Exit(0)
	}

	if !noConfirm && !jsonOutput {
		if !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	// A quote reflects on-chain liquidity at fetch time. Refuse to sign one
	// that has been sitting at the prompt for too long.
	if route.OlderThan(cfg.QuoteMaxAge) {
		printError(fmt.Errorf("quote expired (older than %s); please re-run the swap", cfg.QuoteMaxAge))
		os.Exit(1)
	}

	broadcaster, err := executor.NewRPCBroadcaster(cfg.RPCUrl, cfg.Commitment, cfg.SkipPreflight)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	coord := executor.New(signer, broadcaster, logger,
		executor.WithConfirmTimeout(cfg.ConfirmTimeout),
		executor.WithPollInterval(cfg.PollInterval),
	)

	if !jsonOutput {
		s.Suffix = " Submitting swap..."
		s.Start()
	}

	attempt, execErr := coord.Execute(ctx, route)
	if !jsonOutput {
		s.Stop()
	}

	if attempt != nil {
		recordHistory(cfg, attempt, verbose)
	}

	if jsonOutput {
		printAttemptJSON(route, attempt, execErr)
		if execErr != nil {
			os.Exit(1)
		}
		return
	}

	displayOutcome(attempt, execErr)
	if execErr != nil {
		os.Exit(1)
	}
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func displayRoute(route *types.Route) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     SWAP QUOTE")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:          %s %s\n", route.InAmountDisplay(), color.YellowString(route.Request.InputAsset.Symbol))
	fmt.Printf("  To:            ~%s %s\n", route.OutAmountDisplay(), color.YellowString(route.Request.OutputAsset.Symbol))
	fmt.Printf("  Min Received:  %s %s\n", route.MinOutAmountDisplay(), route.Request.OutputAsset.Symbol)
	fmt.Printf("  Price Impact:  %s\n", formatPriceImpact(route.PriceImpactBps))
	fmt.Printf("  Slippage:      %d bps\n", route.Request.SlippageBps)

	if len(route.Hops) > 0 {
		fmt.Printf("\n  Route:\n")
		for i, hop := range route.Hops {
			fmt.Printf("    %d. %s (%s -> %s)\n", i+1, color.CyanString(hop.Venue), shortMint(hop.InputMint.String()), shortMint(hop.OutputMint.String()))
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func formatPriceImpact(bps int) string {
	pct := float64(bps) / 100
	switch {
	case bps >= 100:
		return color.RedString("%.2f%%", pct)
	case bps >= 25:
		return color.YellowString("%.2f%%", pct)
	default:
		return fmt.Sprintf("%.2f%%", pct)
	}
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}

func displayOutcome(attempt *executor.SwapAttempt, execErr error) {
	if attempt == nil {
		printError(execErr)
		return
	}

	switch attempt.Status {
	case executor.StatusConfirmed:
		color.Green("\n✓ Swap confirmed!")
		fmt.Printf("  Signature: %s\n", color.CyanString(attempt.Signature.String()))
		fmt.Printf("  Received:  ~%s %s\n", attempt.Route.OutAmountDisplay(), attempt.Route.Request.OutputAsset.Symbol)

	case executor.StatusFailed:
		switch attempt.Failure {
		case executor.FailureUserRejected:
			color.Yellow("\nSwap cancelled before submission.")
			fmt.Println("  No transaction was sent. Re-run the swap whenever you are ready.")
		case executor.FailureConfirmationTimeout:
			color.Yellow("\n⚠ Confirmation timed out.")
			fmt.Printf("  The transaction may still land. Check it with:\n")
			color.Cyan("    blink-swap status %s\n", attempt.Signature)
		case executor.FailureInvalidRoute:
			color.Red("\n✗ Swap failed: the quoted transaction could not be built.")
			fmt.Println("  Fetch a fresh quote and try again.")
		default:
			color.Red("\n✗ Swap rejected by the network.")
			if attempt.FailureDetail != "" {
				fmt.Printf("  Reason: %s\n", attempt.FailureDetail)
			}
			fmt.Println("  Prices may have moved. Fetch a fresh quote, or raise --slippage-bps.")
		}

	default:
		printError(execErr)
	}
}

func printRouteJSON(route *types.Route, status string) {
	output := map[string]interface{}{
		"input_amount":     route.InAmountDisplay(),
		"input_token":      route.Request.InputAsset.Symbol,
		"output_amount":    route.OutAmountDisplay(),
		"output_token":     route.Request.OutputAsset.Symbol,
		"min_out_amount":   route.MinOutAmountDisplay(),
		"price_impact_bps": route.PriceImpactBps,
		"slippage_bps":     route.Request.SlippageBps,
		"hops":             len(route.Hops),
		"status":           status,
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

func printAttemptJSON(route *types.Route, attempt *executor.SwapAttempt, execErr error) {
	output := map[string]interface{}{
		"input_amount":  route.InAmountDisplay(),
		"input_token":   route.Request.InputAsset.Symbol,
		"output_amount": route.OutAmountDisplay(),
		"output_token":  route.Request.OutputAsset.Symbol,
	}
	if attempt != nil {
		output["attempt_id"] = attempt.ID
		output["status"] = string(attempt.Status)
		if !attempt.Signature.IsZero() {
			output["signature"] = attempt.Signature.String()
		}
		if attempt.Failure != "" {
			output["failure"] = string(attempt.Failure)
		}
		if attempt.FailureDetail != "" {
			output["failure_detail"] = attempt.FailureDetail
		}
	}
	if execErr != nil {
		output["error"] = execErr.Error()
	}
	jsonData, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(jsonData))
}

func recordHistory(cfg *config.Config, attempt *executor.SwapAttempt, verbose bool) {
	store, err := history.NewStorage(cfg.HistoryFile)
	if err != nil {
		if verbose {
			fmt.Printf("\nDebug: could not open history file: %v\n", err)
		}
		return
	}
	if err := store.Append(history.RecordFromAttempt(attempt)); err != nil && verbose {
		fmt.Printf("\nDebug: could not record swap history: %v\n", err)
	}
}
