package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"blink-swap/config"
	"blink-swap/pkg/executor"
)

var watchStatus bool

var statusCmd = &cobra.Command{
	Use:   "status <signature>",
	Short: "Check the on-chain status of a swap transaction",
	Long: `Check whether a submitted swap transaction has been confirmed.

Useful after a confirmation timeout: the transaction may still land even
though the swap command stopped waiting for it.

Examples:
  blink-swap status 5UfDu...
  blink-swap status 5UfDu... --watch`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Poll until the transaction reaches a terminal state")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sig, err := solana.SignatureFromBase58(args[0])
	if err != nil {
		printError(fmt.Errorf("invalid transaction signature: %w", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	broadcaster, err := executor.NewRPCBroadcaster(cfg.RPCUrl, cfg.Commitment, cfg.SkipPreflight)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if !watchStatus {
		status, err := broadcaster.SignatureStatus(context.Background(), sig)
		if err != nil {
			printError(err)
			os.Exit(1)
		}
		reportStatus(sig, status, jsonOutput)
		return
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	if !jsonOutput {
		fmt.Printf("Polling %s every %s (Ctrl+C to stop)\n", shortMint(sig.String()), cfg.PollInterval)
	}

	for {
		status, err := broadcaster.SignatureStatus(context.Background(), sig)
		if err != nil {
			if !jsonOutput {
				color.Yellow("[%s] poll failed: %v", time.Now().Format("15:04:05"), err)
			}
		} else {
			reportStatus(sig, status, jsonOutput)
			if status.Confirmed || status.Failed {
				return
			}
		}

		select {
		case <-sigCh:
			if !jsonOutput {
				fmt.Println("\nStopped.")
			}
			return
		case <-ticker.C:
		}
	}
}

func reportStatus(sig solana.Signature, status executor.TxStatus, jsonOutput bool) {
	if jsonOutput {
		output := map[string]interface{}{
			"signature": sig.String(),
			"state":     statusLabel(status),
		}
		if status.Reason != "" {
			output["reason"] = status.Reason
		}
		jsonData, _ := json.MarshalIndent(output, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	switch {
	case status.Confirmed:
		color.Green("✓ Confirmed")
	case status.Failed:
		color.Red("✗ Failed")
		if status.Reason != "" {
			fmt.Printf("  Reason: %s\n", status.Reason)
		}
	default:
		color.Yellow("… Pending")
	}
}

func statusLabel(status executor.TxStatus) string {
	switch {
	case status.Confirmed:
		return "confirmed"
	case status.Failed:
		return "failed"
	default:
		return "pending"
	}
}
