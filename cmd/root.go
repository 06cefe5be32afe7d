package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "blink-swap",
	Short: "A CLI for Solana token swaps powered by the Jupiter aggregator",
	Long: `blink-swap is the Blinkboard swap workflow as a command-line tool. It quotes
token pairs through the Jupiter v6 aggregator, keeps quotes fresh while you
decide, and drives a confirmed swap to a terminal state.

Examples:
  blink-swap swap 1 SOL to USDC
  blink-swap quote 0.5 SOL to BARK --watch
  blink-swap tokens
  blink-swap status <signature>
  blink-swap history`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

// newLogger builds the structured logger behind --verbose. Normal CLI output
// stays on plain colored prints; the logger carries debug detail.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}
