package cmd

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"blink-swap/config"
	"blink-swap/pkg/catalog"
	"blink-swap/pkg/parser"
	"blink-swap/pkg/types"
)

// buildCatalog assembles the asset catalog: static assets plus the community
// token injected from configuration.
func buildCatalog(cfg *config.Config) *catalog.Catalog {
	var extra []types.Asset
	if mint, err := solana.PublicKeyFromBase58(cfg.BarkMint); err == nil {
		extra = append(extra, types.Asset{
			Mint:     mint,
			Symbol:   "BARK",
			Name:     "BARK",
			Decimals: 9,
		})
	}
	return catalog.New(extra...)
}

// resolveRequest turns a parsed swap command into a validated quote request.
func resolveRequest(cat *catalog.Catalog, cmd *parser.SwapCommand, slippageBps int) (types.QuoteRequest, error) {
	inputAsset, ok := cat.FindAsset(cmd.InputSymbol)
	if !ok {
		return types.QuoteRequest{}, fmt.Errorf("unknown token '%s' (try: blink-swap tokens)", cmd.InputSymbol)
	}
	outputAsset, ok := cat.FindAsset(cmd.OutputSymbol)
	if !ok {
		return types.QuoteRequest{}, fmt.Errorf("unknown token '%s' (try: blink-swap tokens)", cmd.OutputSymbol)
	}

	req := types.QuoteRequest{
		InputAsset:  inputAsset,
		OutputAsset: outputAsset,
		InputAmount: cmd.Amount,
		SlippageBps: slippageBps,
	}
	if err := req.Validate(); err != nil {
		return types.QuoteRequest{}, err
	}
	return req, nil
}
