package catalog

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	"blink-swap/pkg/types"
)

// Mint addresses of the assets the catalog always knows about.
var (
	SolMint  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	USDCMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

// staticAssets ship with the application. The community token is injected
// from configuration at catalog construction.
var staticAssets = []types.Asset{
	{Mint: SolMint, Symbol: "SOL", Name: "Solana", Decimals: 9},
	{Mint: USDCMint, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
}

// priorityMints are pinned to the top of ListAssets, in this order.
var priorityMints = []solana.PublicKey{SolMint, USDCMint}

// Catalog is a fixed, deduplicated set of swappable assets. It is populated
// once and never mutated afterwards, so lookups need no locking.
type Catalog struct {
	assets   []types.Asset
	bySymbol map[string]types.Asset
	byMint   map[solana.PublicKey]types.Asset
}

// New builds a catalog from the static assets plus any additional ones
// (injected community tokens, remote token list entries). Duplicate mints are
// dropped, first occurrence wins; source order is preserved apart from the
// pinned priority assets.
func New(extra ...types.Asset) *Catalog {
	c := &Catalog{
		bySymbol: make(map[string]types.Asset),
		byMint:   make(map[solana.PublicKey]types.Asset),
	}

	merged := make([]types.Asset, 0, len(staticAssets)+len(extra))
	merged = append(merged, staticAssets...)
	merged = append(merged, extra...)

	deduped := make([]types.Asset, 0, len(merged))
	for _, asset := range merged {
		if asset.Mint.IsZero() {
			continue
		}
		if _, seen := c.byMint[asset.Mint]; seen {
			continue
		}
		c.byMint[asset.Mint] = asset
		if _, taken := c.bySymbol[strings.ToUpper(asset.Symbol)]; !taken {
			c.bySymbol[strings.ToUpper(asset.Symbol)] = asset
		}
		deduped = append(deduped, asset)
	}

	c.assets = pinPriority(deduped)
	return c
}

// pinPriority moves the designated priority assets to the front, keeping the
// remainder in source order.
func pinPriority(assets []types.Asset) []types.Asset {
	ordered := make([]types.Asset, 0, len(assets))
	pinned := make(map[solana.PublicKey]bool, len(priorityMints))

	for _, mint := range priorityMints {
		for _, asset := range assets {
			if asset.Mint.Equals(mint) {
				ordered = append(ordered, asset)
				pinned[mint] = true
				break
			}
		}
	}
	for _, asset := range assets {
		if !pinned[asset.Mint] {
			ordered = append(ordered, asset)
		}
	}
	return ordered
}

// ListAssets returns the full asset list in pinned order. The returned slice
// is a copy; callers may not mutate catalog state through it.
func (c *Catalog) ListAssets() []types.Asset {
	out := make([]types.Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

// FindAsset looks an asset up by symbol (case-insensitive) or by mint
// address. A miss is a normal result, not an error: the identifier may be
// user input.
func (c *Catalog) FindAsset(identifier string) (types.Asset, bool) {
	if asset, ok := c.bySymbol[strings.ToUpper(strings.TrimSpace(identifier))]; ok {
		return asset, true
	}
	mint, err := solana.PublicKeyFromBase58(strings.TrimSpace(identifier))
	if err != nil {
		return types.Asset{}, false
	}
	asset, ok := c.byMint[mint]
	return asset, ok
}

// Count returns the number of assets in the catalog.
func (c *Catalog) Count() int {
	return len(c.assets)
}
