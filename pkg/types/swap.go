package types

import (
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Slippage tolerance bounds in basis points.
const (
	MinSlippageBps = 0
	MaxSlippageBps = 500
)

// Asset describes a swappable SPL token. Immutable once loaded.
type Asset struct {
	Mint     solana.PublicKey `json:"mint"`
	Symbol   string           `json:"symbol"`
	Name     string           `json:"name"`
	Decimals uint8            `json:"decimals"`
	LogoURI  string           `json:"logo_uri,omitempty"`
}

// ToBaseUnits converts a display amount to the asset's smallest unit.
// Fractional dust below the asset's precision is truncated.
func (a Asset) ToBaseUnits(amount decimal.Decimal) (uint64, error) {
	if amount.Sign() <= 0 {
		return 0, errors.Errorf("amount must be greater than 0, got %s", amount)
	}
	shifted := amount.Shift(int32(a.Decimals)).Floor()
	bi := shifted.BigInt()
	if !bi.IsUint64() || bi.Sign() <= 0 {
		return 0, errors.Errorf("amount %s %s is out of range", amount, a.Symbol)
	}
	return bi.Uint64(), nil
}

// FromBaseUnits converts an amount in the asset's smallest unit to a display amount.
func (a Asset) FromBaseUnits(units uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -int32(a.Decimals))
}

// QuoteRequest captures one request for a price quote. Requests are immutable;
// a later edit supersedes the request rather than mutating it.
type QuoteRequest struct {
	InputAsset  Asset
	OutputAsset Asset
	InputAmount decimal.Decimal
	SlippageBps int
}

// Validate reports whether the request can be sent to the aggregator.
func (r QuoteRequest) Validate() error {
	if r.InputAsset.Mint.IsZero() {
		return errors.New("input asset is required")
	}
	if r.OutputAsset.Mint.IsZero() {
		return errors.New("output asset is required")
	}
	if r.InputAsset.Mint.Equals(r.OutputAsset.Mint) {
		return errors.New("input and output assets must differ")
	}
	if r.InputAmount.Sign() <= 0 {
		return errors.New("input amount must be greater than 0")
	}
	if r.SlippageBps < MinSlippageBps || r.SlippageBps > MaxSlippageBps {
		return errors.Errorf("slippage tolerance must be between %d and %d bps, got %d",
			MinSlippageBps, MaxSlippageBps, r.SlippageBps)
	}
	return nil
}

// RouteHop is one venue in a multi-hop exchange route.
type RouteHop struct {
	Venue      string           `json:"venue"`
	InputMint  solana.PublicKey `json:"input_mint"`
	OutputMint solana.PublicKey `json:"output_mint"`
	FeeAmount  uint64           `json:"fee_amount"`
	FeeMint    solana.PublicKey `json:"fee_mint"`
}

// Route is a priced exchange plan produced by the aggregator for one
// QuoteRequest. Amounts are in each asset's smallest unit. SwapTransaction
// holds the base64-encoded transaction template ready for signing.
type Route struct {
	Request         QuoteRequest
	InAmount        uint64
	OutAmount       uint64
	MinOutAmount    uint64
	PriceImpactBps  int
	Hops            []RouteHop
	SwapTransaction string
	FetchedAt       time.Time
}

// InAmountDisplay returns the quoted input in display units.
func (r *Route) InAmountDisplay() decimal.Decimal {
	return r.Request.InputAsset.FromBaseUnits(r.InAmount)
}

// OutAmountDisplay returns the quoted output in display units.
func (r *Route) OutAmountDisplay() decimal.Decimal {
	return r.Request.OutputAsset.FromBaseUnits(r.OutAmount)
}

// MinOutAmountDisplay returns the slippage-adjusted minimum output in display units.
func (r *Route) MinOutAmountDisplay() decimal.Decimal {
	return r.Request.OutputAsset.FromBaseUnits(r.MinOutAmount)
}

// OlderThan reports whether the route was fetched more than maxAge ago.
func (r *Route) OlderThan(maxAge time.Duration) bool {
	return time.Since(r.FetchedAt) > maxAge
}
