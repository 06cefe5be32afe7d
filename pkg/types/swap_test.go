package types

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testSOL = Asset{
		Mint:     solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"),
		Symbol:   "SOL",
		Decimals: 9,
	}
	testUSDC = Asset{
		Mint:     solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		Symbol:   "USDC",
		Decimals: 6,
	}
)

func TestAsset_ToBaseUnits(t *testing.T) {
	units, err := testSOL.ToBaseUnits(decimal.RequireFromString("1.5"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_500_000_000), units)

	units, err = testUSDC.ToBaseUnits(decimal.RequireFromString("0.000001"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), units)
}

func TestAsset_ToBaseUnits_TruncatesDust(t *testing.T) {
	// 7 decimal places against a 6-decimal asset: the trailing digit is dropped.
	units, err := testUSDC.ToBaseUnits(decimal.RequireFromString("1.2345678"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1_234_567), units)
}

func TestAsset_ToBaseUnits_Rejects(t *testing.T) {
	_, err := testSOL.ToBaseUnits(decimal.Zero)
	assert.Error(t, err)

	_, err = testSOL.ToBaseUnits(decimal.RequireFromString("-1"))
	assert.Error(t, err)

	// 10^12 SOL overflows uint64 base units.
	_, err = testSOL.ToBaseUnits(decimal.RequireFromString("1000000000000"))
	assert.Error(t, err)
}

func TestAsset_FromBaseUnits(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1.5").Equal(testSOL.FromBaseUnits(1_500_000_000)))
	assert.True(t, decimal.RequireFromString("0.000001").Equal(testUSDC.FromBaseUnits(1)))
	assert.True(t, decimal.Zero.Equal(testUSDC.FromBaseUnits(0)))
}

func TestQuoteRequest_Validate(t *testing.T) {
	valid := QuoteRequest{
		InputAsset:  testSOL,
		OutputAsset: testUSDC,
		InputAmount: decimal.NewFromInt(1),
		SlippageBps: 50,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*QuoteRequest)
	}{
		{"missing input asset", func(r *QuoteRequest) { r.InputAsset = Asset{} }},
		{"missing output asset", func(r *QuoteRequest) { r.OutputAsset = Asset{} }},
		{"same asset both sides", func(r *QuoteRequest) { r.OutputAsset = testSOL }},
		{"zero amount", func(r *QuoteRequest) { r.InputAmount = decimal.Zero }},
		{"negative amount", func(r *QuoteRequest) { r.InputAmount = decimal.NewFromInt(-1) }},
		{"negative slippage", func(r *QuoteRequest) { r.SlippageBps = -1 }},
		{"slippage above cap", func(r *QuoteRequest) { r.SlippageBps = MaxSlippageBps + 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestRoute_Displays(t *testing.T) {
	route := &Route{
		Request: QuoteRequest{
			InputAsset:  testSOL,
			OutputAsset: testUSDC,
		},
		InAmount:     1_000_000_000,
		OutAmount:    150_000_000,
		MinOutAmount: 149_250_000,
	}
	assert.Equal(t, "1", route.InAmountDisplay().String())
	assert.Equal(t, "150", route.OutAmountDisplay().String())
	assert.Equal(t, "149.25", route.MinOutAmountDisplay().String())
}

func TestRoute_OlderThan(t *testing.T) {
	route := &Route{FetchedAt: time.Now().Add(-2 * time.Minute)}
	assert.True(t, route.OlderThan(time.Minute))

	route.FetchedAt = time.Now()
	assert.False(t, route.OlderThan(time.Minute))
}
