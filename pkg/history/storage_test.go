package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blink-swap/pkg/executor"
	"blink-swap/pkg/types"
)

func terminalAttempt(id string) *executor.SwapAttempt {
	sol := types.Asset{Mint: solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112"), Symbol: "SOL", Decimals: 9}
	usdc := types.Asset{Mint: solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"), Symbol: "USDC", Decimals: 6}

	var sig solana.Signature
	sig[0] = 0x7

	return &executor.SwapAttempt{
		ID: id,
		Route: &types.Route{
			Request: types.QuoteRequest{
				InputAsset:  sol,
				OutputAsset: usdc,
				InputAmount: decimal.NewFromInt(1),
				SlippageBps: 50,
			},
			InAmount:  1_000_000_000,
			OutAmount: 150_000_000,
			FetchedAt: time.Now(),
		},
		Status:      executor.StatusConfirmed,
		Signature:   sig,
		CreatedAt:   time.Now().Add(-time.Minute),
		CompletedAt: time.Now(),
	}
}

func TestRecordFromAttempt(t *testing.T) {
	rec := RecordFromAttempt(terminalAttempt("attempt-1"))

	assert.Equal(t, "attempt-1", rec.ID)
	assert.Equal(t, "SOL", rec.InputSymbol)
	assert.Equal(t, "USDC", rec.OutputSymbol)
	assert.Equal(t, "1", rec.InAmount)
	assert.Equal(t, "150", rec.OutAmount)
	assert.Equal(t, "confirmed", rec.Status)
	assert.NotEmpty(t, rec.Signature)
}

func TestStorage_AppendAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")

	s, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count())

	require.NoError(t, s.Append(RecordFromAttempt(terminalAttempt("first"))))
	require.NoError(t, s.Append(RecordFromAttempt(terminalAttempt("second"))))

	// newest first
	records := s.List()
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].ID)
	assert.Equal(t, "first", records[1].ID)

	// a fresh instance reads the same file back
	reloaded, err := NewStorage(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Count())
	assert.Equal(t, "second", reloaded.List()[0].ID)
}

func TestStorage_MissingFileIsEmpty(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "nope", "history.json"))
	require.NoError(t, err)
	assert.Empty(t, s.List())
}
