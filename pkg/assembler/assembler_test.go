package assembler

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blink-swap/pkg/types"
)

// templateFor builds a serialized transaction the way the aggregator would
// return it: payer first, a single instruction, recent blockhash set.
func templateFor(t *testing.T, payer solana.PublicKey) string {
	t.Helper()

	recipient := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	instruction := system.NewTransferInstruction(1_000_000, payer, recipient).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		solana.MustHashFromBase58("9zMUsvVvz7yYuTXS7Qs7didkVdWEzNyZ6SyNpCmkfHbX"),
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func routeWithTemplate(template string) *types.Route {
	return &types.Route{
		SwapTransaction: template,
		FetchedAt:       time.Now(),
	}
}

func TestBuildTransaction(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	route := routeWithTemplate(templateFor(t, payer))

	tx, err := BuildTransaction(route, payer)
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.Equal(t, payer, tx.Message.AccountKeys[0])
	assert.Empty(t, tx.Signatures)
}

func TestBuildTransaction_Deterministic(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	route := routeWithTemplate(templateFor(t, payer))

	first, err := BuildTransaction(route, payer)
	require.NoError(t, err)
	second, err := BuildTransaction(route, payer)
	require.NoError(t, err)

	firstRaw, err := first.Message.MarshalBinary()
	require.NoError(t, err)
	secondRaw, err := second.Message.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, firstRaw, secondRaw)
}

func TestBuildTransaction_FeePayerMismatch(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()
	route := routeWithTemplate(templateFor(t, payer))

	_, err := BuildTransaction(route, other)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRoute))
}

func TestBuildTransaction_MalformedTemplate(t *testing.T) {
	payer := solana.NewWallet().PublicKey()

	for name, route := range map[string]*types.Route{
		"nil route":      nil,
		"empty template": routeWithTemplate(""),
		"not base64":     routeWithTemplate("!!not-base64!!"),
		"truncated":      routeWithTemplate(base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})),
	} {
		_, err := BuildTransaction(route, payer)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrInvalidRoute), name)
	}
}
