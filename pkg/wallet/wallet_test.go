package wallet

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTx(t *testing.T, payer solana.PublicKey) *solana.Transaction {
	t.Helper()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, payer, solana.NewWallet().PublicKey()).Build(),
		},
		solana.MustHashFromBase58("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM"),
		solana.TransactionPayer(payer),
	)
	require.NoError(t, err)
	return tx
}

func TestNewFromBase58(t *testing.T) {
	key := solana.NewWallet().PrivateKey

	w, err := NewFromBase58(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey())

	_, err = NewFromBase58("")
	assert.Error(t, err)

	_, err = NewFromBase58("not-a-key")
	assert.Error(t, err)
}

func TestWallet_SignTransaction(t *testing.T) {
	w, err := NewFromBase58(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	tx := newTestTx(t, w.PublicKey())
	signed, err := w.SignTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Len(t, signed.Signatures, 1)
	assert.False(t, signed.Signatures[0].IsZero())
}

func TestWallet_SignTransaction_CancelledContext(t *testing.T) {
	w, err := NewFromBase58(solana.NewWallet().PrivateKey.String())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = w.SignTransaction(ctx, newTestTx(t, w.PublicKey()))
	assert.ErrorIs(t, err, ErrRejected)
}
