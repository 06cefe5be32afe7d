// Package wallet provides a local keypair signer. Production deployments of
// the dashboard delegate signing to the user's wallet; this implementation
// backs the CLI and tests with the same interface.
package wallet

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// ErrRejected is returned when signing is declined (cancelled context).
var ErrRejected = errors.New("signing rejected")

// Wallet signs transactions with a locally held private key.
type Wallet struct {
	key solana.PrivateKey
}

// NewFromBase58 creates a wallet from a Base58-encoded private key.
func NewFromBase58(encoded string) (*Wallet, error) {
	if encoded == "" {
		return nil, errors.New("private key not configured")
	}
	key, err := solana.PrivateKeyFromBase58(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return &Wallet{key: key}, nil
}

// PublicKey returns the wallet's public key.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// SignTransaction signs the transaction in place and returns it. A cancelled
// context before signing maps to ErrRejected: it is the CLI's equivalent of
// the user dismissing the wallet prompt.
func (w *Wallet) SignTransaction(ctx context.Context, tx *solana.Transaction) (*solana.Transaction, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(ErrRejected, ctx.Err().Error())
	default:
	}

	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.key.PublicKey()) {
			return &w.key
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}
	return tx, nil
}
