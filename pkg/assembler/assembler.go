// Package assembler turns an accepted route into a signable transaction.
// It is a pure transformation of the route's serialized template; freshness
// of the route is the caller's concern.
package assembler

import (
	"encoding/base64"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"

	"blink-swap/pkg/types"
)

// ErrInvalidRoute indicates a malformed transaction template. A route
// produced by the route client in the same session should never trip this.
var ErrInvalidRoute = errors.New("invalid route template")

// BuildTransaction decodes the route's transaction template into an unsigned
// transaction for the given signer. Deterministic for identical inputs; no
// network I/O.
func BuildTransaction(route *types.Route, signer solana.PublicKey) (*solana.Transaction, error) {
	if route == nil || route.SwapTransaction == "" {
		return nil, errors.Wrap(ErrInvalidRoute, "route has no transaction template")
	}

	raw, err := base64.StdEncoding.DecodeString(route.SwapTransaction)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoute, "template is not valid base64: %v", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidRoute, "failed to decode transaction: %v", err)
	}

	if len(tx.Message.AccountKeys) == 0 {
		return nil, errors.Wrap(ErrInvalidRoute, "transaction has no account keys")
	}
	if !tx.Message.AccountKeys[0].Equals(signer) {
		return nil, errors.Wrapf(ErrInvalidRoute,
			"transaction fee payer %s does not match signer %s",
			tx.Message.AccountKeys[0], signer)
	}

	// drop any placeholder signatures so the wallet signs a clean payload
	tx.Signatures = nil
	return tx, nil
}
