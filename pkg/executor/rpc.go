package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
)

// RPCBroadcaster implements Broadcaster over a Solana JSON-RPC endpoint.
type RPCBroadcaster struct {
	client        *rpc.Client
	commitment    rpc.CommitmentType
	skipPreflight bool
}

// NewRPCBroadcaster connects to the given RPC endpoint. commitment is one of
// "processed", "confirmed" or "finalized"; anything else falls back to
// confirmed.
func NewRPCBroadcaster(endpoint, commitment string, skipPreflight bool) (*RPCBroadcaster, error) {
	if endpoint == "" {
		return nil, errors.New("RPC URL not configured")
	}
	return &RPCBroadcaster{
		client:        rpc.New(endpoint),
		commitment:    parseCommitment(commitment),
		skipPreflight: skipPreflight,
	}, nil
}

// SendTransaction submits the signed transaction to the network.
func (b *RPCBroadcaster) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	opts := rpc.TransactionOpts{
		SkipPreflight:       b.skipPreflight,
		PreflightCommitment: b.commitment,
	}
	sig, err := b.client.SendTransactionWithOpts(ctx, tx, opts)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to send transaction")
	}
	return sig, nil
}

// SignatureStatus polls the network's view of the signature. A missing status
// means the transaction is still pending.
func (b *RPCBroadcaster) SignatureStatus(ctx context.Context, sig solana.Signature) (TxStatus, error) {
	resp, err := b.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return TxStatus{}, errors.Wrap(err, "failed to get signature status")
	}
	if resp == nil || len(resp.Value) == 0 || resp.Value[0] == nil {
		return TxStatus{}, nil
	}

	status := resp.Value[0]
	if status.Err != nil {
		return TxStatus{Failed: true, Reason: fmt.Sprintf("%v", status.Err)}, nil
	}

	switch status.ConfirmationStatus {
	case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
		return TxStatus{Confirmed: true}, nil
	default:
		return TxStatus{}, nil
	}
}

func parseCommitment(commitment string) rpc.CommitmentType {
	switch strings.ToLower(commitment) {
	case "finalized":
		return rpc.CommitmentFinalized
	case "processed":
		return rpc.CommitmentProcessed
	case "confirmed":
		return rpc.CommitmentConfirmed
	default:
		return rpc.CommitmentConfirmed
	}
}
