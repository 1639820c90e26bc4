package core

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
)

type Orchestrator interface {
	Start(ctx context.Context)
}

// Phase is one unit of work executed once per loop tick.
type Phase interface {
	Execute(ctx context.Context) error
}

// SourceChain is the bridge contract on the EVM chain.
type SourceChain interface {
	GetLatestBlockHeight(ctx context.Context) (uint64, error)
	GetLogs(ctx context.Context, fromHeight, toHeight uint64) ([]types.Log, error)
	GetPeggyID(ctx context.Context) ([32]byte, error)
	GetLastValsetNonce(ctx context.Context) (uint64, error)
	GetLastBatchNonce(ctx context.Context, tokenContract string) (uint64, error)
	SubmitValsetUpdate(
		ctx context.Context, newValset *Valset, currentValset *Valset, signatures []Signature,
	) SubmitResult
	SubmitBatch(
		ctx context.Context, currentValset *Valset, batch *Batch, signatures []Signature,
	) SubmitResult
}

// ConsensusChain is the peggy module of the consensus chain.
type ConsensusChain interface {
	GetLastEventNonce(ctx context.Context, orchestrator string) (uint64, error)
	GetLatestValsets(ctx context.Context) ([]*Valset, error)
	GetValset(ctx context.Context, nonce uint64) (*Valset, error)
	// GetCurrentValset returns the validator set of the current staking state.
	GetCurrentValset(ctx context.Context) (*Valset, error)
	GetValsetConfirms(ctx context.Context, nonce uint64) ([]*Confirm, error)
	GetLatestBatches(ctx context.Context) ([]*Batch, error)
	GetBatchConfirms(ctx context.Context, nonce uint64, tokenContract string) ([]*Confirm, error)
	Broadcast(ctx context.Context, msgs ...Msg) SubmitResult
}

// EventDecoder turns raw bridge contract logs into typed events.
type EventDecoder interface {
	Decode(log types.Log) (*BridgeEvent, error)
}

// SourceSigner signs with the validator's source chain key.
type SourceSigner interface {
	Address() string
	ValsetDigest(peggyID [32]byte, valset *Valset) ([]byte, error)
	BatchDigest(peggyID [32]byte, batch *Batch) ([]byte, error)
	Sign(digest []byte) (string, error)
	RecoverSignature(digest []byte, signature string) (string, Signature, error)
}

// HintsDB keeps values that only save work. Nothing read from it is trusted
// without checking chain state.
type HintsDB interface {
	GetCheckpointHeight(bridgeContract string) (uint64, error)
	SetCheckpointHeight(bridgeContract string, height uint64) error
	Close() error
}
