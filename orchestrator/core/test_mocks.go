package core

import (
	"context"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
)

type SourceChainMock struct {
	mock.Mock
}

var _ SourceChain = (*SourceChainMock)(nil)

func (m *SourceChainMock) GetLatestBlockHeight(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *SourceChainMock) GetLogs(ctx context.Context, fromHeight, toHeight uint64) ([]types.Log, error) {
	args := m.Called(ctx, fromHeight, toHeight)
	arg0, _ := args.Get(0).([]types.Log)

	return arg0, args.Error(1)
}

func (m *SourceChainMock) GetPeggyID(ctx context.Context) ([32]byte, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).([32]byte)

	return arg0, args.Error(1)
}

func (m *SourceChainMock) GetLastValsetNonce(ctx context.Context) (uint64, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *SourceChainMock) GetLastBatchNonce(ctx context.Context, tokenContract string) (uint64, error) {
	args := m.Called(ctx, tokenContract)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *SourceChainMock) SubmitValsetUpdate(
	ctx context.Context, newValset *Valset, currentValset *Valset, signatures []Signature,
) SubmitResult {
	args := m.Called(ctx, newValset, currentValset, signatures)
	arg0, _ := args.Get(0).(SubmitResult)

	return arg0
}

func (m *SourceChainMock) SubmitBatch(
	ctx context.Context, currentValset *Valset, batch *Batch, signatures []Signature,
) SubmitResult {
	args := m.Called(ctx, currentValset, batch, signatures)
	arg0, _ := args.Get(0).(SubmitResult)

	return arg0
}

type ConsensusChainMock struct {
	mock.Mock
}

var _ ConsensusChain = (*ConsensusChainMock)(nil)

func (m *ConsensusChainMock) GetLastEventNonce(ctx context.Context, orchestrator string) (uint64, error) {
	args := m.Called(ctx, orchestrator)
	arg0, _ := args.Get(0).(uint64)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetLatestValsets(ctx context.Context) ([]*Valset, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).([]*Valset)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetValset(ctx context.Context, nonce uint64) (*Valset, error) {
	args := m.Called(ctx, nonce)
	arg0, _ := args.Get(0).(*Valset)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetCurrentValset(ctx context.Context) (*Valset, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).(*Valset)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetValsetConfirms(ctx context.Context, nonce uint64) ([]*Confirm, error) {
	args := m.Called(ctx, nonce)
	arg0, _ := args.Get(0).([]*Confirm)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetLatestBatches(ctx context.Context) ([]*Batch, error) {
	args := m.Called(ctx)
	arg0, _ := args.Get(0).([]*Batch)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) GetBatchConfirms(
	ctx context.Context, nonce uint64, tokenContract string,
) ([]*Confirm, error) {
	args := m.Called(ctx, nonce, tokenContract)
	arg0, _ := args.Get(0).([]*Confirm)

	return arg0, args.Error(1)
}

func (m *ConsensusChainMock) Broadcast(ctx context.Context, msgs ...Msg) SubmitResult {
	args := m.Called(ctx, msgs)
	arg0, _ := args.Get(0).(SubmitResult)

	return arg0
}

type EventDecoderMock struct {
	mock.Mock
}

var _ EventDecoder = (*EventDecoderMock)(nil)

func (m *EventDecoderMock) Decode(log types.Log) (*BridgeEvent, error) {
	args := m.Called(log)
	arg0, _ := args.Get(0).(*BridgeEvent)

	return arg0, args.Error(1)
}

type PhaseMock struct {
	mock.Mock
}

var _ Phase = (*PhaseMock)(nil)

func (m *PhaseMock) Execute(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
