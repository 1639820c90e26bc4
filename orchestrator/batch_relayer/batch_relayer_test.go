package batchrelayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/Ethernal-Tech/peggy-orchestrator/eth"
	ethtxhelper "github.com/Ethernal-Tech/peggy-orchestrator/eth/txhelper"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	tokenA = "0x1111111111111111111111111111111111111111"
	tokenB = "0x2222222222222222222222222222222222222222"
)

var testPeggyID = [32]byte{'t', 'e', 's', 't'}

type testValidators struct {
	signers []*eth.SignerImpl
	valset  *core.Valset
}

func newTestValidators(t *testing.T, powers ...uint64) *testValidators {
	t.Helper()

	result := &testValidators{valset: &core.Valset{Nonce: 41}}

	for _, power := range powers {
		wallet, err := ethtxhelper.GenerateNewEthTxWallet()
		require.NoError(t, err)

		signer := eth.NewSigner(wallet)

		result.signers = append(result.signers, signer)
		result.valset.Members = append(result.valset.Members, core.ValsetMember{
			EthAddress: signer.Address(),
			Power:      power,
		})
	}

	return result
}

func (v *testValidators) confirms(t *testing.T, batch *core.Batch, indexes ...int) []*core.Confirm {
	t.Helper()

	digest, err := eth.BatchDigest(testPeggyID, batch)
	require.NoError(t, err)

	result := make([]*core.Confirm, len(indexes))

	for i, idx := range indexes {
		signature, err := v.signers[idx].Sign(digest)
		require.NoError(t, err)

		result[i] = &core.Confirm{
			Orchestrator: fmt.Sprintf("cosmos1validator%d", idx),
			EthSigner:    v.signers[idx].Address(),
			Signature:    signature,
		}
	}

	return result
}

func newBatch(token string, nonce uint64) *core.Batch {
	return &core.Batch{
		Nonce:         nonce,
		TokenContract: token,
		Transactions: []core.OutgoingTransfer{
			{
				ID:          nonce,
				Sender:      "cosmos1sender",
				Destination: "0x3333333333333333333333333333333333333333",
				Amount:      big.NewInt(100),
				Fee:         big.NewInt(1),
			},
		},
		TotalFee: big.NewInt(1),
	}
}

type confirmRecorder struct {
	nonces []uint64
}

func (r *confirmRecorder) record(args mock.Arguments) {
	msgs, _ := args.Get(1).([]core.Msg)
	for _, msg := range msgs {
		r.nonces = append(r.nonces, msg.(*core.MsgConfirmBatch).Nonce)
	}
}

func TestBatchRelayer(t *testing.T) {
	ctx := context.Background()
	config := core.OrchestratorConfig{PowerThresholdPercent: 66}
	validators := newTestValidators(t, 34, 34, 32)
	localOrchestrator := "cosmos1validator0"

	setup := func(batches ...*core.Batch) (*BatchRelayerImpl, *core.SourceChainMock, *core.ConsensusChainMock) {
		source := &core.SourceChainMock{}
		source.On("GetPeggyID", ctx).Return(testPeggyID, nil)
		source.On("GetLastValsetNonce", ctx).Return(uint64(41), nil)

		consensus := &core.ConsensusChainMock{}
		consensus.On("GetLatestBatches", ctx).Return(batches, nil)
		consensus.On("GetValset", ctx, uint64(41)).Return(validators.valset, nil)

		return NewBatchRelayer(config, localOrchestrator, source, consensus, validators.signers[0],
			hclog.NewNullLogger()), source, consensus
	}

	t.Run("batches are signed in order and only the oldest is executed", func(t *testing.T) {
		batch3, batch4, batch5 := newBatch(tokenA, 3), newBatch(tokenA, 4), newBatch(tokenA, 5)
		r, source, consensus := setup(batch5, batch3, batch4, newBatch(tokenA, 2))

		recorder := &confirmRecorder{}

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(validators.confirms(t, batch3, 1, 2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(4), tokenA).Return(validators.confirms(t, batch4, 1, 2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(5), tokenA).Return(nil, nil)
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))
		source.On("SubmitBatch", ctx, validators.valset, batch3, mock.MatchedBy(func(sigs []core.Signature) bool {
			return len(sigs) == 3 && sigs[0].IsEmpty() && !sigs[1].IsEmpty() && !sigs[2].IsEmpty()
		})).Return(core.AppliedResult("0xbb"))

		require.NoError(t, r.Execute(ctx))

		assert.Equal(t, []uint64{3, 4, 5}, recorder.nonces)
		source.AssertNumberOfCalls(t, "SubmitBatch", 1)
	})

	t.Run("endorsed batches are not signed again", func(t *testing.T) {
		batch3 := newBatch(tokenA, 3)
		r, source, consensus := setup(batch3)

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(validators.confirms(t, batch3, 0), nil)

		require.NoError(t, r.Execute(ctx))

		consensus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
		source.AssertNotCalled(t, "SubmitBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("executed batches are skipped", func(t *testing.T) {
		r, source, consensus := setup(newBatch(tokenA, 3), newBatch(tokenA, 4))

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(4), nil)

		require.NoError(t, r.Execute(ctx))

		consensus.AssertNotCalled(t, "GetBatchConfirms", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already executed batch is success", func(t *testing.T) {
		batch3 := newBatch(tokenA, 3)
		r, source, consensus := setup(batch3)

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(validators.confirms(t, batch3, 0, 1), nil)
		source.On("SubmitBatch", ctx, validators.valset, batch3, mock.Anything).
			Return(core.AlreadyAppliedResult("new batch nonce must be greater than the current nonce"))

		require.NoError(t, r.Execute(ctx))
	})

	t.Run("failed endorsement stops signing of the token", func(t *testing.T) {
		batch3, batch4 := newBatch(tokenA, 3), newBatch(tokenA, 4)
		r, source, consensus := setup(batch3, batch4)

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(nil, nil)
		consensus.On("Broadcast", ctx, mock.Anything).Return(core.TransientResult(errors.New("timeout")))

		err := r.Execute(ctx)
		require.ErrorIs(t, err, core.ErrSubmitTransient)

		consensus.AssertNumberOfCalls(t, "Broadcast", 1)
		consensus.AssertNotCalled(t, "GetBatchConfirms", ctx, uint64(4), tokenA)
	})

	t.Run("failure of one token does not stop the other", func(t *testing.T) {
		batchB := newBatch(tokenB, 7)
		r, source, consensus := setup(newBatch(tokenA, 3), batchB)

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(0), errors.New("connection refused"))
		source.On("GetLastBatchNonce", ctx, tokenB).Return(uint64(6), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(7), tokenB).Return(validators.confirms(t, batchB, 0, 1, 2), nil)
		source.On("SubmitBatch", ctx, validators.valset, batchB, mock.Anything).Return(core.AppliedResult("0xcc"))

		err := r.Execute(ctx)
		require.ErrorContains(t, err, "connection refused")
		require.ErrorContains(t, err, tokenA)

		source.AssertCalled(t, "SubmitBatch", ctx, validators.valset, batchB, mock.Anything)
	})

	t.Run("rejected execution", func(t *testing.T) {
		batch3 := newBatch(tokenA, 3)
		r, source, consensus := setup(batch3)

		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(validators.confirms(t, batch3, 0, 1), nil)
		source.On("SubmitBatch", ctx, validators.valset, batch3, mock.Anything).
			Return(core.RejectedResult("batch timed out"))

		require.ErrorIs(t, r.Execute(ctx), core.ErrSubmitRejected)
	})

	t.Run("freshly deployed contract uses current valset", func(t *testing.T) {
		batch1 := newBatch(tokenA, 1)
		installed := &core.Valset{Nonce: 0, Members: validators.valset.Members}

		source := &core.SourceChainMock{}
		source.On("GetPeggyID", ctx).Return(testPeggyID, nil)
		source.On("GetLastValsetNonce", ctx).Return(uint64(0), nil)
		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(0), nil)
		source.On("SubmitBatch", ctx, installed, batch1, mock.Anything).Return(core.AppliedResult("0xdd")).Once()

		consensus := &core.ConsensusChainMock{}
		consensus.On("GetLatestBatches", ctx).Return([]*core.Batch{batch1}, nil)
		consensus.On("GetBatchConfirms", ctx, uint64(1), tokenA).Return(validators.confirms(t, batch1, 0, 1), nil)
		consensus.On("GetValset", ctx, uint64(0)).Return(nil, nil)
		consensus.On("GetCurrentValset", ctx).Return(validators.valset, nil)

		r := NewBatchRelayer(config, localOrchestrator, source, consensus, validators.signers[0], hclog.NewNullLogger())

		require.NoError(t, r.Execute(ctx))
		source.AssertNumberOfCalls(t, "SubmitBatch", 1)
	})

	t.Run("unknown valset blocks execution", func(t *testing.T) {
		batch3 := newBatch(tokenA, 3)

		source := &core.SourceChainMock{}
		source.On("GetPeggyID", ctx).Return(testPeggyID, nil)
		source.On("GetLastValsetNonce", ctx).Return(uint64(41), nil)
		source.On("GetLastBatchNonce", ctx, tokenA).Return(uint64(2), nil)

		consensus := &core.ConsensusChainMock{}
		consensus.On("GetLatestBatches", ctx).Return([]*core.Batch{batch3}, nil)
		consensus.On("GetBatchConfirms", ctx, uint64(3), tokenA).Return(validators.confirms(t, batch3, 0, 1), nil)
		consensus.On("GetValset", ctx, uint64(41)).Return(nil, nil)

		r := NewBatchRelayer(config, localOrchestrator, source, consensus, validators.signers[0], hclog.NewNullLogger())

		require.ErrorIs(t, r.Execute(ctx), core.ErrValsetNotFound)
		source.AssertNotCalled(t, "SubmitBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no batches", func(t *testing.T) {
		r, source, _ := setup()

		require.NoError(t, r.Execute(ctx))
		source.AssertNotCalled(t, "GetPeggyID", mock.Anything)
	})
}
