package observer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	databaseaccess "github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/database_access"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testOrchestrator   = "cosmos1orchestrator"
	testBridgeContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

type sourceChainFake struct {
	core.SourceChain

	latestHeight uint64
	logs         []types.Log
	ranges       [][2]uint64
}

func (s *sourceChainFake) GetLatestBlockHeight(context.Context) (uint64, error) {
	return s.latestHeight, nil
}

func (s *sourceChainFake) GetLogs(_ context.Context, fromHeight, toHeight uint64) ([]types.Log, error) {
	s.ranges = append(s.ranges, [2]uint64{fromHeight, toHeight})

	var result []types.Log

	for _, log := range s.logs {
		if log.BlockNumber >= fromHeight && log.BlockNumber <= toHeight {
			result = append(result, log)
		}
	}

	return result, nil
}

// nonceDecoder treats the log index as the event nonce.
type nonceDecoder struct {
	failNonce uint64
}

func (d nonceDecoder) Decode(log types.Log) (*core.BridgeEvent, error) {
	if d.failNonce != 0 && uint64(log.Index) == d.failNonce {
		return nil, errors.New("unknown topic")
	}

	return &core.BridgeEvent{
		Type:        core.DepositEventType,
		EventNonce:  uint64(log.Index),
		BlockHeight: log.BlockNumber,
		Deposit: &core.DepositPayload{
			TokenContract:  "0x1",
			Sender:         "0x2",
			CosmosReceiver: "cosmos1receiver",
			Amount:         big.NewInt(int64(log.Index)),
		},
	}, nil
}

func newLog(nonce uint, height uint64) types.Log {
	return types.Log{Index: nonce, BlockNumber: height}
}

func newTestConfig() core.OrchestratorConfig {
	return core.OrchestratorConfig{
		ConfirmationDepth:      2,
		BlockRangeLimit:        10,
		StartHeight:            90,
		MaxMessagesPerTx:       10,
		AttestationResendTicks: 3,
	}
}

type broadcastRecorder struct {
	batches [][]uint64
}

func (r *broadcastRecorder) record(args mock.Arguments) {
	msgs, _ := args.Get(1).([]core.Msg)
	nonces := make([]uint64, len(msgs))

	for i, msg := range msgs {
		nonces[i] = msg.(core.ClaimMsg).GetEventNonce()
	}

	r.batches = append(r.batches, nonces)
}

func TestEventObserver(t *testing.T) {
	ctx := context.Background()

	setup := func(
		config core.OrchestratorConfig, lastNonce uint64, source *sourceChainFake, decoder core.EventDecoder,
	) (*EventObserverImpl, *core.ConsensusChainMock, *broadcastRecorder, core.HintsDB) {
		consensus := &core.ConsensusChainMock{}
		consensus.On("GetLastEventNonce", ctx, testOrchestrator).Return(lastNonce, nil)

		recorder := &broadcastRecorder{}
		hintsDB := databaseaccess.NewMemoryDatabase()

		return NewEventObserver(config, testOrchestrator, testBridgeContract,
			source, consensus, decoder, hintsDB, hclog.NewNullLogger()), consensus, recorder, hintsDB
	}

	t.Run("only confirmed events are attested in nonce order", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(6, 101), newLog(5, 100), newLog(7, 103)},
		}

		o, consensus, recorder, hintsDB := setup(newTestConfig(), 4, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [][]uint64{{5, 6}}, recorder.batches)

		height, ok := o.CheckpointHeight()
		assert.True(t, ok)
		assert.Equal(t, uint64(102), height)

		hint, err := hintsDB.GetCheckpointHeight(testBridgeContract)
		require.NoError(t, err)
		assert.Equal(t, uint64(102), hint)

		for _, r := range source.ranges {
			assert.LessOrEqual(t, r[1]-r[0]+1, uint64(10))
			assert.LessOrEqual(t, r[1], uint64(102))
		}

		// next block confirms nonce 7, the chain did not apply 5 and 6 yet
		source.latestHeight = 105

		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [][]uint64{{5, 6}, {7}}, recorder.batches)
	})

	t.Run("not enough blocks", func(t *testing.T) {
		source := &sourceChainFake{latestHeight: 1}

		o, consensus, _, _ := setup(newTestConfig(), 0, source, nonceDecoder{})

		require.NoError(t, o.Execute(ctx))
		assert.Empty(t, source.ranges)
		consensus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)
	})

	t.Run("start height derived from last attested event", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 100), newLog(6, 101)},
		}

		o, consensus, recorder, _ := setup(newTestConfig(), 5, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [][]uint64{{6}}, recorder.batches)
		// derivation scan plus the scan starting right at the block of nonce 5
		assert.Equal(t, [2]uint64{100, 102}, source.ranges[len(source.ranges)-1])
	})

	t.Run("stored hint bounds the derivation scan", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 204,
			logs:         []types.Log{newLog(5, 100), newLog(6, 150)},
		}

		o, consensus, recorder, hintsDB := setup(newTestConfig(), 5, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		require.NoError(t, hintsDB.SetCheckpointHeight(testBridgeContract, 105))
		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [2]uint64{96, 105}, source.ranges[0])
		assert.Equal(t, [][]uint64{{6}}, recorder.batches)
	})

	t.Run("decode error aborts the iteration", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 100), newLog(6, 101)},
		}

		o, consensus, _, _ := setup(newTestConfig(), 0, source, nonceDecoder{failNonce: 6})

		err := o.Execute(ctx)
		require.ErrorContains(t, err, "failed to decode log")
		consensus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)

		height, ok := o.CheckpointHeight()
		assert.True(t, ok)
		assert.Equal(t, uint64(89), height)
	})

	t.Run("messages are chunked", func(t *testing.T) {
		config := newTestConfig()
		config.MaxMessagesPerTx = 2

		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 100), newLog(6, 100), newLog(7, 101)},
		}

		o, consensus, recorder, _ := setup(config, 4, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		require.NoError(t, o.Execute(ctx))
		assert.Equal(t, [][]uint64{{5, 6}, {7}}, recorder.batches)
	})

	t.Run("failed chunk keeps its events pending", func(t *testing.T) {
		config := newTestConfig()
		config.MaxMessagesPerTx = 2

		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 99), newLog(6, 100), newLog(7, 101)},
		}

		o, consensus, recorder, _ := setup(config, 4, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).
			Return(core.AppliedResult("0xaa")).Once()
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).
			Return(core.TransientResult(errors.New("timeout"))).Once()

		err := o.Execute(ctx)
		require.ErrorIs(t, err, core.ErrSubmitTransient)

		height, _ := o.CheckpointHeight()
		assert.Equal(t, uint64(100), height)

		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xbb"))

		require.NoError(t, o.Execute(ctx))
		assert.Equal(t, [][]uint64{{5, 6}, {7}, {7}}, recorder.batches)
	})

	t.Run("events after a gap wait", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 95), newLog(6, 97), newLog(8, 99)},
		}

		o, consensus, recorder, _ := setup(newTestConfig(), 4, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [][]uint64{{5, 6}}, recorder.batches)

		height, _ := o.CheckpointHeight()
		assert.Equal(t, uint64(98), height)
	})

	t.Run("missing next nonce resets the checkpoint", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(7, 100)},
		}

		o, consensus, _, _ := setup(newTestConfig(), 4, source, nonceDecoder{})

		err := o.Execute(ctx)
		require.ErrorIs(t, err, errNonceGap)
		consensus.AssertNotCalled(t, "Broadcast", mock.Anything, mock.Anything)

		_, ok := o.CheckpointHeight()
		assert.False(t, ok)
	})

	t.Run("unapplied attestations are resent", func(t *testing.T) {
		source := &sourceChainFake{
			latestHeight: 104,
			logs:         []types.Log{newLog(5, 100), newLog(6, 101)},
		}

		o, consensus, recorder, _ := setup(newTestConfig(), 4, source, nonceDecoder{})
		consensus.On("Broadcast", ctx, mock.Anything).Run(recorder.record).Return(core.AppliedResult("0xaa"))

		for i := 0; i < 3; i++ {
			require.NoError(t, o.Execute(ctx))
		}

		assert.Equal(t, [][]uint64{{5, 6}}, recorder.batches)

		require.NoError(t, o.Execute(ctx))

		assert.Equal(t, [][]uint64{{5, 6}, {5, 6}}, recorder.batches)
	})
}

func TestSelectContiguous(t *testing.T) {
	newEvent := func(nonce, height uint64) *core.BridgeEvent {
		return &core.BridgeEvent{EventNonce: nonce, BlockHeight: height}
	}

	ready, pending, err := selectContiguous([]*core.BridgeEvent{
		newEvent(4, 10), newEvent(3, 9), newEvent(2, 8), newEvent(6, 12),
	}, 2)
	require.NoError(t, err)
	require.Len(t, ready, 2)
	assert.Equal(t, uint64(3), ready[0].EventNonce)
	assert.Equal(t, uint64(4), ready[1].EventNonce)
	assert.Equal(t, uint64(12), pending)

	ready, pending, err = selectContiguous(nil, 2)
	require.NoError(t, err)
	assert.Empty(t, ready)
	assert.Zero(t, pending)

	_, _, err = selectContiguous([]*core.BridgeEvent{newEvent(5, 10)}, 2)
	require.ErrorIs(t, err, errNonceGap)
}
