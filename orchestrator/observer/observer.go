package observer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Ethernal-Tech/peggy-orchestrator/common"
	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	"github.com/hashicorp/go-hclog"
)

var errNonceGap = errors.New("event nonce gap")

// EventObserverImpl attests confirmed bridge contract events on the consensus
// chain in event nonce order.
type EventObserverImpl struct {
	config         core.OrchestratorConfig
	orchestrator   string
	bridgeContract string
	source         core.SourceChain
	consensus      core.ConsensusChain
	decoder        core.EventDecoder
	hintsDB        core.HintsDB
	logger         hclog.Logger

	// last fully processed source height, valid only if hasCheckpoint is set
	checkpointHeight uint64
	hasCheckpoint    bool
	// highest nonce broadcast by this process and the chain nonce it was compared with
	lastBroadcastNonce uint64
	lastChainNonce     uint64
	staleTicks         uint64
}

var _ core.Phase = (*EventObserverImpl)(nil)

func NewEventObserver(
	config core.OrchestratorConfig, orchestrator string, bridgeContract string,
	source core.SourceChain, consensus core.ConsensusChain, decoder core.EventDecoder,
	hintsDB core.HintsDB, logger hclog.Logger,
) *EventObserverImpl {
	return &EventObserverImpl{
		config:         config,
		orchestrator:   orchestrator,
		bridgeContract: bridgeContract,
		source:         source,
		consensus:      consensus,
		decoder:        decoder,
		hintsDB:        hintsDB,
		logger:         logger,
	}
}

// CheckpointHeight returns the last fully processed source height.
func (o *EventObserverImpl) CheckpointHeight() (uint64, bool) {
	return o.checkpointHeight, o.hasCheckpoint
}

func (o *EventObserverImpl) Execute(ctx context.Context) error {
	lastNonce, err := o.consensus.GetLastEventNonce(ctx, o.orchestrator)
	if err != nil {
		return fmt.Errorf("failed to retrieve last event nonce: %w", err)
	}

	telemetry.UpdateObserverLastEventNonce(lastNonce)

	floorNonce := o.updateDuplicateGuard(lastNonce)

	latestHeight, err := o.source.GetLatestBlockHeight(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve latest block height: %w", err)
	}

	if latestHeight < o.config.ConfirmationDepth {
		o.logger.Debug("Not enough blocks", "latest", latestHeight, "depth", o.config.ConfirmationDepth)

		return nil
	}

	safeHeight := latestHeight - o.config.ConfirmationDepth

	if !o.hasCheckpoint {
		startHeight, err := o.findStartHeight(ctx, lastNonce, safeHeight)
		if err != nil {
			return err
		}

		o.checkpointHeight = common.SafeSubtract(startHeight, 1, 0)
		o.hasCheckpoint = true

		o.logger.Info("Checkpoint height derived", "height", o.checkpointHeight, "last nonce", lastNonce)
	}

	fromHeight := o.checkpointHeight + 1
	if fromHeight > safeHeight {
		return nil
	}

	events, err := o.fetchEvents(ctx, fromHeight, safeHeight)
	if err != nil {
		return err
	}

	ready, pendingHeight, err := selectContiguous(events, floorNonce)
	if err != nil {
		// the checkpoint passed events that are not attested yet, scan again from chain state
		o.hasCheckpoint = false

		return fmt.Errorf("failed to select events in [%d, %d]: %w", fromHeight, safeHeight, err)
	}

	attested, err := o.attest(ctx, ready)
	if attested < len(ready) {
		pendingHeight = ready[attested].BlockHeight
	}

	if attested > 0 {
		o.lastBroadcastNonce = max(o.lastBroadcastNonce, ready[attested-1].EventNonce)
	}

	if pendingHeight == 0 {
		o.advanceCheckpoint(safeHeight)
	} else {
		o.advanceCheckpoint(pendingHeight - 1)
	}

	return err
}

// updateDuplicateGuard returns the nonce below which nothing is broadcast.
// While the consensus chain did not yet apply what this process broadcast the
// local value wins; after AttestationResendTicks ticks without progress the
// chain value is trusted again and the source chain is scanned again.
func (o *EventObserverImpl) updateDuplicateGuard(lastNonce uint64) uint64 {
	if lastNonce != o.lastChainNonce {
		o.lastChainNonce = lastNonce
		o.staleTicks = 0
	}

	if o.lastBroadcastNonce <= lastNonce {
		o.lastBroadcastNonce = lastNonce
		o.staleTicks = 0

		return lastNonce
	}

	o.staleTicks++

	if o.staleTicks >= o.config.AttestationResendTicks {
		o.logger.Warn("Attestations not applied, resending",
			"broadcast nonce", o.lastBroadcastNonce, "chain nonce", lastNonce, "ticks", o.staleTicks)

		o.lastBroadcastNonce = lastNonce
		o.staleTicks = 0
		o.hasCheckpoint = false

		return lastNonce
	}

	return o.lastBroadcastNonce
}

// findStartHeight returns the height of the event carrying lastNonce. The
// search walks backwards from the persisted hint (or the safe height) in
// BlockRangeLimit windows down to StartHeight.
func (o *EventObserverImpl) findStartHeight(ctx context.Context, lastNonce uint64, safeHeight uint64) (uint64, error) {
	if lastNonce == 0 {
		return o.config.StartHeight, nil
	}

	topHeight := safeHeight

	hint, err := o.hintsDB.GetCheckpointHeight(o.bridgeContract)
	if err != nil {
		o.logger.Warn("Failed to read checkpoint height hint", "err", err)
	} else if hint > o.config.StartHeight && hint < safeHeight {
		topHeight = hint
	}

	rangeLimit := max(o.config.BlockRangeLimit, 1)

	for toHeight := topHeight; toHeight >= o.config.StartHeight; {
		fromHeight := max(common.SafeSubtract(toHeight, rangeLimit-1, 0), o.config.StartHeight)

		events, err := o.fetchEvents(ctx, fromHeight, toHeight)
		if err != nil {
			return 0, err
		}

		for _, event := range events {
			if event.EventNonce == lastNonce {
				return event.BlockHeight, nil
			}
		}

		if fromHeight <= o.config.StartHeight {
			break
		}

		toHeight = fromHeight - 1
	}

	o.logger.Warn("Event with last nonce not found, scanning from start height",
		"nonce", lastNonce, "top", topHeight, "start", o.config.StartHeight)

	return o.config.StartHeight, nil
}

// fetchEvents returns decoded events in [fromHeight, toHeight]. A single
// undecodable log fails the whole range.
func (o *EventObserverImpl) fetchEvents(ctx context.Context, fromHeight, toHeight uint64) ([]*core.BridgeEvent, error) {
	var (
		events     []*core.BridgeEvent
		rangeLimit = max(o.config.BlockRangeLimit, 1)
	)

	for from := fromHeight; from <= toHeight; from += rangeLimit {
		to := min(from+rangeLimit-1, toHeight)

		logs, err := o.source.GetLogs(ctx, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve logs in [%d, %d]: %w", from, to, err)
		}

		for _, log := range logs {
			event, err := o.decoder.Decode(log)
			if err != nil {
				return nil, fmt.Errorf("failed to decode log at height %d, tx %s: %w",
					log.BlockNumber, log.TxHash, err)
			}

			events = append(events, event)
		}
	}

	return events, nil
}

// attest broadcasts claims of events in chunks and returns how many events
// reached the consensus chain successfully.
func (o *EventObserverImpl) attest(ctx context.Context, events []*core.BridgeEvent) (int, error) {
	attested := 0

	for _, chunk := range common.SplitToChunks(events, o.config.MaxMessagesPerTx) {
		msgs := make([]core.Msg, len(chunk))

		for i, event := range chunk {
			msg, err := o.toClaim(event)
			if err != nil {
				return attested, err
			}

			msgs[i] = msg
		}

		result := o.consensus.Broadcast(ctx, msgs...)
		if !result.IsSuccess() {
			return attested, fmt.Errorf("failed to attest events %d..%d: %w",
				chunk[0].EventNonce, chunk[len(chunk)-1].EventNonce, result.AsError())
		}

		for _, event := range chunk {
			telemetry.UpdateObserverAttestedCounter(event.Type.String(), 1)
		}

		o.logger.Info("Events attested", "from nonce", chunk[0].EventNonce,
			"to nonce", chunk[len(chunk)-1].EventNonce, "outcome", result.Outcome, "tx", result.TxHash)

		attested += len(chunk)
	}

	return attested, nil
}

func (o *EventObserverImpl) toClaim(event *core.BridgeEvent) (core.ClaimMsg, error) {
	switch {
	case event.Type == core.DepositEventType && event.Deposit != nil:
		return &core.MsgDepositClaim{
			EventNonce:     event.EventNonce,
			TokenContract:  event.Deposit.TokenContract,
			Amount:         event.Deposit.Amount,
			EthereumSender: event.Deposit.Sender,
			CosmosReceiver: event.Deposit.CosmosReceiver,
			Orchestrator:   o.orchestrator,
		}, nil
	case event.Type == core.BatchExecutedEventType && event.BatchExecuted != nil:
		return &core.MsgWithdrawClaim{
			EventNonce:    event.EventNonce,
			BatchNonce:    event.BatchExecuted.BatchNonce,
			TokenContract: event.BatchExecuted.TokenContract,
			Orchestrator:  o.orchestrator,
		}, nil
	case event.Type == core.ValsetUpdatedEventType && event.ValsetUpdated != nil:
		return &core.MsgValsetUpdatedClaim{
			EventNonce:   event.EventNonce,
			ValsetNonce:  event.ValsetUpdated.ValsetNonce,
			Members:      event.ValsetUpdated.Members,
			Orchestrator: o.orchestrator,
		}, nil
	default:
		return nil, fmt.Errorf("event without payload: %s", event)
	}
}

func (o *EventObserverImpl) advanceCheckpoint(height uint64) {
	if height <= o.checkpointHeight {
		return
	}

	o.checkpointHeight = height

	telemetry.UpdateObserverCheckpointHeight(height)

	if err := o.hintsDB.SetCheckpointHeight(o.bridgeContract, height); err != nil {
		o.logger.Warn("Failed to store checkpoint height hint", "height", height, "err", err)
	}
}

// selectContiguous sorts events by nonce, drops the ones at or below
// lastNonce and returns the run starting at lastNonce+1. If events remain
// after a gap, the height of the first of them is returned as pending.
func selectContiguous(events []*core.BridgeEvent, lastNonce uint64) ([]*core.BridgeEvent, uint64, error) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EventNonce < events[j].EventNonce
	})

	var (
		ready         []*core.BridgeEvent
		pendingHeight uint64
		expected      = lastNonce + 1
	)

	for _, event := range events {
		if event.EventNonce < expected {
			continue
		}

		if event.EventNonce > expected {
			if len(ready) == 0 {
				return nil, 0, fmt.Errorf("%w: expected %d, found %d", errNonceGap, expected, event.EventNonce)
			}

			pendingHeight = event.BlockHeight

			break
		}

		ready = append(ready, event)
		expected++
	}

	return ready, pendingHeight, nil
}
