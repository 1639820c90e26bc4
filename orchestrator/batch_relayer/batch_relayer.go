package batchrelayer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	"github.com/hashicorp/go-hclog"
)

// BatchRelayerImpl endorses outgoing batches and executes the oldest
// unexecuted batch of every token contract in the bridge contract.
type BatchRelayerImpl struct {
	config       core.OrchestratorConfig
	orchestrator string
	source       core.SourceChain
	consensus    core.ConsensusChain
	signer       core.SourceSigner
	logger       hclog.Logger

	peggyID    [32]byte
	hasPeggyID bool
}

var _ core.Phase = (*BatchRelayerImpl)(nil)

func NewBatchRelayer(
	config core.OrchestratorConfig, orchestrator string,
	source core.SourceChain, consensus core.ConsensusChain, signer core.SourceSigner, logger hclog.Logger,
) *BatchRelayerImpl {
	return &BatchRelayerImpl{
		config:       config,
		orchestrator: orchestrator,
		source:       source,
		consensus:    consensus,
		signer:       signer,
		logger:       logger,
	}
}

func (r *BatchRelayerImpl) Execute(ctx context.Context) error {
	batches, err := r.consensus.GetLatestBatches(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve latest batches: %w", err)
	}

	if len(batches) == 0 {
		r.logger.Debug("No batches to relay")

		return nil
	}

	peggyID, err := r.getPeggyID(ctx)
	if err != nil {
		return err
	}

	var (
		errs    []error
		tokens  []string
		byToken = map[string][]*core.Batch{}
	)

	for _, batch := range batches {
		token := strings.ToLower(batch.TokenContract)
		if _, exists := byToken[token]; !exists {
			tokens = append(tokens, token)
		}

		byToken[token] = append(byToken[token], batch)
	}

	sort.Strings(tokens)

	for _, token := range tokens {
		if err := r.relayToken(ctx, peggyID, byToken[token]); err != nil {
			errs = append(errs, fmt.Errorf("token %s: %w", token, err))
		}
	}

	return errors.Join(errs...)
}

func (r *BatchRelayerImpl) relayToken(ctx context.Context, peggyID [32]byte, batches []*core.Batch) error {
	tokenContract := batches[0].TokenContract

	executedNonce, err := r.source.GetLastBatchNonce(ctx, tokenContract)
	if err != nil {
		return fmt.Errorf("failed to retrieve last executed batch nonce: %w", err)
	}

	pending := make([]*core.Batch, 0, len(batches))

	for _, batch := range batches {
		if batch.Nonce > executedNonce {
			pending = append(pending, batch)
		}
	}

	if len(pending) == 0 {
		return nil
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Nonce < pending[j].Nonce
	})

	var (
		oldestDigest   []byte
		oldestConfirms []*core.Confirm
		signErr        error
	)

	for i, batch := range pending {
		digest, err := r.signer.BatchDigest(peggyID, batch)
		if err != nil {
			signErr = fmt.Errorf("failed to create digest for %s: %w", batch, err)

			break
		}

		confirms, err := r.consensus.GetBatchConfirms(ctx, batch.Nonce, batch.TokenContract)
		if err != nil {
			signErr = fmt.Errorf("failed to retrieve confirms for %s: %w", batch, err)

			break
		}

		if i == 0 {
			oldestDigest, oldestConfirms = digest, confirms
		}

		if core.HasEndorsed(confirms, r.orchestrator, r.signer.Address()) {
			continue
		}

		if err := r.endorse(ctx, batch, digest); err != nil {
			signErr = err

			break
		}
	}

	if oldestDigest == nil {
		return signErr
	}

	return errors.Join(signErr, r.execute(ctx, pending[0], oldestDigest, oldestConfirms))
}

func (r *BatchRelayerImpl) endorse(ctx context.Context, batch *core.Batch, digest []byte) error {
	signature, err := r.signer.Sign(digest)
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", batch, err)
	}

	result := r.consensus.Broadcast(ctx, &core.MsgConfirmBatch{
		Nonce:         batch.Nonce,
		TokenContract: batch.TokenContract,
		EthSigner:     r.signer.Address(),
		Orchestrator:  r.orchestrator,
		Signature:     signature,
	})
	if !result.IsSuccess() {
		return fmt.Errorf("failed to broadcast confirm for %s: %w", batch, result.AsError())
	}

	telemetry.UpdateBatchConfirmSubmitted(batch.TokenContract, batch.Nonce)

	r.logger.Info("Batch confirmed", "token", batch.TokenContract, "nonce", batch.Nonce,
		"outcome", result.Outcome, "tx", result.TxHash)

	return nil
}

// execute submits batch when the installed valset endorsed it with enough
// power. Confirms broadcast during this tick are picked up next tick.
func (r *BatchRelayerImpl) execute(
	ctx context.Context, batch *core.Batch, digest []byte, confirms []*core.Confirm,
) error {
	valsetNonce, err := r.source.GetLastValsetNonce(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve last executed valset nonce: %w", err)
	}

	currentValset, err := core.GetInstalledValset(ctx, r.consensus, valsetNonce)
	if err != nil {
		return err
	}

	endorsements := core.CollectEndorsements(r.signer, digest, currentValset, confirms, r.logger)
	if !endorsements.ReachedThreshold(r.config.PowerThresholdPercent) {
		r.logger.Debug("Batch not endorsed by enough power", "batch", batch,
			"signed", endorsements.SignedPower, "total", endorsements.TotalPower)

		return nil
	}

	result := r.source.SubmitBatch(ctx, currentValset, batch, endorsements.Signatures)

	telemetry.UpdateBatchExecuted(batch.TokenContract, batch.Nonce, result.Outcome.String())

	switch result.Outcome {
	case core.Applied:
		r.logger.Info("Batch submitted", "token", batch.TokenContract, "nonce", batch.Nonce, "tx", result.TxHash)
	case core.AlreadyApplied:
		r.logger.Info("Batch already executed", "token", batch.TokenContract, "nonce", batch.Nonce,
			"reason", result.Reason)
	default:
		return fmt.Errorf("failed to submit %s: %w", batch, result.AsError())
	}

	return nil
}

func (r *BatchRelayerImpl) getPeggyID(ctx context.Context) ([32]byte, error) {
	if r.hasPeggyID {
		return r.peggyID, nil
	}

	peggyID, err := r.source.GetPeggyID(ctx)
	if err != nil {
		return peggyID, fmt.Errorf("failed to retrieve peggy id: %w", err)
	}

	r.peggyID, r.hasPeggyID = peggyID, true

	return peggyID, nil
}
