package valsetrelayer

import (
	"context"
	"fmt"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	"github.com/hashicorp/go-hclog"
)

// ValsetRelayerImpl endorses validator set checkpoints agreed on the consensus
// chain and installs them in the bridge contract once enough power signed.
type ValsetRelayerImpl struct {
	config       core.OrchestratorConfig
	orchestrator string
	source       core.SourceChain
	consensus    core.ConsensusChain
	signer       core.SourceSigner
	logger       hclog.Logger

	peggyID    [32]byte
	hasPeggyID bool
}

var _ core.Phase = (*ValsetRelayerImpl)(nil)

func NewValsetRelayer(
	config core.OrchestratorConfig, orchestrator string,
	source core.SourceChain, consensus core.ConsensusChain, signer core.SourceSigner, logger hclog.Logger,
) *ValsetRelayerImpl {
	return &ValsetRelayerImpl{
		config:       config,
		orchestrator: orchestrator,
		source:       source,
		consensus:    consensus,
		signer:       signer,
		logger:       logger,
	}
}

func (r *ValsetRelayerImpl) Execute(ctx context.Context) error {
	executedNonce, err := r.source.GetLastValsetNonce(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve last executed valset nonce: %w", err)
	}

	valsets, err := r.consensus.GetLatestValsets(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve latest valsets: %w", err)
	}

	target := latestAbove(valsets, executedNonce)
	if target == nil {
		r.logger.Debug("No valset to relay", "executed nonce", executedNonce)

		return nil
	}

	peggyID, err := r.getPeggyID(ctx)
	if err != nil {
		return err
	}

	digest, err := r.signer.ValsetDigest(peggyID, target)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint digest for valset %d: %w", target.Nonce, err)
	}

	confirms, err := r.consensus.GetValsetConfirms(ctx, target.Nonce)
	if err != nil {
		return fmt.Errorf("failed to retrieve confirms for valset %d: %w", target.Nonce, err)
	}

	if !core.HasEndorsed(confirms, r.orchestrator, r.signer.Address()) {
		if err := r.endorse(ctx, target, digest); err != nil {
			return err
		}
	}

	currentValset, err := core.GetInstalledValset(ctx, r.consensus, executedNonce)
	if err != nil {
		return err
	}

	endorsements := core.CollectEndorsements(r.signer, digest, currentValset, confirms, r.logger)
	if !endorsements.ReachedThreshold(r.config.PowerThresholdPercent) {
		r.logger.Debug("Valset not endorsed by enough power", "nonce", target.Nonce,
			"signed", endorsements.SignedPower, "total", endorsements.TotalPower)

		return nil
	}

	result := r.source.SubmitValsetUpdate(ctx, target, currentValset, endorsements.Signatures)

	telemetry.UpdateValsetExecuted(target.Nonce, result.Outcome.String())

	switch result.Outcome {
	case core.Applied:
		r.logger.Info("Valset update submitted", "nonce", target.Nonce, "tx", result.TxHash)
	case core.AlreadyApplied:
		r.logger.Info("Valset already installed", "nonce", target.Nonce, "reason", result.Reason)
	default:
		return fmt.Errorf("failed to submit valset %d: %w", target.Nonce, result.AsError())
	}

	return nil
}

func (r *ValsetRelayerImpl) endorse(ctx context.Context, valset *core.Valset, digest []byte) error {
	signature, err := r.signer.Sign(digest)
	if err != nil {
		return fmt.Errorf("failed to sign valset %d: %w", valset.Nonce, err)
	}

	result := r.consensus.Broadcast(ctx, &core.MsgValsetConfirm{
		Nonce:        valset.Nonce,
		Orchestrator: r.orchestrator,
		EthAddress:   r.signer.Address(),
		Signature:    signature,
	})
	if !result.IsSuccess() {
		return fmt.Errorf("failed to broadcast confirm for valset %d: %w", valset.Nonce, result.AsError())
	}

	telemetry.UpdateValsetConfirmSubmitted(valset.Nonce)

	r.logger.Info("Valset confirmed", "nonce", valset.Nonce, "outcome", result.Outcome, "tx", result.TxHash)

	return nil
}

func (r *ValsetRelayerImpl) getPeggyID(ctx context.Context) ([32]byte, error) {
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

// latestAbove returns the valset with the highest nonce greater than nonce.
func latestAbove(valsets []*core.Valset, nonce uint64) *core.Valset {
	var result *core.Valset

	for _, valset := range valsets {
		if valset != nil && valset.Nonce > nonce && (result == nil || valset.Nonce > result.Nonce) {
			result = valset
		}
	}

	return result
}
