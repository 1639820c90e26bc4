package telemetry

import (
	"github.com/armon/go-metrics"
)

const (
	orchestratorMetricsPrefix = "orchestrator"
	observerMetricsPrefix     = "observer"
	valsetMetricsPrefix       = "valset_relayer"
	batchMetricsPrefix        = "batch_relayer"
)

func UpdateOrchestratorTick(tick uint64) {
	metrics.SetGauge([]string{orchestratorMetricsPrefix, "tick"}, float32(tick))
}

func UpdateOrchestratorPhaseFailed(phase string) {
	metrics.IncrCounter([]string{orchestratorMetricsPrefix, "phase_failed_counter", phase}, 1)
}

func UpdateObserverAttestedCounter(eventType string, cnt int) {
	metrics.IncrCounter([]string{observerMetricsPrefix, "attested_counter", eventType}, float32(cnt))
}

func UpdateObserverLastEventNonce(nonce uint64) {
	metrics.SetGauge([]string{observerMetricsPrefix, "last_event_nonce"}, float32(nonce))
}

func UpdateObserverCheckpointHeight(height uint64) {
	metrics.SetGauge([]string{observerMetricsPrefix, "checkpoint_height"}, float32(height))
}

func UpdateValsetConfirmSubmitted(nonce uint64) {
	metrics.SetGauge([]string{valsetMetricsPrefix, "confirm_submitted"}, float32(nonce))
}

func UpdateValsetExecuted(nonce uint64, outcome string) {
	metrics.SetGaugeWithLabels([]string{valsetMetricsPrefix, "executed"}, float32(nonce),
		[]metrics.Label{{Name: "outcome", Value: outcome}})
}

func UpdateBatchConfirmSubmitted(token string, nonce uint64) {
	metrics.SetGauge([]string{batchMetricsPrefix, "confirm_submitted", token}, float32(nonce))
}

func UpdateBatchExecuted(token string, nonce uint64, outcome string) {
	metrics.SetGaugeWithLabels([]string{batchMetricsPrefix, "executed", token}, float32(nonce),
		[]metrics.Label{{Name: "outcome", Value: outcome}})
}
