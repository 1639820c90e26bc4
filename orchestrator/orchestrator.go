package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Ethernal-Tech/peggy-orchestrator/orchestrator/core"
	"github.com/Ethernal-Tech/peggy-orchestrator/telemetry"
	"github.com/hashicorp/go-hclog"
)

type Phase uint8

const (
	PhaseEventObserver Phase = iota
	PhaseValsetRelayer
	PhaseBatchRelayer
	PhaseSleep
)

func (p Phase) String() string {
	switch p {
	case PhaseEventObserver:
		return "event_observer"
	case PhaseValsetRelayer:
		return "valset_relayer"
	case PhaseBatchRelayer:
		return "batch_relayer"
	case PhaseSleep:
		return "sleep"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

type Status struct {
	Tick       uint64            `json:"tick"`
	Phase      string            `json:"phase"`
	TickStart  time.Time         `json:"tickStart"`
	LastErrors map[string]string `json:"lastErrors"`
}

// OrchestratorImpl runs the work phases one after another on a fixed period.
// Ticks never overlap; a tick that overruns the period delays the next one.
type OrchestratorImpl struct {
	period time.Duration
	phases map[Phase]core.Phase
	logger hclog.Logger

	phase     Phase
	tick      uint64
	tickStart time.Time
	errs      map[Phase]error
	lock      sync.RWMutex

	timeNow func() time.Time
}

var _ core.Orchestrator = (*OrchestratorImpl)(nil)

func NewOrchestrator(
	config core.OrchestratorConfig,
	eventObserver core.Phase, valsetRelayer core.Phase, batchRelayer core.Phase,
	logger hclog.Logger,
) *OrchestratorImpl {
	return &OrchestratorImpl{
		period: config.LoopPeriod(),
		phases: map[Phase]core.Phase{
			PhaseEventObserver: eventObserver,
			PhaseValsetRelayer: valsetRelayer,
			PhaseBatchRelayer:  batchRelayer,
		},
		logger:  logger,
		phase:   PhaseEventObserver,
		tick:    1,
		errs:    map[Phase]error{},
		timeNow: time.Now,
	}
}

func (o *OrchestratorImpl) Start(ctx context.Context) {
	o.logger.Debug("Orchestrator started", "period", o.period)

	for ctx.Err() == nil {
		o.Step(ctx)
	}

	o.logger.Debug("Orchestrator stopped", "tick", o.tick)
}

// Step runs the current phase and advances to the next one.
func (o *OrchestratorImpl) Step(ctx context.Context) {
	o.lock.RLock()
	phase, tick, tickStart := o.phase, o.tick, o.tickStart
	o.lock.RUnlock()

	if phase == PhaseSleep {
		o.sleep(ctx, tickStart)
	} else {
		if phase == PhaseEventObserver {
			tickStart = o.timeNow()

			telemetry.UpdateOrchestratorTick(tick)
		}

		err := o.runPhase(ctx, phase)

		o.lock.Lock()
		o.errs[phase] = err
		o.lock.Unlock()
	}

	o.lock.Lock()
	defer o.lock.Unlock()

	o.tickStart = tickStart

	if phase == PhaseSleep {
		o.phase = PhaseEventObserver
		o.tick++
	} else {
		o.phase = phase + 1
	}
}

// RunTick runs the work phases of the current tick without sleeping.
func (o *OrchestratorImpl) RunTick(ctx context.Context) {
	for {
		o.lock.RLock()
		phase := o.phase
		o.lock.RUnlock()

		if phase == PhaseSleep {
			break
		}

		o.Step(ctx)
	}

	o.lock.Lock()
	o.phase = PhaseEventObserver
	o.tick++
	o.lock.Unlock()
}

func (o *OrchestratorImpl) Status() interface{} {
	o.lock.RLock()
	defer o.lock.RUnlock()

	status := Status{
		Tick:       o.tick,
		Phase:      o.phase.String(),
		TickStart:  o.tickStart,
		LastErrors: map[string]string{},
	}

	for phase, err := range o.errs {
		if err != nil {
			status.LastErrors[phase.String()] = err.Error()
		}
	}

	return status
}

func (o *OrchestratorImpl) runPhase(ctx context.Context, phase Phase) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)

			o.logger.Error("phase panicked", "phase", phase, "panic", r, "stack", string(debug.Stack()))
		}

		if err != nil {
			telemetry.UpdateOrchestratorPhaseFailed(phase.String())

			o.logger.Error("execute failed", "phase", phase, "tick", o.tick, "err", err)
		}
	}()

	phaseCtx, cancel := context.WithTimeout(ctx, o.period)
	defer cancel()

	return o.phases[phase].Execute(phaseCtx)
}

// sleep waits for the next period boundary measured from the start of the tick.
func (o *OrchestratorImpl) sleep(ctx context.Context, tickStart time.Time) {
	wait := o.period - o.timeNow().Sub(tickStart)
	if wait <= 0 {
		return
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
