// Package workflow drives a single spoken conversational turn: permission
// check, live speech recognition, inference over the recognized text, and
// spoken playback of the reply. The orchestrator owns the only mutable state
// and is the sole component that starts and stops the leaf services.
package workflow

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/voxloop/voxloop-core/core/events"
)

const defaultIdleResetDelay = 500 * time.Millisecond

type Orchestrator struct {
	mu sync.Mutex

	// state is the single workflow state value; mutated only while mu is
	// held and only through setStateLocked.
	state State
	// session identifies the current workflow attempt. Async completions
	// carry the session they were started for and are dropped on mismatch.
	session uuid.UUID
	// turn is the at-most-one live turn task.
	turn *turnTask

	permissions permissionGate
	// recognition is the recognition facade used to normalize client wiring.
	recognition speechRecognizer
	// synthesis is the synthesis facade used to normalize client wiring.
	synthesis speechSynthesizer
	inference responseGenerator

	idleReset      idleResetTimer
	idleResetDelay time.Duration
	history        turnLog

	onStateChange       func(State)
	onPartialTranscript func(string)

	closeOnce sync.Once
	closed    atomic.Bool
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		state:               stateIdle(),
		idleResetDelay:      defaultIdleResetDelay,
		onStateChange:       func(State) {},
		onPartialTranscript: func(string) {},
	}

	for _, opt := range opts {
		opt(o)
	}

	o.recognition.subscribe(o.handleRecognitionState)
	o.synthesis.subscribe(o.handleSpeakingChanged, o.handleSynthesisError)

	return o
}

// State returns a point-in-time snapshot of the workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// History returns a deep-copied log of finished turns, oldest first.
func (o *Orchestrator) History() []TurnRecord {
	return o.history.snapshot()
}

// StartWorkflow attempts to begin a conversational turn. Safe to call from
// any state: while the response is being spoken it is a barge-in (synthesis
// is cancelled and the workflow restarts), from completed it resets first,
// and from any other active state it declines as a no-op so rapid re-taps
// cannot double-start the pipeline.
//
// The call suspends through the permission round-trip and returns once the
// workflow has been denied, handed off to recognition, or declined.
func (o *Orchestrator) StartWorkflow(ctx context.Context) {
	if o == nil || o.closed.Load() {
		return
	}

	ctx, span := tracer.Start(ctx, "start workflow")
	defer span.End()

	session, interruptedSynthesis, proceed := o.beginSession()
	if interruptedSynthesis {
		o.synthesis.cancel()
	}
	if !proceed {
		span.AddEvent("start declined", trace.WithAttributes(
			attribute.String("phase", string(o.State().Phase)),
		))
		logger.Debug("start workflow declined", "phase", string(o.State().Phase))
		return
	}

	granted := o.permissions.allGranted()
	var requestErr error
	if !granted {
		granted, requestErr = o.permissions.requestAll(ctx)
	}

	if requestErr != nil || !granted {
		if requestErr != nil {
			recordedErr := fmt.Errorf("failed to request permissions: %w", requestErr)
			span.RecordError(recordedErr)
			span.SetStatus(codes.Error, recordedErr.Error())
		}
		o.denyPermission(session, requestErr)
		return
	}

	if !o.grantPermission(session) {
		span.AddEvent("permission result stale")
		return
	}

	if err := o.recognition.start(ctx); err != nil {
		recordedErr := fmt.Errorf("failed to initialize recognition: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		o.failRecognitionStart(session, err)
	}
}

// StopWorkflow is the universal cancellation point: it cancels any live turn
// task, tells recognition to stop, cancels a pending idle reset, and forces
// the state to idle. Safe to call from any state.
func (o *Orchestrator) StopWorkflow() {
	if o == nil || o.closed.Load() {
		return
	}

	o.mu.Lock()
	o.session = uuid.Nil
	o.cancelTurnLocked()
	o.idleReset.Cancel()
	o.setStateLocked(stateIdle())
	o.mu.Unlock()

	o.recognition.stop()
	o.synthesis.cancel()
}

// Close tears the orchestrator down exactly once: the workflow is stopped,
// observer registrations are revoked, and the instance becomes inert — all
// later method calls and late service callbacks are no-ops.
func (o *Orchestrator) Close() {
	if o == nil {
		return
	}

	o.closeOnce.Do(func() {
		o.StopWorkflow()
		o.recognition.unsubscribe()
		o.synthesis.unsubscribe()
		o.idleReset.Cancel()
		o.closed.Store(true)
	})
}

// beginSession applies the start-guard portion of the transition table and,
// when the start is admissible, opens a new session in requestingPermission.
func (o *Orchestrator) beginSession() (session uuid.UUID, interruptedSynthesis, proceed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.Phase == PhaseSynthesizingResponse {
		// Barge-in: the user restarts while the system is talking. Exactly
		// one intermediate idle notification is observed before the new
		// workflow's transitions.
		interruptedSynthesis = true
		o.cancelTurnLocked()
		o.idleReset.Cancel()
		o.setStateLocked(stateIdle())
	}

	if o.state.Phase == PhaseCompleted {
		o.idleReset.Cancel()
		o.setStateLocked(stateIdle())
	}

	switch o.state.Phase {
	case PhaseIdle, PhasePermissionGranted:
	default:
		return uuid.Nil, interruptedSynthesis, false
	}

	o.idleReset.Cancel()
	o.session = uuid.New()
	o.setStateLocked(statePhase(PhaseRequestingPermission))
	return o.session, interruptedSynthesis, true
}

func (o *Orchestrator) denyPermission(session uuid.UUID, requestErr error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != session || o.state.Phase != PhaseRequestingPermission {
		return
	}

	detail := "required capabilities were not granted"
	if requestErr != nil {
		detail = requestErr.Error()
	}

	o.setStateLocked(statePhase(PhasePermissionDenied))
	o.setStateLocked(stateErrored(ErrorKindPermissionDenied, detail))
	o.armIdleResetLocked()
}

func (o *Orchestrator) grantPermission(session uuid.UUID) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != session || o.state.Phase != PhaseRequestingPermission {
		return false
	}

	o.setStateLocked(statePhase(PhasePermissionGranted))
	o.setStateLocked(statePhase(PhaseInitializingRecognition))
	return true
}

func (o *Orchestrator) failRecognitionStart(session uuid.UUID, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session != session || o.state.Phase != PhaseInitializingRecognition {
		return
	}

	o.setStateLocked(stateErrored(ErrorKindRecognitionFailed, errDetail(err)))
	o.armIdleResetLocked()
}

// setStateLocked is the only state writer. Callers hold o.mu; the change
// notification runs inline on the dispatch path, so observers see every
// transition in total order.
func (o *Orchestrator) setStateLocked(state State) {
	if o.state == state {
		return
	}

	o.state = state
	o.onStateChange(state)
}

func (o *Orchestrator) armIdleResetLocked() {
	o.idleReset.Arm(o.idleResetDelay, func() {
		o.dispatch(events.NewIdleResetElapsed())
	})
}

func errDetail(err error) string {
	if err != nil {
		return err.Error()
	}
	return ""
}
