package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
)

// turnTask is the at-most-one cancellable unit of work that takes recognized
// text through inference and into synthesis.
type turnTask struct {
	session    uuid.UUID
	transcript string
	startedAt  time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func (t *turnTask) isCancelled() bool {
	return t.ctx.Err() != nil
}

// startTurnLocked creates and launches the turn task for the recognized
// transcript. Starting a new task cancels and replaces any prior one.
func (o *Orchestrator) startTurnLocked(transcript string) {
	if o.turn != nil {
		o.turn.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	task := &turnTask{
		session:    o.session,
		transcript: transcript,
		startedAt:  time.Now(),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	o.turn = task

	go o.processTurn(task)
}

// processTurn runs the turn pipeline: inference over the transcript, then
// hand-off to synthesis. Cancellation is checked between the steps; a
// cancelled task performs no further transitions because whoever cancelled
// it already owns the resulting state.
func (o *Orchestrator) processTurn(task *turnTask) {
	defer close(task.done)

	ctx, span := tracer.Start(task.ctx, "process turn")
	defer span.End()

	defer func() {
		if recovered := recover(); recovered != nil {
			err := fmt.Errorf("turn worker panicked: %v", recovered)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			o.failProcessing(task, err)
		}
	}()

	response, err := o.inference.process(ctx, task.transcript)
	if task.isCancelled() {
		span.AddEvent("turn cancelled")
		return
	}
	if err != nil {
		recordedErr := fmt.Errorf("failed to generate response: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		o.failProcessing(task, err)
		return
	}

	if !o.advanceToSynthesis(task, response) {
		span.AddEvent("turn superseded before synthesis")
		return
	}

	if err := o.synthesis.speak(ctx, response); err != nil {
		if task.isCancelled() {
			return
		}
		recordedErr := fmt.Errorf("failed to synthesize response: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		o.failSpeak(task, err)
	}
}

// advanceToSynthesis transitions processingSpeech → synthesizingResponse for
// the given task, refusing if the task went stale in the meantime.
func (o *Orchestrator) advanceToSynthesis(task *turnTask, response string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.turn != task || task.isCancelled() || o.state.Phase != PhaseProcessingSpeech {
		return false
	}

	o.setStateLocked(stateSynthesizing(response))
	return true
}

func (o *Orchestrator) failProcessing(task *turnTask, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.turn != task || task.isCancelled() || o.state.Phase != PhaseProcessingSpeech {
		return
	}

	o.recordTurnLocked(TurnOutcomeFailed, ErrorKindProcessingFailed)
	o.turn = nil
	o.setStateLocked(stateErrored(ErrorKindProcessingFailed, errDetail(err)))
	o.armIdleResetLocked()
}

// failSpeak handles a synchronous Speak error from the task itself; the
// asynchronous error-handler path arrives through the dispatcher instead.
func (o *Orchestrator) failSpeak(task *turnTask, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.turn != task || task.isCancelled() || o.state.Phase != PhaseSynthesizingResponse {
		return
	}

	o.failTurnLocked(ErrorKindSynthesisFailed, err)
}

// failTurnLocked ends the live turn in an error state of the given kind.
func (o *Orchestrator) failTurnLocked(kind ErrorKind, err error) {
	o.recordTurnLocked(TurnOutcomeFailed, kind)
	if o.turn != nil {
		o.turn.cancel()
		o.turn = nil
	}
	o.setStateLocked(stateErrored(kind, errDetail(err)))
	o.armIdleResetLocked()
}

// completeTurnLocked records the live turn as completed and releases it.
func (o *Orchestrator) completeTurnLocked() {
	o.recordTurnLocked(TurnOutcomeCompleted, "")
	if o.turn != nil {
		o.turn.cancel()
		o.turn = nil
	}
}

// cancelTurnLocked cancels and releases the live turn, recording it as
// cancelled. Safe to call when no turn is live.
func (o *Orchestrator) cancelTurnLocked() {
	if o.turn == nil {
		return
	}

	o.recordTurnLocked(TurnOutcomeCancelled, "")
	o.turn.cancel()
	o.turn = nil
}

func (o *Orchestrator) recordTurnLocked(outcome TurnOutcome, kind ErrorKind) {
	if o.turn == nil {
		return
	}

	o.history.append(TurnRecord{
		ID:         uuid.NewString(),
		Transcript: o.turn.transcript,
		Response:   o.state.Response,
		Outcome:    outcome,
		ErrorKind:  kind,
		StartedAt:  o.turn.startedAt,
		EndedAt:    time.Now(),
	})
}
