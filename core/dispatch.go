package workflow

import (
	"strings"

	"github.com/voxloop/voxloop-core/core/events"
	"github.com/voxloop/voxloop-core/core/recognition"
)

// handleRecognitionState converts recognition state-stream observations into
// typed events for the dispatcher. Runs on the recognition service's
// goroutine.
func (o *Orchestrator) handleRecognitionState(state recognition.State) {
	switch state.Phase {
	case recognition.PhaseListening:
		if state.Transcript == "" {
			o.dispatch(events.NewRecognitionListening())
			return
		}
		o.dispatch(events.NewRecognitionTranscriptPartial(state.Transcript))
	case recognition.PhaseCompleted:
		o.dispatch(events.NewRecognitionTranscriptFinal(state.Transcript))
	case recognition.PhaseErrored:
		o.dispatch(events.NewRecognitionFailed(state.Err))
	}
}

// handleSpeakingChanged runs on the synthesis service's goroutine.
func (o *Orchestrator) handleSpeakingChanged(isSpeaking bool) {
	o.dispatch(events.NewSynthesisSpeakingChanged(isSpeaking))
}

// handleSynthesisError runs on the synthesis service's goroutine.
func (o *Orchestrator) handleSynthesisError(err error) {
	o.dispatch(events.NewSynthesisFailed(err))
}

// dispatch is the single serialization point for everything that reaches the
// orchestrator from the outside. Events are applied one at a time under the
// state mutex; a torn-down orchestrator drops everything.
func (o *Orchestrator) dispatch(event events.Event) {
	if o == nil || o.closed.Load() {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.applyEventLocked(event)
}

// applyEventLocked is the transition table. Any event/phase pairing not
// listed here is stale noise — recognition and synthesis callbacks can
// arrive slightly out of order relative to cancellation — and is dropped
// without a transition.
func (o *Orchestrator) applyEventLocked(event events.Event) {
	switch typedEvent := event.(type) {
	case events.RecognitionListening:
		if o.state.Phase == PhaseInitializingRecognition {
			o.setStateLocked(statePhase(PhaseListening))
			return
		}

	case events.RecognitionTranscriptPartial:
		switch o.state.Phase {
		case PhaseInitializingRecognition:
			// A partial can outrun the listening signal.
			o.setStateLocked(statePhase(PhaseListening))
			o.onPartialTranscript(typedEvent.Transcript)
			return
		case PhaseListening:
			// Partials never leave listening.
			o.onPartialTranscript(typedEvent.Transcript)
			return
		}

	case events.RecognitionTranscriptFinal:
		if o.state.Phase != PhaseListening {
			break
		}
		transcript := strings.TrimSpace(typedEvent.Transcript)
		if transcript == "" {
			// Nothing usable was said; the turn never started.
			o.setStateLocked(stateIdle())
			return
		}
		o.setStateLocked(stateProcessing(transcript))
		o.startTurnLocked(transcript)
		return

	case events.RecognitionFailed:
		switch o.state.Phase {
		case PhaseInitializingRecognition, PhaseListening:
			o.setStateLocked(stateErrored(ErrorKindRecognitionFailed, errDetail(typedEvent.Err)))
			o.armIdleResetLocked()
			return
		}

	case events.SynthesisSpeakingChanged:
		if o.state.Phase != PhaseSynthesizingResponse {
			break
		}
		if typedEvent.IsSpeaking {
			// Playback started; the phase already says so.
			return
		}
		o.completeTurnLocked()
		o.setStateLocked(statePhase(PhaseCompleted))
		o.armIdleResetLocked()
		return

	case events.SynthesisFailed:
		if o.state.Phase != PhaseSynthesizingResponse {
			break
		}
		o.failTurnLocked(ErrorKindSynthesisFailed, typedEvent.Err)
		return

	case events.IdleResetElapsed:
		switch o.state.Phase {
		case PhaseCompleted, PhaseErrored:
			o.setStateLocked(stateIdle())
			return
		}
	}

	logger.Debug("ignoring stale workflow event",
		"event", string(event.Kind()),
		"phase", string(o.state.Phase),
	)
}
