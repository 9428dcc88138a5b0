package workflow

import (
	"context"
	"time"

	"github.com/voxloop/voxloop-core/core/permissions"
	"github.com/voxloop/voxloop-core/core/recognition"
	"github.com/voxloop/voxloop-core/core/synthesis"
)

type OrchestratorOption func(*Orchestrator)

// RecognitionService wraps live audio capture and speech-to-text. Start
// begins one utterance; the service reports progress through its state
// stream and must deliver exactly one completed or errored observation per
// successful Start before returning to idle.
type RecognitionService interface {
	Start(ctx context.Context) error
	Stop()
	AddStateChangeHandler(handler func(recognition.State)) recognition.Token
	RemoveStateChangeHandler(token recognition.Token)
}

func WithRecognitionService(client RecognitionService) OrchestratorOption {
	return func(o *Orchestrator) { o.recognition.set(client) }
}

// SynthesisService converts text to spoken audio and plays it. Cancel must
// be safe to call even when nothing is speaking.
type SynthesisService interface {
	Speak(ctx context.Context, text string) error
	Cancel()
	AddSpeakingChangedHandler(handler func(isSpeaking bool)) synthesis.Token
	AddErrorHandler(handler func(err error)) synthesis.Token
	RemoveHandler(token synthesis.Token)
}

func WithSynthesisService(client SynthesisService) OrchestratorOption {
	return func(o *Orchestrator) { o.synthesis.set(client) }
}

// InferenceService turns recognized text into reply text. It is opaque to
// the orchestrator: possibly slow, possibly failing, responsible for its own
// timeouts.
type InferenceService interface {
	Process(ctx context.Context, text string) (string, error)
}

func WithInferenceService(client InferenceService) OrchestratorOption {
	return func(o *Orchestrator) { o.inference.set(client) }
}

func WithPermissionGate(gate permissions.Gate) OrchestratorOption {
	return func(o *Orchestrator) { o.permissions.set(gate) }
}

// WithStateChangeCallback registers the read-only state projection for UI
// binding. Notifications are delivered in transition order on the
// orchestrator's dispatch path; the callback must not call orchestrator
// methods synchronously and should not block.
func WithStateChangeCallback(callback func(State)) OrchestratorOption {
	return func(o *Orchestrator) {
		if callback != nil {
			o.onStateChange = callback
		}
	}
}

// WithPartialTranscriptCallback registers a callback for interim transcript
// updates while listening. Partial updates never cause a state transition.
func WithPartialTranscriptCallback(callback func(transcript string)) OrchestratorOption {
	return func(o *Orchestrator) {
		if callback != nil {
			o.onPartialTranscript = callback
		}
	}
}

// WithIdleResetDelay overrides the grace period between entering a terminal
// state and the automatic return to idle.
func WithIdleResetDelay(delay time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if delay > 0 {
			o.idleResetDelay = delay
		}
	}
}
