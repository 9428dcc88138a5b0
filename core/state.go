package workflow

import "fmt"

// Phase is the workflow's position in a single conversational turn. Exactly
// one phase is held at any time; payload for phases that carry data lives on
// [State].
type Phase string

const (
	PhaseIdle                    Phase = "idle"
	PhaseRequestingPermission    Phase = "requesting_permission"
	PhasePermissionGranted       Phase = "permission_granted"
	PhasePermissionDenied        Phase = "permission_denied"
	PhaseInitializingRecognition Phase = "initializing_recognition"
	PhaseListening               Phase = "listening"
	PhaseProcessingSpeech        Phase = "processing_speech"
	PhaseSynthesizingResponse    Phase = "synthesizing_response"
	PhaseCompleted               Phase = "completed"
	PhaseErrored                 Phase = "errored"
)

// ErrorKind classifies every way a workflow turn can fail. The set is closed
// and mutually exclusive; each failure path maps to exactly one kind.
type ErrorKind string

const (
	ErrorKindPermissionDenied  ErrorKind = "permission_denied"
	ErrorKindRecognitionFailed ErrorKind = "recognition_failed"
	ErrorKindProcessingFailed  ErrorKind = "processing_failed"
	ErrorKindSynthesisFailed   ErrorKind = "synthesis_failed"
)

// WorkflowError is the terminal failure payload of [PhaseErrored]. It carries
// enough detail to render a message and nothing about retrying: a failed turn
// requires the user to start the workflow again.
type WorkflowError struct {
	Kind   ErrorKind
	Detail string
}

func (e *WorkflowError) Error() string {
	if e == nil {
		return ""
	}
	if e.Detail == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// State is the single value describing where the workflow currently is.
// Payload fields are only set in the phase that defines them.
type State struct {
	Phase Phase

	// Transcript is the recognized user speech; set in PhaseProcessingSpeech.
	Transcript string
	// Response is the generated reply being spoken; set in
	// PhaseSynthesizingResponse.
	Response string
	// Err is the turn failure; set in PhaseErrored.
	Err *WorkflowError
}

// IsActive reports whether a workflow turn is in flight. Idle and the two
// terminal phases count as inactive; everything else is active.
func (s State) IsActive() bool {
	switch s.Phase {
	case PhaseIdle, PhaseCompleted, PhaseErrored:
		return false
	}
	return true
}

func (s State) String() string {
	switch s.Phase {
	case PhaseProcessingSpeech:
		return fmt.Sprintf("%s(%q)", s.Phase, s.Transcript)
	case PhaseSynthesizingResponse:
		return fmt.Sprintf("%s(%q)", s.Phase, s.Response)
	case PhaseErrored:
		return fmt.Sprintf("%s(%s)", s.Phase, s.Err.Error())
	}
	return string(s.Phase)
}

func stateIdle() State         { return State{Phase: PhaseIdle} }
func statePhase(p Phase) State { return State{Phase: p} }

func stateProcessing(transcript string) State {
	return State{Phase: PhaseProcessingSpeech, Transcript: transcript}
}

func stateSynthesizing(response string) State {
	return State{Phase: PhaseSynthesizingResponse, Response: response}
}

func stateErrored(kind ErrorKind, detail string) State {
	return State{Phase: PhaseErrored, Err: &WorkflowError{Kind: kind, Detail: detail}}
}
