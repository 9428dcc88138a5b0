// Package recognition defines the contract types for live speech
// recognition services consumed by the workflow orchestrator.
package recognition

import "github.com/google/uuid"

// Phase is the recognition service's own lifecycle phase.
type Phase string

const (
	// PhaseIdle means no capture is running.
	PhaseIdle Phase = "idle"
	// PhaseListening means audio is being captured and transcribed; State
	// carries the current interim transcript.
	PhaseListening Phase = "listening"
	// PhaseCompleted is terminal for one start: State carries the final
	// transcript (possibly empty when the utterance held no usable speech).
	PhaseCompleted Phase = "completed"
	// PhaseErrored is terminal for one start: State carries the failure.
	PhaseErrored Phase = "errored"
)

// State is one observation on a recognition service's state stream.
//
// A service must emit exactly one PhaseCompleted or PhaseErrored observation
// per successful Start before returning to PhaseIdle.
type State struct {
	Phase      Phase
	Transcript string
	Err        error
}

func Idle() State                       { return State{Phase: PhaseIdle} }
func Listening(transcript string) State { return State{Phase: PhaseListening, Transcript: transcript} }
func Completed(transcript string) State { return State{Phase: PhaseCompleted, Transcript: transcript} }
func Errored(err error) State           { return State{Phase: PhaseErrored, Err: err} }

// Token is an opaque handle for a registered state-change handler. The
// registrant owns the token and is responsible for revoking it.
type Token string

// NewToken creates a unique handler token.
func NewToken() Token { return Token(uuid.NewString()) }
