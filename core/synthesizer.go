package workflow

import (
	"context"
	"fmt"

	"github.com/voxloop/voxloop-core/core/synthesis"
)

// speechSynthesizer is the synthesis facade used to handle optional client
// wiring and observer-token bookkeeping.
type speechSynthesizer struct {
	// client stores the configured synthesis implementation.
	client SynthesisService

	speakingToken synthesis.Token
	errorToken    synthesis.Token
	subscribed    bool
}

func (s *speechSynthesizer) set(client SynthesisService) {
	if s != nil {
		s.client = client
	}
}

func (s *speechSynthesizer) isConfigured() bool {
	return s != nil && s.client != nil
}

// subscribe registers both synthesis handlers and keeps the tokens so the
// registrations can be revoked on teardown.
func (s *speechSynthesizer) subscribe(onSpeakingChanged func(bool), onError func(error)) {
	if !s.isConfigured() || s.subscribed {
		return
	}

	s.speakingToken = s.client.AddSpeakingChangedHandler(onSpeakingChanged)
	s.errorToken = s.client.AddErrorHandler(onError)
	s.subscribed = true
}

func (s *speechSynthesizer) unsubscribe() {
	if !s.isConfigured() || !s.subscribed {
		return
	}

	s.client.RemoveHandler(s.speakingToken)
	s.client.RemoveHandler(s.errorToken)
	s.subscribed = false
}

func (s *speechSynthesizer) speak(ctx context.Context, text string) error {
	if !s.isConfigured() {
		return nil
	}

	if err := s.client.Speak(ctx, text); err != nil {
		return fmt.Errorf("failed to speak response: %w", err)
	}

	return nil
}

func (s *speechSynthesizer) cancel() {
	if !s.isConfigured() {
		return
	}

	s.client.Cancel()
}
