package workflow

import (
	"context"
	"fmt"

	"github.com/voxloop/voxloop-core/core/recognition"
)

// speechRecognizer is the recognition facade used to handle optional client
// wiring and observer-token bookkeeping.
type speechRecognizer struct {
	// client stores the configured recognition implementation.
	client RecognitionService

	token      recognition.Token
	subscribed bool
}

func (r *speechRecognizer) set(client RecognitionService) {
	if r != nil {
		r.client = client
	}
}

func (r *speechRecognizer) isConfigured() bool {
	return r != nil && r.client != nil
}

// subscribe registers the state-change handler and keeps the token so the
// registration can be revoked on teardown.
func (r *speechRecognizer) subscribe(handler func(recognition.State)) {
	if !r.isConfigured() || r.subscribed {
		return
	}

	r.token = r.client.AddStateChangeHandler(handler)
	r.subscribed = true
}

func (r *speechRecognizer) unsubscribe() {
	if !r.isConfigured() || !r.subscribed {
		return
	}

	r.client.RemoveStateChangeHandler(r.token)
	r.subscribed = false
}

func (r *speechRecognizer) start(ctx context.Context) error {
	if !r.isConfigured() {
		return nil
	}

	if err := r.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start recognition: %w", err)
	}

	return nil
}

func (r *speechRecognizer) stop() {
	if !r.isConfigured() {
		return
	}

	r.client.Stop()
}
