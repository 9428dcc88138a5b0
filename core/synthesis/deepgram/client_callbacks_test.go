package deepgram

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestNewClientRejectsUnknownVoice(t *testing.T) {
	if _, err := NewClient(nil, WithVoice("aura-nonexistent-en")); err == nil {
		t.Fatalf("expected unknown voice to be rejected")
	}

	if _, err := NewClient(nil, WithVoice(VoiceOrion)); err != nil {
		t.Fatalf("expected known voice to be accepted: %v", err)
	}
}

func TestSpeakingHandlersFanOutAndRevoke(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	firstCalls := atomic.Int32{}
	secondCalls := atomic.Int32{}
	client.AddSpeakingChangedHandler(func(bool) { firstCalls.Add(1) })
	secondToken := client.AddSpeakingChangedHandler(func(bool) { secondCalls.Add(1) })

	client.emitSpeaking(true)
	if firstCalls.Load() != 1 || secondCalls.Load() != 1 {
		t.Fatalf("expected both handlers called once, got %d and %d", firstCalls.Load(), secondCalls.Load())
	}

	client.RemoveHandler(secondToken)
	client.emitSpeaking(false)
	if got := firstCalls.Load(); got != 2 {
		t.Fatalf("expected remaining handler called twice, got %d", got)
	}
	if got := secondCalls.Load(); got != 1 {
		t.Fatalf("expected removed handler not to be called again, got %d", got)
	}
}

func TestErrorHandlersReceiveFailures(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	received := make(chan error, 1)
	token := client.AddErrorHandler(func(err error) {
		select {
		case received <- err:
		default:
		}
	})

	emitted := errors.New("playback failed")
	client.emitError(emitted)

	select {
	case err := <-received:
		if !errors.Is(err, emitted) {
			t.Fatalf("expected emitted error, got %v", err)
		}
	default:
		t.Fatalf("expected error handler to be called")
	}

	client.RemoveHandler(token)
	client.emitError(errors.New("again"))
	select {
	case err := <-received:
		t.Fatalf("expected no delivery after removal, got %v", err)
	default:
	}
}

func TestSpeakRefusesCancelledContext(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	calls := atomic.Int32{}
	client.AddSpeakingChangedHandler(func(bool) { calls.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.Speak(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation error, got %v", err)
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no speaking emissions from a refused speak, got %d", got)
	}
}

func TestCancelWithoutSpeakIsANoOp(t *testing.T) {
	client, err := NewClient(nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	calls := atomic.Int32{}
	client.AddSpeakingChangedHandler(func(bool) { calls.Add(1) })

	client.Cancel()
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected no emissions from cancelling an idle client, got %d", got)
	}
}
