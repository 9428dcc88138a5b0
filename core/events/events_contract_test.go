package events

import "testing"

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "recognition listening", event: NewRecognitionListening(), expected: KindRecognitionListening},
		{name: "recognition transcript partial", event: NewRecognitionTranscriptPartial("seg"), expected: KindRecognitionTranscriptPartial},
		{name: "recognition transcript final", event: NewRecognitionTranscriptFinal("text"), expected: KindRecognitionTranscriptFinal},
		{name: "recognition failed", event: NewRecognitionFailed(nil), expected: KindRecognitionFailed},
		{name: "synthesis speaking changed", event: NewSynthesisSpeakingChanged(true), expected: KindSynthesisSpeakingChanged},
		{name: "synthesis failed", event: NewSynthesisFailed(nil), expected: KindSynthesisFailed},
		{name: "idle reset elapsed", event: NewIdleResetElapsed(), expected: KindIdleResetElapsed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected a constructor-set timestamp")
			}
		})
	}
}

func TestTranscriptEventsCarryPayload(t *testing.T) {
	partial := NewRecognitionTranscriptPartial("set a")
	if partial.Transcript != "set a" {
		t.Fatalf("expected partial transcript payload, got %q", partial.Transcript)
	}

	final := NewRecognitionTranscriptFinal("set a timer")
	if final.Transcript != "set a timer" {
		t.Fatalf("expected final transcript payload, got %q", final.Transcript)
	}

	if partial.Kind() == final.Kind() {
		t.Fatalf("expected partial and final transcript kinds to differ, both were %q", partial.Kind())
	}
}
