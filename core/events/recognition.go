package events

// KindRecognitionListening identifies recognition entering live listening.
const KindRecognitionListening Kind = "recognition.listening"

// RecognitionListening marks the start of live capture and transcription.
type RecognitionListening struct{ Base }

// NewRecognitionListening creates a recognition listening event.
func NewRecognitionListening() RecognitionListening {
	return RecognitionListening{Base: NewBase(KindRecognitionListening)}
}

// KindRecognitionTranscriptPartial identifies an interim transcript update.
const KindRecognitionTranscriptPartial Kind = "recognition.transcript_partial"

// RecognitionTranscriptPartial carries a mutable interim transcript snapshot.
type RecognitionTranscriptPartial struct {
	Base
	Transcript string
}

// NewRecognitionTranscriptPartial creates an interim transcript event.
func NewRecognitionTranscriptPartial(transcript string) RecognitionTranscriptPartial {
	return RecognitionTranscriptPartial{Base: NewBase(KindRecognitionTranscriptPartial), Transcript: transcript}
}

// KindRecognitionTranscriptFinal identifies the terminal utterance transcript.
const KindRecognitionTranscriptFinal Kind = "recognition.transcript_final"

// RecognitionTranscriptFinal carries the terminal transcript for the
// utterance. An empty transcript means the utterance held no usable speech.
type RecognitionTranscriptFinal struct {
	Base
	Transcript string
}

// NewRecognitionTranscriptFinal creates a final transcript event.
func NewRecognitionTranscriptFinal(transcript string) RecognitionTranscriptFinal {
	return RecognitionTranscriptFinal{Base: NewBase(KindRecognitionTranscriptFinal), Transcript: transcript}
}

// KindRecognitionFailed identifies a recognition failure.
const KindRecognitionFailed Kind = "recognition.failed"

// RecognitionFailed marks a capture or transcription failure.
type RecognitionFailed struct {
	Base
	Err error
}

// NewRecognitionFailed creates a recognition failure event.
func NewRecognitionFailed(err error) RecognitionFailed {
	return RecognitionFailed{Base: NewBase(KindRecognitionFailed), Err: err}
}
