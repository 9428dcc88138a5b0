package events

// KindSynthesisSpeakingChanged identifies a spoken-playback state change.
const KindSynthesisSpeakingChanged Kind = "synthesis.speaking_changed"

// SynthesisSpeakingChanged marks playback of the spoken reply starting or
// ending.
type SynthesisSpeakingChanged struct {
	Base
	IsSpeaking bool
}

// NewSynthesisSpeakingChanged creates a speaking-changed event.
func NewSynthesisSpeakingChanged(isSpeaking bool) SynthesisSpeakingChanged {
	return SynthesisSpeakingChanged{Base: NewBase(KindSynthesisSpeakingChanged), IsSpeaking: isSpeaking}
}

// KindSynthesisFailed identifies a synthesis failure.
const KindSynthesisFailed Kind = "synthesis.failed"

// SynthesisFailed marks a speech generation or playback failure.
type SynthesisFailed struct {
	Base
	Err error
}

// NewSynthesisFailed creates a synthesis failure event.
func NewSynthesisFailed(err error) SynthesisFailed {
	return SynthesisFailed{Base: NewBase(KindSynthesisFailed), Err: err}
}
