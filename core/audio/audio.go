// Package audio holds the encoding metadata and device contracts shared by
// the capture and playback backends and the speech adapters built on them.
package audio

import "context"

// Source is a live audio capture device. Stream delivers raw frames to
// onAudio until StopStream or Close is called; frames use the encoding
// reported by EncodingInfo.
type Source interface {
	EncodingInfo() EncodingInfo
	Stream(ctx context.Context, onAudio func(audio []byte)) error
	StopStream() error
	Close()
}

// Sink is a live audio playback device. SendAudio enqueues raw frames for
// playback; AwaitDrain blocks until everything enqueued so far has been
// played; ClearBuffer drops anything not yet played.
type Sink interface {
	EncodingInfo() EncodingInfo
	SendAudio(audio []byte) error
	AwaitDrain() error
	ClearBuffer()
	Close()
}
