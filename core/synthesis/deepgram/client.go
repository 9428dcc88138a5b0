// Package deepgram turns response text into spoken audio through the Deepgram
// speak API. Each Speak call opens a websocket for the utterance, pipes the
// returned audio into the playback sink, and reports speaking-changed
// transitions around actual playback.
package deepgram

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/synthesis"
)

type Client struct {
	sink  audio.Sink
	voice Voice

	handlersMu       sync.RWMutex
	speakingHandlers map[synthesis.Token]func(bool)
	errorHandlers    map[synthesis.Token]func(error)

	mu     sync.Mutex
	stream *speakStream
}

type Option func(*Client)

func WithVoice(voice Voice) Option {
	return func(c *Client) { c.voice = voice }
}

// NewClient wires a synthesis client over the given playback device. A nil
// sink discards the audio, which is only useful in tests.
func NewClient(sink audio.Sink, opts ...Option) (*Client, error) {
	c := &Client{
		sink:             sink,
		voice:            defaultVoice,
		speakingHandlers: map[synthesis.Token]func(bool){},
		errorHandlers:    map[synthesis.Token]func(error){},
	}
	for _, opt := range opts {
		opt(c)
	}

	if !slices.Contains(AvailableVoices(), c.voice) {
		return nil, fmt.Errorf("invalid voice %q", c.voice)
	}

	return c, nil
}

func (c *Client) AddSpeakingChangedHandler(handler func(bool)) synthesis.Token {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	token := synthesis.NewToken()
	c.speakingHandlers[token] = handler
	return token
}

func (c *Client) AddErrorHandler(handler func(error)) synthesis.Token {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	token := synthesis.NewToken()
	c.errorHandlers[token] = handler
	return token
}

// RemoveHandler revokes a registration of either kind.
func (c *Client) RemoveHandler(token synthesis.Token) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	delete(c.speakingHandlers, token)
	delete(c.errorHandlers, token)
}

func (c *Client) emitSpeaking(isSpeaking bool) {
	c.handlersMu.RLock()
	handlers := make([]func(bool), 0, len(c.speakingHandlers))
	for _, handler := range c.speakingHandlers {
		handlers = append(handlers, handler)
	}
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(isSpeaking)
	}
}

func (c *Client) emitError(err error) {
	c.handlersMu.RLock()
	handlers := make([]func(error), 0, len(c.errorHandlers))
	for _, handler := range c.errorHandlers {
		handlers = append(handlers, handler)
	}
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(err)
	}
}

// Speak synthesizes one utterance. It returns once the text has been handed
// to the speak websocket; playback progress is reported through the
// speaking-changed handlers.
func (c *Client) Speak(ctx context.Context, text string) error {
	// The caller may have been cancelled between deciding to speak and
	// reaching here; refuse before opening a websocket that would play
	// audio nobody wants anymore.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("speak cancelled: %w", err)
	}

	encoding := audio.GetDefaultEncodingInfo()
	if c.sink != nil {
		encoding = c.sink.EncodingInfo()
	}

	conn, err := connectWebsocket(c.voice, encoding)
	if err != nil {
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	stream := &speakStream{client: c, conn: conn}

	c.mu.Lock()
	if c.stream != nil {
		c.stream.cancel()
	}
	c.stream = stream
	c.mu.Unlock()

	go stream.readAndProcessMessages()

	if err := stream.sendWebsocketMessage(speakMsg(text)); err != nil {
		stream.cancel()
		return fmt.Errorf("failed to send text: %w", err)
	}
	if err := stream.sendWebsocketMessage(flushMsg); err != nil {
		stream.cancel()
		return fmt.Errorf("failed to flush text: %w", err)
	}

	return nil
}

// Cancel aborts the live utterance, if any: remote buffers are cleared, local
// playback is dropped, and the stream is torn down.
func (c *Client) Cancel() {
	c.mu.Lock()
	stream := c.stream
	c.stream = nil
	c.mu.Unlock()

	if stream != nil {
		stream.cancel()
	}
}

func (c *Client) detach(stream *speakStream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == stream {
		c.stream = nil
	}
}
