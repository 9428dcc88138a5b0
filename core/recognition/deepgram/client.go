// Package deepgram streams capture audio to the Deepgram listen API and
// publishes recognition state changes to registered handlers. Each Start
// recognizes a single utterance: once Deepgram signals the end of speech the
// stream tears itself down, emits exactly one terminal completed or errored
// state, and returns to idle.
package deepgram

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/voxloop/voxloop-core/core/audio"
	"github.com/voxloop/voxloop-core/core/recognition"
)

type Client struct {
	source audio.Source

	handlersMu sync.RWMutex
	handlers   map[recognition.Token]func(recognition.State)

	mu     sync.Mutex
	stream *listenStream
}

type Option func(*Client)

// NewClient wires a recognition client over the given capture device. A nil
// source opens the websocket without feeding it, which is only useful in
// tests.
func NewClient(source audio.Source, opts ...Option) *Client {
	c := &Client{
		source:   source,
		handlers: map[recognition.Token]func(recognition.State){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) AddStateChangeHandler(handler func(recognition.State)) recognition.Token {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	token := recognition.NewToken()
	c.handlers[token] = handler
	return token
}

func (c *Client) RemoveStateChangeHandler(token recognition.Token) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	delete(c.handlers, token)
}

func (c *Client) emit(state recognition.State) {
	c.handlersMu.RLock()
	handlers := make([]func(recognition.State), 0, len(c.handlers))
	for _, handler := range c.handlers {
		handlers = append(handlers, handler)
	}
	c.handlersMu.RUnlock()

	for _, handler := range handlers {
		handler(state)
	}
}

// Start opens the listen websocket and begins streaming capture audio into
// it. The listening state is emitted once both are up; from then on the
// stream drives all further state changes.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()

	if c.stream != nil {
		c.mu.Unlock()
		return fmt.Errorf("recognition already started")
	}

	encoding := audio.GetDefaultEncodingInfo()
	if c.source != nil {
		encoding = c.source.EncodingInfo()
	}

	sampleRate, encodingName, err := convertEncoding(encoding)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("invalid encoding: %w", err)
	}

	conn, err := connectWebsocket(sampleRate, encodingName)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("failed to open websocket: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	stream := &listenStream{
		client:    c,
		conn:      conn,
		encoding:  encoding,
		cancel:    cancel,
		lastMsgTs: time.Now(),
	}
	c.stream = stream
	c.mu.Unlock()

	go stream.readAndProcessMessages(streamCtx, conn)
	if c.source != nil {
		go func() {
			if err := c.source.Stream(streamCtx, func(chunk []byte) {
				_ = stream.sendAudio(chunk)
			}); err != nil {
				stream.fail(fmt.Errorf("audio capture failed: %w", err))
			}
		}()
	}

	c.emit(recognition.Listening(""))
	return nil
}

// Stop ends the live stream, if any, completing it with whatever transcript
// has accumulated so far.
func (c *Client) Stop() {
	c.mu.Lock()
	stream := c.stream
	c.mu.Unlock()

	if stream != nil {
		stream.finish(recognition.Completed(stream.fullTranscript()))
	}
}

func (c *Client) detach(stream *listenStream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == stream {
		c.stream = nil
	}
}
