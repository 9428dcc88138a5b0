// Package portaudio provides a PortAudio-backed capture device as an
// alternative to the miniaudio backend on hosts where malgo misbehaves.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"github.com/voxloop/voxloop-core/core/audio"
)

// Client is a PortAudio microphone capture device implementing [audio.Source].
type Client struct {
	bufferSize int
	stream     *portaudio.Stream
	in         []int16

	stopped atomic.Bool
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{
		bufferSize: bufferSize,
		stream:     stream,
		in:         in,
	}, nil
}

// Stream reads capture buffers in a loop and hands each one to onAudio as
// little-endian 16-bit PCM. Blocks until the context is cancelled or
// StopStream is called.
func (c *Client) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	c.stopped.Store(false)
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return c.StopStream()
		default:
		}
		if c.stopped.Load() {
			return nil
		}

		if err := c.stream.Read(); err != nil {
			log.Printf("Failed to read from portaudio stream: %v", err)
			continue
		}

		audioBuffer := bytes.Buffer{}
		_ = binary.Write(&audioBuffer, binary.LittleEndian, c.in)
		onAudio(audioBuffer.Bytes())
	}
}

func (c *Client) StopStream() error {
	if c.stopped.Swap(true) {
		return nil
	}

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() {
	_ = c.StopStream()
	_ = c.stream.Close()
	_ = portaudio.Terminate()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Encoding:   audio.EncodingLinear16,
	}
}
