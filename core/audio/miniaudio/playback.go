package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxloop/voxloop-core/core/audio"
)

// PlaybackClient is a malgo-backed speaker playback device implementing
// [audio.Sink]. Frames sent to it are buffered and fed to the device callback;
// AwaitDrain blocks until the buffer as of the call has been played.
type PlaybackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	pending      []byte
	drainWaiters []drainWaiter

	mu      sync.Mutex
	audioMu sync.Mutex
}

// drainWaiter is released once playback consumes the buffer up to position.
type drainWaiter struct {
	position int
	release  chan struct{}
}

func NewPlaybackClient() (*PlaybackClient, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback context: %w", err)
	}

	client := &PlaybackClient{audioContext: audioCtx}
	if err := client.initDevice(); err != nil {
		client.Close()
		return nil, err
	}

	if err := client.device.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return client, nil
}

func (c *PlaybackClient) initDevice() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = sampleRate
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = sampleRate / 10 // ~100ms of audio
	c.config.Periods = 4

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: c.processAudio(bytesPerFrame),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}

	return nil
}

func (c *PlaybackClient) SendAudio(audio []byte) error {
	c.mu.Lock()
	device := c.device
	c.mu.Unlock()

	if device == nil {
		return fmt.Errorf("device not initialized")
	}
	if !device.IsStarted() {
		return fmt.Errorf("device not started")
	}

	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.pending = append(c.pending, audio...)
	return nil
}

// AwaitDrain blocks until everything enqueued before the call has played, or
// until ClearBuffer discards it.
func (c *PlaybackClient) AwaitDrain() error {
	c.audioMu.Lock()
	if len(c.pending) == 0 {
		c.audioMu.Unlock()
		return nil
	}
	waiter := drainWaiter{position: len(c.pending), release: make(chan struct{})}
	c.drainWaiters = append(c.drainWaiters, waiter)
	c.audioMu.Unlock()

	<-waiter.release
	return nil
}

// ClearBuffer drops unplayed audio and releases anyone waiting on it.
func (c *PlaybackClient) ClearBuffer() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()

	c.pending = nil
	for _, waiter := range c.drainWaiters {
		close(waiter.release)
	}
	c.drainWaiters = nil
}

func (c *PlaybackClient) Close() {
	c.ClearBuffer()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *PlaybackClient) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Encoding:   audio.EncodingLinear16,
	}
}

func (c *PlaybackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame

		c.audioMu.Lock()
		defer c.audioMu.Unlock()

		consumed := min(need, len(c.pending))
		_ = copy(pOutput, c.pending[:consumed])
		c.pending = c.pending[consumed:]
		c.releaseDrainedLocked(consumed)
	}
}

func (c *PlaybackClient) releaseDrainedLocked(consumed int) {
	remaining := c.drainWaiters[:0]
	for _, waiter := range c.drainWaiters {
		waiter.position -= consumed
		if waiter.position <= 0 {
			close(waiter.release)
			continue
		}
		remaining = append(remaining, waiter)
	}
	c.drainWaiters = remaining
}
