package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/voxloop/voxloop-core/core/audio"
)

// CaptureClient is a malgo-backed microphone capture device implementing
// [audio.Source].
type CaptureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	onAudio func(audio []byte)
	stopped chan struct{}

	mu sync.Mutex
}

func NewCaptureClient() (*CaptureClient, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture context: %w", err)
	}

	client := &CaptureClient{audioContext: audioCtx}
	if err := client.initDevice(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

func (c *CaptureClient) initDevice() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sampleRate := uint32(audio.DefaultSampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = sampleRate
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}

			c.mu.Lock()
			onAudio := c.onAudio
			c.mu.Unlock()
			if onAudio != nil {
				onAudio(pInput[:n])
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return nil
}

// Stream starts the capture device and delivers raw frames to onAudio until
// the context is cancelled or StopStream is called.
func (c *CaptureClient) Stream(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	if c.device == nil {
		c.mu.Unlock()
		return fmt.Errorf("device not initialized")
	}
	if c.device.IsStarted() {
		c.mu.Unlock()
		return fmt.Errorf("capture already streaming")
	}

	c.onAudio = onAudio
	c.stopped = make(chan struct{})
	stopped := c.stopped

	if err := c.device.Start(); err != nil {
		c.onAudio = nil
		c.stopped = nil
		c.mu.Unlock()
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return c.StopStream()
	case <-stopped:
		return nil
	}
}

func (c *CaptureClient) StopStream() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}

	c.onAudio = nil
	if c.stopped != nil {
		close(c.stopped)
		c.stopped = nil
	}
	return nil
}

func (c *CaptureClient) Close() {
	_ = c.StopStream()

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

func (c *CaptureClient) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: audio.DefaultSampleRate,
		Encoding:   audio.EncodingLinear16,
	}
}
