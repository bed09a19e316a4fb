package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
)

type playbackClient struct {
	device     *malgo.Device
	sampleRate int

	pending []byte
	drained chan struct{}

	mu      sync.Mutex
	audioMu sync.Mutex
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext, info audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil && c.sampleRate == info.SampleRate {
		return nil
	} else if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}

	channels := info.NumChannels()
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = uint32(info.SampleRate)
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = uint32(info.SampleRate / 10) // ~100ms of audio
	config.Periods = 4

	device, err := malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: c.processAudio(bytesPerFrame),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to initialize playback device: %w", audio.ErrDeviceUnavailable, err)
	}

	c.device = device
	c.sampleRate = info.SampleRate
	return nil
}

// Enqueue starts the device and returns a channel closed once pcm has been
// handed to the device.
func (c *playbackClient) Enqueue(pcm []byte) (<-chan struct{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil, audio.ErrDeviceNotAcquired
	}

	c.audioMu.Lock()
	c.pending = append(c.pending[:0], pcm...)
	c.drained = make(chan struct{})
	drained := c.drained
	c.audioMu.Unlock()

	if !c.device.IsStarted() {
		if err := c.device.Start(); err != nil {
			return nil, fmt.Errorf("failed to start playback device: %w", err)
		}
	}
	return drained, nil
}

func (c *playbackClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return nil
	}

	c.ClearBuffer()
	if !c.device.IsStarted() {
		return nil
	}
	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop playback device: %w", err)
	}
	return nil
}

func (c *playbackClient) ClearBuffer() {
	c.audioMu.Lock()
	defer c.audioMu.Unlock()
	c.pending = nil
	c.closeDrained()
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := min(int(frameCount)*bytesPerFrame, len(pOutput))

		c.audioMu.Lock()
		defer c.audioMu.Unlock()

		if len(c.pending) == 0 {
			c.closeDrained()
			return
		}

		n := copy(pOutput[:need], c.pending)
		clear(pOutput[n:need])
		c.pending = c.pending[n:]
	}
}

// closeDrained must be called with audioMu held.
func (c *playbackClient) closeDrained() {
	if c.drained != nil {
		close(c.drained)
		c.drained = nil
	}
}
