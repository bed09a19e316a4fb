package miniaudio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
)

type captureClient struct {
	device *malgo.Device
	config malgo.DeviceConfig

	// onAudio is read on the device thread without mu: device.Stop waits for
	// the data callback to return.
	onAudio atomic.Pointer[func(audio []byte)]

	mu sync.Mutex
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext, info audio.EncodingInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		return nil
	}

	channels := info.NumChannels()
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = uint32(info.SampleRate)
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency
	c.config.PeriodSizeInFrames = 480
	c.config.Periods = 3

	device, err := malgo.InitDevice(audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			c.deliver(pInput, int(frameCount)*bytesPerFrame)
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to initialize capture device: %w", audio.ErrDeviceUnavailable, err)
	}

	c.device = device
	return nil
}

func (c *captureClient) Start(onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return audio.ErrDeviceNotAcquired
	} else if c.device.IsStarted() {
		return nil
	}

	c.onAudio.Store(&onAudio)
	if err := c.device.Start(); err != nil {
		c.onAudio.Store(nil)
		return fmt.Errorf("failed to start capture device: %w", err)
	}

	return nil
}

func (c *captureClient) Stop() error {
	c.onAudio.Store(nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return audio.ErrDeviceNotAcquired
	}
	if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureClient) Uninit() error {
	c.onAudio.Store(nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	return nil
}

// deliver hands n bytes of captured input to the current listener. It runs
// on the device thread and must not take mu.
func (c *captureClient) deliver(pInput []byte, n int) {
	if len(pInput) < n || n == 0 {
		return
	}

	onAudio := c.onAudio.Load()
	if onAudio == nil || *onAudio == nil {
		return
	}
	// malgo reuses the input buffer between callbacks
	chunk := make([]byte, n)
	copy(chunk, pInput[:n])
	(*onAudio)(chunk)
}
