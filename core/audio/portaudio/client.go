package portaudio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-chat/core/audio"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var logger = otelslog.NewLogger("github.com/koscakluka/ema-chat/core/audio/portaudio")

// Client is a microphone backed by the default PortAudio input device.
type Client struct {
	bufferSize int
	sampleRate int

	mu      sync.Mutex
	stream  *portaudio.Stream
	in      []int16
	stop    chan struct{}
	stopped chan struct{}
}

func NewClient(bufferSize int) *Client {
	if bufferSize <= 0 {
		bufferSize = 512
	}
	return &Client{
		bufferSize: bufferSize,
		sampleRate: audio.DefaultSampleRate,
	}
}

func (c *Client) RequestAccess(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		return nil
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: failed to initialize PortAudio: %w", audio.ErrDeviceUnavailable, err)
	}

	c.in = make([]int16, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(c.sampleRate), c.bufferSize, c.in)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("%w: failed to open PortAudio stream: %w", audio.ErrDeviceUnavailable, err)
	}

	c.stream = stream
	return nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return audio.ErrDeviceNotAcquired
	} else if c.stop != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})
	go c.read(ctx, c.stream, c.in, onAudio, c.stop, c.stopped)
	return nil
}

func (c *Client) read(ctx context.Context, stream *portaudio.Stream, in []int16, onAudio func([]byte), stop, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		default:
		}

		if err := stream.Read(); err != nil {
			logger.Warn("failed to read from PortAudio stream", "error", err)
			continue
		}

		chunk := make([]byte, len(in)*2)
		for i, sample := range in {
			binary.LittleEndian.PutUint16(chunk[i*2:], uint16(sample))
		}
		onAudio(chunk)
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return audio.ErrDeviceNotAcquired
	}
	return c.stopLocked()
}

func (c *Client) stopLocked() error {
	if c.stop == nil {
		return nil
	}

	close(c.stop)
	<-c.stopped
	c.stop, c.stopped = nil, nil

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream == nil {
		return nil
	}

	stopErr := c.stopLocked()
	closeErr := c.stream.Close()
	c.stream = nil
	return errors.Join(stopErr, closeErr, portaudio.Terminate())
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{
		SampleRate: c.sampleRate,
		Format:     audio.EncodingLinear16,
		Channels:   1,
	}
}
