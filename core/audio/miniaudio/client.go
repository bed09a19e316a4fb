package miniaudio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/ema-chat/core/audio"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Client owns one miniaudio context and exposes the microphone and speaker
// of the host.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	captureInfo  audio.EncodingInfo

	playback playbackClient
	capture  captureClient
}

type ClientOption func(*Client)

func WithCaptureSampleRate(sampleRate int) ClientOption {
	return func(c *Client) {
		if sampleRate > 0 {
			c.captureInfo.SampleRate = sampleRate
		}
	}
}

func NewClient(opts ...ClientOption) (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to initialize audio context: %w", audio.ErrDeviceUnavailable, err)
	}

	client := &Client{
		audioContext: audioCtx,
		captureInfo:  audio.GetDefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// RequestAccess acquires the capture device.
func (c *Client) RequestAccess(ctx context.Context) error {
	_, span := tracer.Start(ctx, "request microphone access")
	defer span.End()

	if err := c.capture.Init(c.audioContext, c.captureInfo); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	return c.capture.Start(onAudio)
}

func (c *Client) StopCapture() error {
	return c.capture.Stop()
}

// Release gives the capture device back to the host.
func (c *Client) Release() error {
	return c.capture.Uninit()
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return c.captureInfo
}

// Play blocks until pcm has been played or ctx is done.
func (c *Client) Play(ctx context.Context, info audio.EncodingInfo, pcm []byte) error {
	ctx, span := tracer.Start(ctx, "play audio")
	defer span.End()
	span.SetAttributes(attribute.Int("audio.sample_rate", info.SampleRate), attribute.Int("audio.bytes", len(pcm)))

	if info.Format != audio.EncodingLinear16 {
		err := fmt.Errorf("%w: %s", audio.ErrUnsupportedEncoding, info.Format.Name())
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := c.playback.Init(c.audioContext, info); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	drained, err := c.playback.Enqueue(pcm)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	select {
	case <-drained:
	case <-ctx.Done():
	}

	if err := c.playback.Stop(); err != nil {
		logger.Warn("failed to stop playback", "error", err)
	}
	return ctx.Err()
}

func (c *Client) Close() error {
	errs := []error{
		c.capture.Uninit(),
		c.playback.Uninit(),
		c.audioContext.Uninit(),
	}
	c.audioContext.Free()
	return errors.Join(errs...)
}
