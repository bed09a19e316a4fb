package orchestration

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/koscakluka/ema-chat/core/audio"
)

// audioInput wraps the optional microphone and buffers captured chunks for
// the recording in progress.
type audioInput struct {
	client Microphone

	bufferMu  sync.Mutex
	chunks    [][]byte
	capturing bool
}

func (a *audioInput) set(client Microphone) {
	if a != nil {
		a.client = client
	}
}

func (a *audioInput) isConfigured() bool {
	return a != nil && a.client != nil
}

func (a *audioInput) EncodingInfo() audio.EncodingInfo {
	if !a.isConfigured() {
		return audio.GetDefaultEncodingInfo()
	}
	if info := a.client.EncodingInfo(); !info.IsZero() {
		return info
	}
	return audio.GetDefaultEncodingInfo()
}

func (a *audioInput) requestAccess(ctx context.Context) error {
	if !a.isConfigured() {
		return ErrMicrophoneUnavailable
	}
	return a.client.RequestAccess(ctx)
}

// startCapture resets the buffer and starts filling it.
func (a *audioInput) startCapture(ctx context.Context) error {
	if !a.isConfigured() {
		return ErrMicrophoneUnavailable
	}

	a.bufferMu.Lock()
	a.chunks = nil
	a.capturing = true
	a.bufferMu.Unlock()

	if err := a.client.StartCapture(ctx, a.bufferChunk); err != nil {
		a.bufferMu.Lock()
		a.capturing = false
		a.bufferMu.Unlock()
		return fmt.Errorf("failed to start capture: %w", err)
	}
	return nil
}

func (a *audioInput) bufferChunk(chunk []byte) {
	a.bufferMu.Lock()
	defer a.bufferMu.Unlock()
	if !a.capturing || len(chunk) == 0 {
		return
	}
	a.chunks = append(a.chunks, chunk)
}

// stopAndRelease stops capturing, gives the device back and returns
// everything captured so far. The device is released even when stopping
// fails.
func (a *audioInput) stopAndRelease() ([][]byte, error) {
	if !a.isConfigured() {
		return nil, nil
	}

	stopErr := a.client.StopCapture()
	releaseErr := a.client.Release()

	a.bufferMu.Lock()
	chunks := a.chunks
	a.chunks = nil
	a.capturing = false
	a.bufferMu.Unlock()

	var err error
	if stopErr != nil {
		err = fmt.Errorf("failed to stop capture: %w", stopErr)
	}
	if releaseErr != nil {
		err = errors.Join(err, fmt.Errorf("failed to release microphone: %w", releaseErr))
	}
	return chunks, err
}

func (a *audioInput) release() error {
	if !a.isConfigured() {
		return nil
	}
	return a.client.Release()
}

func (a *audioInput) Close(ctx context.Context) error {
	if !a.isConfigured() {
		return nil
	}
	return closeClient(ctx, a.client)
}
