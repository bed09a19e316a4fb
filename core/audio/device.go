package audio

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned by capture devices when the user or the
	// host refuses access to the microphone.
	ErrPermissionDenied = errors.New("microphone access denied")
	// ErrDeviceUnavailable is returned when no usable device exists.
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrDeviceNotAcquired = errors.New("audio device not acquired")
)

// Speaker plays a complete PCM buffer and returns once it has drained.
type Speaker interface {
	Play(ctx context.Context, info EncodingInfo, pcm []byte) error
}
