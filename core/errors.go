package orchestration

import (
	"errors"
	"fmt"

	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/store"
)

var (
	// ErrInputRejected marks a submission with no text and no attachment. It
	// is reported through [TurnResult.Reason], never returned as an error.
	ErrInputRejected = errors.New("nothing to submit")
	ErrTurnInFlight  = errors.New("a turn is already in flight")

	ErrMicrophoneUnavailable = errors.New("microphone unavailable")
	ErrPermissionDenied      = audio.ErrPermissionDenied
	ErrRecordingBusy         = errors.New("recording session busy")

	ErrAnswerGeneratorMissing   = errors.New("no answer generator configured")
	ErrSpeechSynthesizerMissing = errors.New("no speech synthesizer configured")
	ErrTranscriberMissing       = errors.New("no transcriber configured")
	ErrSessionClosed            = errors.New("session closed")
)

// AnswerError is a failed answer call. The turn that caused it was rolled
// back.
type AnswerError struct{ Err error }

func (e *AnswerError) Error() string { return fmt.Sprintf("failed to generate answer: %v", e.Err) }
func (e *AnswerError) Unwrap() error { return e.Err }

// SynthesisError is a failed speech synthesis. It never reaches callers of
// the session, the answer simply stays without audio.
type SynthesisError struct {
	MessageID string
	Err       error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("failed to synthesize speech for message %s: %v", e.MessageID, e.Err)
}
func (e *SynthesisError) Unwrap() error { return e.Err }

// TranscriptionError is a failed transcription of a recording. The draft is
// left untouched.
type TranscriptionError struct{ Err error }

func (e *TranscriptionError) Error() string { return fmt.Sprintf("failed to transcribe audio: %v", e.Err) }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// CapabilityError means the microphone is missing or could not be used.
type CapabilityError struct{ Err error }

func (e *CapabilityError) Error() string { return fmt.Sprintf("microphone capability: %v", e.Err) }
func (e *CapabilityError) Unwrap() error { return e.Err }

// StorageError is a failed save. In-memory state is never affected by it.
type StorageError struct {
	// Quota is set when the medium rejected the write for its size.
	Quota bool
	Err   error
}

func (e *StorageError) Error() string { return fmt.Sprintf("failed to persist transcript: %v", e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(err error) *StorageError {
	return &StorageError{Quota: errors.Is(err, store.ErrQuotaExceeded), Err: err}
}

// AttachmentError is a staged attachment that could not be read.
type AttachmentError struct {
	Name string
	Err  error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("failed to read attachment %q: %v", e.Name, e.Err)
}
func (e *AttachmentError) Unwrap() error { return e.Err }
