package orchestration

import (
	"context"
	"log/slog"

	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
)

type SessionOption func(*Session)

// AnswerGenerator produces the assistant answer for one turn.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, request conversations.AnswerRequest) (string, error)
}

func WithAnswerGenerator(client AnswerGenerator) SessionOption {
	return func(s *Session) { s.llm.set(client) }
}

// SpeechSynthesizer renders answer text as an audio data URI.
type SpeechSynthesizer interface {
	SynthesizeSpeech(ctx context.Context, text string) (string, error)
}

func WithSpeechSynthesizer(client SpeechSynthesizer) SessionOption {
	return func(s *Session) { s.textToSpeech.set(client) }
}

// Transcriber turns an audio data URI into text.
type Transcriber interface {
	TranscribeAudio(ctx context.Context, audioURI string) (string, error)
}

func WithTranscriber(client Transcriber) SessionOption {
	return func(s *Session) { s.speechToText.set(client) }
}

// Microphone is the capture device used by recordings.
//
// RequestAccess acquires the device and may block on a permission prompt. A
// refusal is reported by wrapping [ErrPermissionDenied]. Release gives the
// device back and must be safe to call after a failed StartCapture.
type Microphone interface {
	RequestAccess(ctx context.Context) error
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	Release() error
	EncodingInfo() audio.EncodingInfo
}

func WithMicrophone(client Microphone) SessionOption {
	return func(s *Session) { s.audioInput.set(client) }
}

func WithTranscriptStore(transcriptStore conversations.TranscriptStore) SessionOption {
	return func(s *Session) { s.store.set(transcriptStore) }
}

// WithEventHandler registers the receiver of session events. Handlers run
// inline on the goroutine that caused the event and must not call back into
// blocking session methods.
func WithEventHandler(handler events.Handler) SessionOption {
	return func(s *Session) {
		if handler == nil {
			s.emitEvent = events.NoopHandler
			return
		}
		s.emitEvent = eventEmitter(handler)
	}
}

// WithLogger replaces the OpenTelemetry bridged logger of the session.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}
