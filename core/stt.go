package orchestration

import (
	"context"
	"strings"

	"github.com/koscakluka/ema-chat/core/speechtotext"
	"go.opentelemetry.io/otel/codes"
)

type speechToText struct {
	client Transcriber
}

func (s *speechToText) set(client Transcriber) {
	if s != nil {
		s.client = client
	}
}

func (s *speechToText) isConfigured() bool {
	return s != nil && s.client != nil
}

func (s *speechToText) transcribe(ctx context.Context, audioURI string) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe recording")
	defer span.End()

	if !s.isConfigured() {
		span.RecordError(ErrTranscriberMissing)
		span.SetStatus(codes.Error, ErrTranscriberMissing.Error())
		return "", ErrTranscriberMissing
	}

	transcript, err := s.client.TranscribeAudio(ctx, audioURI)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", speechtotext.ErrNoSpeech
	}
	return transcript, nil
}

func (s *speechToText) Close(ctx context.Context) error {
	if !s.isConfigured() {
		return nil
	}
	return closeClient(ctx, s.client)
}
