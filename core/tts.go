package orchestration

import (
	"context"

	"go.opentelemetry.io/otel/codes"
)

type textToSpeech struct {
	client SpeechSynthesizer
}

func (t *textToSpeech) set(client SpeechSynthesizer) {
	if t != nil {
		t.client = client
	}
}

func (t *textToSpeech) isConfigured() bool {
	return t != nil && t.client != nil
}

func (t *textToSpeech) synthesize(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()

	if !t.isConfigured() {
		return "", ErrSpeechSynthesizerMissing
	}

	audioURI, err := t.client.SynthesizeSpeech(ctx, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return audioURI, nil
}

func (t *textToSpeech) Close(ctx context.Context) error {
	if !t.isConfigured() {
		return nil
	}
	return closeClient(ctx, t.client)
}
