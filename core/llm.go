package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/conversations"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type llm struct {
	client AnswerGenerator
}

func (l *llm) set(client AnswerGenerator) {
	if l != nil {
		l.client = client
	}
}

func (l *llm) isConfigured() bool {
	return l != nil && l.client != nil
}

func (l *llm) generateAnswer(ctx context.Context, request conversations.AnswerRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "generate answer")
	defer span.End()
	span.SetAttributes(
		attribute.Int("answer.history_length", len(request.History)),
		attribute.Bool("answer.has_attachment", request.Attachment != ""),
	)

	if !l.isConfigured() {
		span.RecordError(ErrAnswerGeneratorMissing)
		span.SetStatus(codes.Error, ErrAnswerGeneratorMissing.Error())
		return "", ErrAnswerGeneratorMissing
	}

	answer, err := l.client.GenerateAnswer(ctx, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return answer, nil
}

func (l *llm) Close(ctx context.Context) error {
	if !l.isConfigured() {
		return nil
	}
	return closeClient(ctx, l.client)
}
