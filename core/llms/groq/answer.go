package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-chat/core/conversations"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrEmptyAnswer = errors.New("model returned an empty answer")

type answer struct {
	Response string `json:"response" jsonschema:"description=The assistant answer to the latest user question"`
}

// GenerateAnswer answers request.Prompt given the prior history and the
// optional attachment.
func (c *Client) GenerateAnswer(ctx context.Context, request conversations.AnswerRequest) (string, error) {
	ctx, span := tracer.Start(ctx, "generate answer")
	defer span.End()
	span.SetAttributes(
		attribute.Int("answer.history_length", len(request.History)),
		attribute.Bool("answer.has_attachment", request.Attachment != ""),
	)

	messages, err := toMessages(c.systemPrompt, request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	output, err := promptJSONSchema[answer](ctx, c, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	response := strings.TrimSpace(output.Response)
	if response == "" {
		span.RecordError(ErrEmptyAnswer)
		span.SetStatus(codes.Error, ErrEmptyAnswer.Error())
		return "", ErrEmptyAnswer
	}

	logger.DebugContext(ctx, "generated answer", "length", len(response))
	return response, nil
}
