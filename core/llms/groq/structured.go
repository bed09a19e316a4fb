package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrEmptyCompletion = errors.New("completion has no choices")

// StatusError is returned when the API answers with a non-OK status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-OK HTTP status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// promptJSONSchema sends messages and decodes the completion into a T using a
// strict json_schema response format reflected from T.
func promptJSONSchema[T any](ctx context.Context, c *Client, messages []message) (*T, error) {
	ctx, span := tracer.Start(ctx, "prompt llm structured")
	defer span.End()

	var output T
	reflector := jsonschema.Reflector{DoNotReference: true}
	outputType := reflect.TypeOf(output)
	schema := reflector.ReflectFromType(outputType)

	reqBody := schemaRequestBody{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   outputType.Name(),
				Schema: *schema,
				Strict: true,
			},
		},
	}
	span.SetAttributes(
		attribute.String("request.model", c.model),
		attribute.Int("request.messages", len(messages)),
	)

	fail := func(err error) (*T, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fail(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("failed to read response body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		// TODO: Retry on 429 and 503 once the Retry-After header is honoured
		return fail(&StatusError{StatusCode: resp.StatusCode, Body: string(respBodyBytes)})
	}

	var responseBody schemaResponseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return fail(fmt.Errorf("failed to unmarshal response: %w", err))
	}
	if len(responseBody.Choices) == 0 {
		return fail(ErrEmptyCompletion)
	}
	if responseBody.Usage != nil {
		span.SetAttributes(attribute.Int("response.total_tokens", responseBody.Usage.TotalTokens))
	}

	content := responseBody.Choices[0].Message.Content
	// some models still wrap the JSON in a fenced block
	if split := strings.Split(content, "```"); len(split) > 1 {
		content = strings.TrimPrefix(split[1], "json")
	}
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return fail(fmt.Errorf("failed to unmarshal structured output: %w", err))
	}

	return &output, nil
}

type schemaRequestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Schema      jsonschema.Schema `json:"schema"`
	Strict      bool              `json:"strict"`
}

type schemaResponseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
