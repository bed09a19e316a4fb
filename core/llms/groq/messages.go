package groq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/datauri"
)

var ErrUnsupportedAttachment = errors.New("unsupported attachment type")

// message content is either a plain string or a list of content parts.
type message struct {
	Role    messageRole `json:"role"`
	Content any         `json:"content"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
)

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

func toMessages(instructions string, request conversations.AnswerRequest) ([]message, error) {
	messages := []message{}
	if instructions != "" {
		messages = append(messages, message{Role: messageRoleSystem, Content: instructions})
	}

	for _, msg := range request.History {
		role := messageRoleUser
		if msg.Role == conversations.RoleAssistant {
			role = messageRoleAssistant
		}
		messages = append(messages, message{Role: role, Content: msg.Content})
	}

	prompt, err := userContent(request.Prompt, request.Attachment)
	if err != nil {
		return nil, err
	}
	return append(messages, message{Role: messageRoleUser, Content: prompt}), nil
}

func userContent(prompt, attachment string) (any, error) {
	if attachment == "" {
		return prompt, nil
	}

	mediaType, data, err := datauri.Decode(attachment)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment: %w", err)
	}

	parts := []contentPart{}
	if prompt != "" {
		parts = append(parts, contentPart{Type: "text", Text: prompt})
	}

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: attachment}})
	case strings.HasPrefix(mediaType, "text/"), mediaType == "application/json":
		parts = append(parts, contentPart{
			Type: "text",
			Text: fmt.Sprintf("Document joint (%s) :\n%s", mediaType, data),
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAttachment, mediaType)
	}

	return parts, nil
}
