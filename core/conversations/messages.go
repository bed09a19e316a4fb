package conversations

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single entry of the transcript. A user message and the
// assistant message that answers it make up one turn.
type Message struct {
	// ID is assigned on creation and is the only identity used for removal
	// and in-place updates. It is not persisted.
	ID   string
	Role Role

	// Content is the prompt for user messages and the answer (possibly a
	// refusal) for assistant messages.
	Content string
	// Attachment is a data URI staged with a user message. Never set on
	// assistant messages and never changed after creation.
	Attachment string
	// Audio is a data URI of the synthesized answer. It is only set on
	// assistant messages, at most once, after the message is already part of
	// the transcript.
	Audio string

	CreatedAt time.Time
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content, attachment string) Message {
	return Message{
		ID:         uuid.NewString(),
		Role:       RoleUser,
		Content:    content,
		Attachment: attachment,
		CreatedAt:  time.Now(),
	}
}

// NewAssistantMessage creates an assistant message with a fresh ID and no
// audio.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

func (m Message) HasAudio() bool      { return m.Audio != "" }
func (m Message) HasAttachment() bool { return m.Attachment != "" }

// AnswerRequest is everything the answer generator gets for one turn.
type AnswerRequest struct {
	// Prompt is the text of the user message that opened the turn.
	Prompt string
	// Attachment is the data URI staged with the prompt, empty if none.
	Attachment string
	// History is the transcript before the prompt, oldest first.
	History []Message
}
