package orchestration

import (
	"slices"
	"sync"

	"github.com/koscakluka/ema-chat/core/conversations"
)

// conversation is the in-memory transcript. Every update addresses messages
// by ID so concurrent updates never disturb ordering.
type conversation struct {
	mu       sync.RWMutex
	messages []conversations.Message
}

func (c *conversation) History() []conversations.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.messages)
}

func (c *conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// append adds message at the end and returns the transcript as it was before.
func (c *conversation) append(message conversations.Message) []conversations.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	prior := slices.Clone(c.messages)
	c.messages = append(c.messages, message)
	return prior
}

func (c *conversation) removeByID(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	before := len(c.messages)
	c.messages = slices.DeleteFunc(c.messages, func(m conversations.Message) bool {
		return m.ID == id
	})
	return len(c.messages) != before
}

// attachAudio sets the audio of an assistant message once. It reports false
// when the message is gone, is not an assistant message or already has audio.
func (c *conversation) attachAudio(id, audioURI string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.messages, func(m conversations.Message) bool { return m.ID == id })
	if i < 0 || c.messages[i].Role != conversations.RoleAssistant || c.messages[i].HasAudio() {
		return false
	}
	c.messages[i].Audio = audioURI
	return true
}

func (c *conversation) replace(messages []conversations.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = slices.Clone(messages)
}
