package conversations

// PersistedMessage is the durable form of a [Message]. Attachments and audio
// are dropped to keep the stored transcript small.
type PersistedMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FromPersisted turns stored messages back into transcript messages with
// fresh IDs. Entries with an unknown role make the whole list invalid.
func FromPersisted(persisted []PersistedMessage) ([]Message, bool) {
	messages := make([]Message, 0, len(persisted))
	for _, p := range persisted {
		if !p.Role.IsValid() {
			return nil, false
		}

		switch p.Role {
		case RoleUser:
			messages = append(messages, NewUserMessage(p.Content, ""))
		case RoleAssistant:
			messages = append(messages, NewAssistantMessage(p.Content))
		}
	}
	return messages, true
}
