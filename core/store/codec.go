package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/koscakluka/ema-chat/core/conversations"
)

// SlotName is the name of the durable slot holding the transcript.
const SlotName = "streamassist.chatHistory"

// ErrQuotaExceeded is returned by Save when the serialized transcript does not
// fit in the storage medium.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

func encode(messages []conversations.Message) ([]byte, error) {
	persisted := []conversations.PersistedMessage{}
	if err := copier.Copy(&persisted, &messages); err != nil {
		return nil, fmt.Errorf("failed to project messages: %w", err)
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// decode treats anything it cannot understand as an empty transcript.
func decode(data []byte) []conversations.Message {
	if len(data) == 0 {
		return []conversations.Message{}
	}

	var persisted []conversations.PersistedMessage
	if err := json.Unmarshal(data, &persisted); err != nil {
		logger.Warn("discarding malformed transcript", "error", err)
		return []conversations.Message{}
	}

	messages, ok := conversations.FromPersisted(persisted)
	if !ok {
		logger.Warn("discarding transcript with unknown roles")
		return []conversations.Message{}
	}
	return messages
}

func checkQuota(data []byte, quota int64) error {
	if quota > 0 && int64(len(data)) > quota {
		return fmt.Errorf("%w: %d bytes exceed a %d byte quota", ErrQuotaExceeded, len(data), quota)
	}
	return nil
}
