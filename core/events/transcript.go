package events

import "github.com/koscakluka/ema-chat/core/conversations"

const (
	// KindUserMessageAppended identifies the optimistic append of a user message.
	KindUserMessageAppended Kind = "transcript.user_message_appended"
	// KindUserMessageRolledBack identifies removal of a user message whose answer failed.
	KindUserMessageRolledBack Kind = "transcript.user_message_rolled_back"
	// KindAssistantMessageAppended identifies the append of an answer.
	KindAssistantMessageAppended Kind = "transcript.assistant_message_appended"
	// KindAssistantAudioAttached identifies synthesized audio landing on an answer.
	KindAssistantAudioAttached Kind = "transcript.assistant_audio_attached"
	// KindTranscriptCleared identifies removal of the whole transcript.
	KindTranscriptCleared Kind = "transcript.cleared"
)

// UserMessageAppended carries the user message that was optimistically added.
type UserMessageAppended struct {
	Base
	Message conversations.Message
}

func NewUserMessageAppended(message conversations.Message) UserMessageAppended {
	return UserMessageAppended{Base: NewBase(KindUserMessageAppended), Message: message}
}

// UserMessageRolledBack carries the ID of the removed user message.
type UserMessageRolledBack struct {
	Base
	MessageID string
}

func NewUserMessageRolledBack(messageID string) UserMessageRolledBack {
	return UserMessageRolledBack{Base: NewBase(KindUserMessageRolledBack), MessageID: messageID}
}

// AssistantMessageAppended carries the answer added to the transcript.
type AssistantMessageAppended struct {
	Base
	Message conversations.Message
}

func NewAssistantMessageAppended(message conversations.Message) AssistantMessageAppended {
	return AssistantMessageAppended{Base: NewBase(KindAssistantMessageAppended), Message: message}
}

// AssistantAudioAttached carries the audio data URI attached to an answer.
type AssistantAudioAttached struct {
	Base
	MessageID string
	Audio     string
}

func NewAssistantAudioAttached(messageID, audio string) AssistantAudioAttached {
	return AssistantAudioAttached{Base: NewBase(KindAssistantAudioAttached), MessageID: messageID, Audio: audio}
}

// TranscriptCleared marks that the transcript was emptied.
type TranscriptCleared struct{ Base }

func NewTranscriptCleared() TranscriptCleared {
	return TranscriptCleared{Base: NewBase(KindTranscriptCleared)}
}

const KindTranscriptLoaded Kind = "transcript.loaded"

// TranscriptLoaded reports the transcript restored from the store when a
// session starts.
type TranscriptLoaded struct {
	Base
	Messages []conversations.Message
}

func NewTranscriptLoaded(messages []conversations.Message) TranscriptLoaded {
	return TranscriptLoaded{Base: NewBase(KindTranscriptLoaded), Messages: messages}
}
