package events

import (
	"testing"

	"github.com/koscakluka/ema-chat/core/conversations"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "user message appended", event: NewUserMessageAppended(conversations.NewUserMessage("q", "")), expected: KindUserMessageAppended},
		{name: "user message rolled back", event: NewUserMessageRolledBack("id"), expected: KindUserMessageRolledBack},
		{name: "assistant message appended", event: NewAssistantMessageAppended(conversations.NewAssistantMessage("a")), expected: KindAssistantMessageAppended},
		{name: "assistant audio attached", event: NewAssistantAudioAttached("id", "data:audio/wav;base64,"), expected: KindAssistantAudioAttached},
		{name: "transcript cleared", event: NewTranscriptCleared(), expected: KindTranscriptCleared},
		{name: "transcript loaded", event: NewTranscriptLoaded(nil), expected: KindTranscriptLoaded},
		{name: "status changed", event: NewStatusChanged("loading"), expected: KindStatusChanged},
		{name: "draft updated", event: NewDraftUpdated("bonjour"), expected: KindDraftUpdated},
		{name: "attachment staged", event: NewAttachmentStaged("photo.png"), expected: KindAttachmentStaged},
		{name: "recording state changed", event: NewRecordingStateChanged("recording"), expected: KindRecordingStateChanged},
		{name: "notice", event: NewNotice(NoticeAnswerFailed, SeverityError, "title", "detail"), expected: KindNotice},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected event timestamp to be set")
			}
		})
	}
}
