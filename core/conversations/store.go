package conversations

import "context"

// TranscriptStore keeps the transcript of one session between runs.
//
// Load never fails on absent or malformed data, it returns an empty
// transcript instead. Save of an empty transcript removes the stored value.
type TranscriptStore interface {
	Load(ctx context.Context) ([]Message, error)
	Save(ctx context.Context, messages []Message) error
}
