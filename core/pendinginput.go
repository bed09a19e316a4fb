package orchestration

import (
	"strings"

	"github.com/koscakluka/ema-chat/core/datauri"
)

// PendingInput is the draft of the next turn. It is not part of the
// transcript.
type PendingInput struct {
	Text       string
	Attachment datauri.File
}

func (p PendingInput) IsEmpty() bool {
	return strings.TrimSpace(p.Text) == "" && p.Attachment == nil
}

func (p PendingInput) AttachmentName() string {
	if p.Attachment == nil {
		return ""
	}
	return p.Attachment.Name()
}

// pendingRevision counts replacements of each part of the pending input, so
// a turn only clears the parts it consumed.
type pendingRevision struct {
	text       uint64
	attachment uint64
}
