package events

const (
	// KindStatusChanged identifies a change of the rendered session status.
	KindStatusChanged Kind = "session.status_changed"
	// KindDraftUpdated identifies a change of the pending input text.
	KindDraftUpdated Kind = "session.draft_updated"
	// KindAttachmentStaged identifies a change of the staged attachment.
	KindAttachmentStaged Kind = "session.attachment_staged"
	// KindRecordingStateChanged identifies a recording sub-session transition.
	KindRecordingStateChanged Kind = "session.recording_state_changed"
)

// StatusChanged carries the new session status, e.g. "loading".
type StatusChanged struct {
	Base
	Status string
}

func NewStatusChanged(status string) StatusChanged {
	return StatusChanged{Base: NewBase(KindStatusChanged), Status: status}
}

// DraftUpdated carries the full pending input text.
type DraftUpdated struct {
	Base
	Text string
}

func NewDraftUpdated(text string) DraftUpdated {
	return DraftUpdated{Base: NewBase(KindDraftUpdated), Text: text}
}

// AttachmentStaged carries the name of the staged file, empty when cleared.
type AttachmentStaged struct {
	Base
	Name string
}

func NewAttachmentStaged(name string) AttachmentStaged {
	return AttachmentStaged{Base: NewBase(KindAttachmentStaged), Name: name}
}

// RecordingStateChanged carries the new recording state, e.g. "transcribing".
type RecordingStateChanged struct {
	Base
	State string
}

func NewRecordingStateChanged(state string) RecordingStateChanged {
	return RecordingStateChanged{Base: NewBase(KindRecordingStateChanged), State: state}
}
