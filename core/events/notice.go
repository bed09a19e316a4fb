package events

// KindNotice identifies a user-visible notification.
const KindNotice Kind = "session.notice"

type NoticeReason string

const (
	NoticeAnswerFailed          NoticeReason = "answer_failed"
	NoticeTranscriptionFailed   NoticeReason = "transcription_failed"
	NoticeMicrophoneUnavailable NoticeReason = "microphone_unavailable"
	NoticePermissionDenied      NoticeReason = "permission_denied"
	NoticeStorageWarning        NoticeReason = "storage_warning"
	NoticeAttachmentUnreadable  NoticeReason = "attachment_unreadable"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a failure that should be shown to the user. Silent
// degradations, such as missing synthesized audio, never produce one.
type Notice struct {
	Base
	Reason   NoticeReason
	Severity Severity
	Title    string
	Detail   string
}

func NewNotice(reason NoticeReason, severity Severity, title, detail string) Notice {
	return Notice{
		Base:     NewBase(KindNotice),
		Reason:   reason,
		Severity: severity,
		Title:    title,
		Detail:   detail,
	}
}
