package orchestration

// Status is the coarse session state rendered by the presentation layer.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusLoading      Status = "loading"
	StatusRecording    Status = "recording"
	StatusTranscribing Status = "transcribing"
)

type RecordingState string

const (
	RecordingIdle         RecordingState = "idle"
	RecordingActive       RecordingState = "recording"
	RecordingTranscribing RecordingState = "transcribing"
)

type TurnStatus string

const (
	// TurnRejected means nothing was appended. [TurnResult.Reason] says why.
	TurnRejected TurnStatus = "rejected"
	// TurnCompleted means a user message and its answer were appended.
	TurnCompleted TurnStatus = "completed"
	// TurnFailed means the answer call failed and the user message was
	// removed again.
	TurnFailed TurnStatus = "failed"
)

type TurnResult struct {
	Status             TurnStatus
	Reason             error
	UserMessageID      string
	AssistantMessageID string
}
