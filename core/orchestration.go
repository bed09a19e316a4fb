package orchestration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/events"
	"go.opentelemetry.io/otel/attribute"
)

// Session owns the transcript, the pending input and the recording
// sub-session of one conversation, and drives turns against the configured
// collaborators.
type Session struct {
	conversation conversation

	// mu guards pending, its revisions, recording, permissionDenied and
	// lastStatus.
	mu               sync.Mutex
	pending          PendingInput
	pendingRevision  pendingRevision
	recording        recordingSession
	permissionDenied bool
	lastStatus       Status

	// inFlight is the single-flight gate of SubmitTurn.
	inFlight atomic.Bool
	loading  atomic.Bool
	loaded   atomic.Bool
	closed   atomic.Bool

	closeOnce sync.Once
	// synthesis tracks background speech synthesis started by turns.
	synthesis sync.WaitGroup
	persistMu sync.Mutex

	llm          llm
	textToSpeech textToSpeech
	speechToText speechToText
	audioInput   audioInput
	store        transcriptStore

	emitEvent eventEmitter
	logger    *slog.Logger
}

func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		recording:  recordingSession{state: RecordingIdle},
		lastStatus: StatusIdle,
		emitEvent:  events.NoopHandler,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the transcript from the store. Only the first call reads the
// store. Absent or unreadable data leaves the transcript empty.
func (s *Session) Load(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	if !s.loaded.CompareAndSwap(false, true) {
		return nil
	}

	ctx, span := tracer.Start(ctx, "load session")
	defer span.End()

	s.loading.Store(true)
	s.publishStatus()
	defer func() {
		s.loading.Store(false)
		s.publishStatus()
	}()

	messages, err := s.store.load(ctx)
	if err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "failed to load transcript, starting empty", "error", err)
		messages = []conversations.Message{}
	}

	if s.inFlight.Load() || s.conversation.Len() > 0 {
		s.logger.WarnContext(ctx, "transcript changed before load completed, keeping in-memory state")
		return nil
	}

	s.conversation.replace(messages)
	span.SetAttributes(attribute.Int("transcript.length", len(messages)))
	s.emit(events.NewTranscriptLoaded(s.conversation.History()))
	return nil
}

// SetDraft replaces the text of the pending input.
func (s *Session) SetDraft(text string) {
	s.mu.Lock()
	s.pending.Text = text
	s.pendingRevision.text++
	s.mu.Unlock()
	s.emit(events.NewDraftUpdated(text))
}

// StageAttachment replaces the staged attachment. A nil file clears it.
func (s *Session) StageAttachment(file datauri.File) {
	s.mu.Lock()
	s.pending.Attachment = file
	s.pendingRevision.attachment++
	name := s.pending.AttachmentName()
	s.mu.Unlock()
	s.emit(events.NewAttachmentStaged(name))
}

func (s *Session) ClearAttachment() {
	s.StageAttachment(nil)
}

// ClearTranscript removes every message and the stored transcript. It is
// refused while a turn is in flight.
func (s *Session) ClearTranscript(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	defer func() {
		s.inFlight.Store(false)
		s.publishStatus()
	}()
	s.publishStatus()

	ctx, span := tracer.Start(ctx, "clear transcript")
	defer span.End()

	s.conversation.replace(nil)
	s.emit(events.NewTranscriptCleared())

	if err := s.persist(ctx); err != nil {
		return err
	}
	return nil
}

// Transcript returns a copy of the transcript, oldest first.
func (s *Session) Transcript() []conversations.Message {
	return s.conversation.History()
}

func (s *Session) PendingInput() PendingInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

// statusLocked ranks recording over transcribing over loading.
func (s *Session) statusLocked() Status {
	switch {
	case s.recording.state == RecordingActive:
		return StatusRecording
	case s.recording.state == RecordingTranscribing:
		return StatusTranscribing
	case s.inFlight.Load() || s.loading.Load():
		return StatusLoading
	default:
		return StatusIdle
	}
}

// publishStatus emits StatusChanged when the status differs from the last
// published one.
func (s *Session) publishStatus() {
	s.mu.Lock()
	status := s.statusLocked()
	changed := status != s.lastStatus
	s.lastStatus = status
	s.mu.Unlock()

	if changed {
		s.emit(events.NewStatusChanged(string(status)))
	}
}

func (s *Session) RecordingState() RecordingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording.state
}

// PermissionDenied reports whether the last microphone request was refused.
func (s *Session) PermissionDenied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.permissionDenied
}

// Wait blocks until background speech synthesis has settled.
func (s *Session) Wait() {
	s.synthesis.Wait()
}

// Close releases the microphone, waits for pending synthesis and closes the
// collaborators that can be closed. ctx bounds the wait.
func (s *Session) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.mu.Lock()
		recording := s.recording.state == RecordingActive
		s.mu.Unlock()
		if recording {
			if _, releaseErr := s.audioInput.stopAndRelease(); releaseErr != nil {
				err = errors.Join(err, releaseErr)
			}
			s.mu.Lock()
			s.recording.state = RecordingIdle
			s.mu.Unlock()
		}

		done := make(chan struct{})
		go func() {
			s.synthesis.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = errors.Join(err, fmt.Errorf("failed to wait for speech synthesis: %w", ctx.Err()))
		}

		closers := []struct {
			name   string
			closer interface{ Close(context.Context) error }
		}{
			{"answer generator", &s.llm},
			{"speech synthesizer", &s.textToSpeech},
			{"transcriber", &s.speechToText},
			{"microphone", &s.audioInput},
			{"transcript store", &s.store},
		}
		for _, c := range closers {
			if closeErr := c.closer.Close(ctx); closeErr != nil {
				err = errors.Join(err, fmt.Errorf("failed to close %s: %w", c.name, closeErr))
			}
		}
	})
	return err
}
