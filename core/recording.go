package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type recordingSession struct {
	state RecordingState
	// acquiring is set while a microphone request is pending. The public
	// state stays idle until access is granted.
	acquiring bool
}

// ToggleRecording starts a recording when idle and stops it when recording.
//
// Stopping releases the microphone, transcribes what was captured and
// blocks until the transcription settles. A successful transcription
// replaces the draft text. Calls made while a transcription or a microphone
// request is pending return [ErrRecordingBusy] and change nothing.
//
// A refused permission is not an error: the session returns to idle and
// [Session.PermissionDenied] reports true.
func (s *Session) ToggleRecording(ctx context.Context) (RecordingState, error) {
	if s.closed.Load() {
		return s.RecordingState(), ErrSessionClosed
	}
	if !s.audioInput.isConfigured() {
		err := &CapabilityError{Err: ErrMicrophoneUnavailable}
		s.notify(events.NoticeMicrophoneUnavailable, events.SeverityError,
			"Micro indisponible", "Aucun microphone n'est disponible sur cet appareil.")
		return s.RecordingState(), err
	}

	s.mu.Lock()
	switch {
	case s.recording.acquiring, s.recording.state == RecordingTranscribing:
		state := s.recording.state
		s.mu.Unlock()
		return state, ErrRecordingBusy
	case s.recording.state == RecordingActive:
		s.recording.state = RecordingTranscribing
		s.mu.Unlock()
		return s.stopRecording(ctx)
	default:
		s.recording.acquiring = true
		s.mu.Unlock()
		return s.startRecording(ctx)
	}
}

func (s *Session) startRecording(ctx context.Context) (RecordingState, error) {
	ctx, span := tracer.Start(ctx, "start recording")
	defer span.End()

	finishIdle := func() {
		s.mu.Lock()
		s.recording.acquiring = false
		s.recording.state = RecordingIdle
		s.mu.Unlock()
	}

	if err := s.audioInput.requestAccess(ctx); err != nil {
		finishIdle()
		span.RecordError(err)

		if errors.Is(err, ErrPermissionDenied) {
			s.mu.Lock()
			s.permissionDenied = true
			s.mu.Unlock()
			s.notify(events.NoticePermissionDenied, events.SeverityWarning,
				"Accès au micro refusé", "Autorisez l'accès au microphone pour dicter votre question.")
			return RecordingIdle, nil
		}

		capabilityErr := &CapabilityError{Err: err}
		span.SetStatus(codes.Error, capabilityErr.Error())
		s.notify(events.NoticeMicrophoneUnavailable, events.SeverityError,
			"Micro indisponible", "Le microphone n'a pas pu être ouvert.")
		return RecordingIdle, capabilityErr
	}

	if err := s.audioInput.startCapture(ctx); err != nil {
		if releaseErr := s.audioInput.release(); releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
		finishIdle()

		capabilityErr := &CapabilityError{Err: err}
		span.RecordError(capabilityErr)
		span.SetStatus(codes.Error, capabilityErr.Error())
		s.notify(events.NoticeMicrophoneUnavailable, events.SeverityError,
			"Micro indisponible", "L'enregistrement n'a pas pu démarrer.")
		return RecordingIdle, capabilityErr
	}

	s.mu.Lock()
	s.recording.acquiring = false
	s.recording.state = RecordingActive
	s.permissionDenied = false
	s.mu.Unlock()

	s.emit(events.NewRecordingStateChanged(string(RecordingActive)))
	s.publishStatus()
	return RecordingActive, nil
}

func (s *Session) stopRecording(ctx context.Context) (RecordingState, error) {
	ctx, span := tracer.Start(ctx, "stop recording")
	defer span.End()

	s.emit(events.NewRecordingStateChanged(string(RecordingTranscribing)))
	s.publishStatus()

	chunks, err := s.audioInput.stopAndRelease()
	if err != nil {
		// the captured audio is still usable
		span.RecordError(err)
		s.logger.WarnContext(ctx, "microphone did not shut down cleanly", "error", err)
	}
	span.SetAttributes(attribute.Int("recording.chunks", len(chunks)))

	transcript, err := s.transcribeChunks(ctx, chunks)
	if err != nil {
		transcriptionErr := &TranscriptionError{Err: err}
		span.RecordError(transcriptionErr)
		span.SetStatus(codes.Error, transcriptionErr.Error())

		s.finishRecording()
		s.notify(events.NoticeTranscriptionFailed, events.SeverityError,
			"Transcription impossible", "Votre message vocal n'a pas pu être transcrit.")
		return RecordingIdle, transcriptionErr
	}

	s.mu.Lock()
	s.pending.Text = transcript
	s.pendingRevision.text++
	s.mu.Unlock()
	s.emit(events.NewDraftUpdated(transcript))

	s.finishRecording()
	return RecordingIdle, nil
}

func (s *Session) transcribeChunks(ctx context.Context, chunks [][]byte) (string, error) {
	wavData, err := audio.EncodeWAV(s.audioInput.EncodingInfo(), chunks...)
	if err != nil {
		return "", fmt.Errorf("failed to encode recording: %w", err)
	}

	return s.speechToText.transcribe(ctx, datauri.EncodeWithType("audio/wav", wavData))
}

func (s *Session) finishRecording() {
	s.mu.Lock()
	s.recording.state = RecordingIdle
	s.mu.Unlock()

	s.emit(events.NewRecordingStateChanged(string(RecordingIdle)))
	s.publishStatus()
}
