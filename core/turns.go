package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const answerFailedTitle = "Oh no! Something went wrong."

// SubmitTurn turns the pending input into one turn.
//
// The user message is appended and the pending input cleared before the
// answer is requested. When the answer arrives the assistant message is
// appended and speech synthesis continues in the background, see
// [Session.Wait]. When it fails the user message is removed again, so after
// SubmitTurn returns the transcript holds either one more complete turn or
// nothing new.
//
// Empty input is rejected without side effects and without an error. A call
// made while another turn is in flight returns [ErrTurnInFlight].
func (s *Session) SubmitTurn(ctx context.Context) (TurnResult, error) {
	if s.closed.Load() {
		return TurnResult{Status: TurnRejected, Reason: ErrSessionClosed}, ErrSessionClosed
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return TurnResult{Status: TurnRejected, Reason: ErrTurnInFlight}, ErrTurnInFlight
	}
	defer func() {
		s.inFlight.Store(false)
		s.publishStatus()
	}()

	input, revision := s.takePendingInput()
	if input.IsEmpty() {
		return TurnResult{Status: TurnRejected, Reason: ErrInputRejected}, nil
	}

	ctx, span := tracer.Start(ctx, "submit turn")
	defer span.End()
	s.publishStatus()

	attachment, err := datauri.EncodeFile(ctx, input.Attachment)
	if err != nil {
		attachmentErr := &AttachmentError{Name: input.AttachmentName(), Err: err}
		span.RecordError(attachmentErr)
		span.SetStatus(codes.Error, attachmentErr.Error())
		s.notify(events.NoticeAttachmentUnreadable, events.SeverityError,
			"Fichier illisible", "Le fichier joint n'a pas pu être lu : "+input.AttachmentName())
		return TurnResult{Status: TurnRejected, Reason: attachmentErr}, attachmentErr
	}

	userMessage := conversations.NewUserMessage(input.Text, attachment)
	history := s.conversation.append(userMessage)
	s.clearPendingInput(revision)
	s.emit(events.NewUserMessageAppended(userMessage))
	span.SetAttributes(
		attribute.String("turn.user_message_id", userMessage.ID),
		attribute.Int("turn.history_length", len(history)),
	)

	answer, err := s.llm.generateAnswer(ctx, conversations.AnswerRequest{
		Prompt:     userMessage.Content,
		Attachment: userMessage.Attachment,
		History:    history,
	})
	if err != nil {
		answerErr := &AnswerError{Err: err}
		span.RecordError(answerErr)
		span.SetStatus(codes.Error, answerErr.Error())

		if s.conversation.removeByID(userMessage.ID) {
			s.emit(events.NewUserMessageRolledBack(userMessage.ID))
		}
		s.notify(events.NoticeAnswerFailed, events.SeverityError, answerFailedTitle, answerFailureDetail(err))
		return TurnResult{Status: TurnFailed, Reason: answerErr, UserMessageID: userMessage.ID}, answerErr
	}

	assistantMessage := conversations.NewAssistantMessage(answer)
	s.conversation.append(assistantMessage)
	s.emit(events.NewAssistantMessageAppended(assistantMessage))

	// the pair is stable now, the optimistic intermediate is never saved
	s.persist(ctx)
	s.synthesizeInBackground(ctx, assistantMessage)

	return TurnResult{
		Status:             TurnCompleted,
		UserMessageID:      userMessage.ID,
		AssistantMessageID: assistantMessage.ID,
	}, nil
}

func (s *Session) takePendingInput() (PendingInput, pendingRevision) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.pendingRevision
}

// clearPendingInput clears the parts of the pending input that are unchanged
// since revision was taken. A draft dictated or typed while the turn was
// encoding its attachment survives.
func (s *Session) clearPendingInput(revision pendingRevision) {
	s.mu.Lock()
	clearText := s.pendingRevision.text == revision.text
	clearAttachment := s.pendingRevision.attachment == revision.attachment
	if clearText {
		s.pending.Text = ""
		s.pendingRevision.text++
	}
	hadAttachment := clearAttachment && s.pending.Attachment != nil
	if clearAttachment {
		s.pending.Attachment = nil
		s.pendingRevision.attachment++
	}
	s.mu.Unlock()

	if clearText {
		s.emit(events.NewDraftUpdated(""))
	}
	if hadAttachment {
		s.emit(events.NewAttachmentStaged(""))
	}
}

func answerFailureDetail(err error) string {
	if err == nil || err.Error() == "" {
		return "There was a problem with the AI response."
	}
	return err.Error()
}

// synthesizeInBackground attaches audio to message once synthesis succeeds.
// Failures only get logged.
func (s *Session) synthesizeInBackground(ctx context.Context, message conversations.Message) {
	if !s.textToSpeech.isConfigured() {
		return
	}

	trace.SpanFromContext(ctx).AddEvent("speech synthesis scheduled",
		trace.WithAttributes(attribute.String("turn.assistant_message_id", message.ID)))
	ctx = context.WithoutCancel(ctx)
	run := panicSafeNamedWorker("speech synthesis", func(ctx context.Context) error {
		audioURI, err := s.textToSpeech.synthesize(ctx, message.Content)
		if err != nil {
			return &SynthesisError{MessageID: message.ID, Err: err}
		}
		if audioURI == "" {
			return nil
		}

		if s.conversation.attachAudio(message.ID, audioURI) {
			s.emit(events.NewAssistantAudioAttached(message.ID, audioURI))
		}
		return nil
	})

	s.synthesis.Add(1)
	go func() {
		defer s.synthesis.Done()
		if err := run(ctx); err != nil {
			s.logger.DebugContext(ctx, "answer left without audio", "message_id", message.ID, "error", err)
		}
	}()
}
