package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/koscakluka/ema-chat/core/store"
)

func TestSubmitTurnRejectsEmptyInputWithoutSideEffects(t *testing.T) {
	recorder := &eventRecorder{}
	memory := store.NewMemoryStore(0)
	s := NewSession(
		WithAnswerGenerator(answering("unused")),
		WithTranscriptStore(memory),
		WithEventHandler(recorder.handle),
	)

	for _, draft := range []string{"", "   \n"} {
		s.SetDraft(draft)
		result, err := s.SubmitTurn(t.Context())
		if err != nil {
			t.Fatalf("expected no error for empty input, got %v", err)
		}
		if result.Status != TurnRejected || !errors.Is(result.Reason, ErrInputRejected) {
			t.Fatalf("expected rejected turn, got %+v", result)
		}
		if got := len(s.Transcript()); got != 0 {
			t.Fatalf("expected empty transcript, got %d messages", got)
		}
		if got := s.PendingInput().Text; got != draft {
			t.Fatalf("expected draft %q to stay, got %q", draft, got)
		}
	}

	if memory.Saves() != 0 {
		t.Fatalf("expected no save, got %d", memory.Saves())
	}
	if len(recorder.statuses()) != 0 {
		t.Fatalf("expected no status changes, got %v", recorder.statuses())
	}
}

func TestSubmitTurnAppendsPairedTurn(t *testing.T) {
	var request conversations.AnswerRequest
	s := NewSession(WithAnswerGenerator(answerFunc(func(_ context.Context, r conversations.AnswerRequest) (string, error) {
		request = r
		return "En cas de licenciement, vous avez droit à un préavis.", nil
	})))

	s.SetDraft("Quels sont mes droits en cas de licenciement?")
	result, err := s.SubmitTurn(t.Context())
	if err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}
	if result.Status != TurnCompleted {
		t.Fatalf("expected completed turn, got %+v", result)
	}

	transcript := s.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(transcript))
	}
	if transcript[0].Role != conversations.RoleUser || transcript[0].Content != "Quels sont mes droits en cas de licenciement?" {
		t.Fatalf("unexpected user message %+v", transcript[0])
	}
	if transcript[1].Role != conversations.RoleAssistant || transcript[1].Content == "" {
		t.Fatalf("unexpected assistant message %+v", transcript[1])
	}
	if transcript[0].ID != result.UserMessageID || transcript[1].ID != result.AssistantMessageID {
		t.Fatalf("expected result IDs to match transcript, got %+v", result)
	}
	if transcript[1].HasAudio() {
		t.Fatalf("expected no audio without a synthesizer")
	}

	if request.Prompt != "Quels sont mes droits en cas de licenciement?" || len(request.History) != 0 {
		t.Fatalf("expected prompt without history, got %+v", request)
	}
	if got := s.PendingInput(); !got.IsEmpty() {
		t.Fatalf("expected pending input cleared, got %+v", got)
	}
}

func TestSubmitTurnPassesPriorTranscriptAsHistory(t *testing.T) {
	requests := []conversations.AnswerRequest{}
	s := NewSession(WithAnswerGenerator(answerFunc(func(_ context.Context, r conversations.AnswerRequest) (string, error) {
		requests = append(requests, r)
		return "réponse " + r.Prompt, nil
	})))

	for _, prompt := range []string{"première", "deuxième", "troisième"} {
		s.SetDraft(prompt)
		if _, err := s.SubmitTurn(t.Context()); err != nil {
			t.Fatalf("expected turn to complete, got %v", err)
		}
	}

	last := requests[2]
	if last.Prompt != "troisième" || len(last.History) != 4 {
		t.Fatalf("expected 4 prior messages for third prompt, got %+v", last)
	}
	if last.History[3].Content != "réponse deuxième" {
		t.Fatalf("expected history to end with previous answer, got %q", last.History[3].Content)
	}

	expected := []conversations.Role{"user", "assistant", "user", "assistant", "user", "assistant"}
	if got := roles(s.Transcript()); len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	} else {
		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("expected %v, got %v", expected, got)
			}
		}
	}
}

func TestSubmitTurnRollsBackOnAnswerFailure(t *testing.T) {
	recorder := &eventRecorder{}
	memory := store.NewMemoryStore(0)
	s := NewSession(
		WithAnswerGenerator(failingAnswer(errBoom)),
		WithTranscriptStore(memory),
		WithEventHandler(recorder.handle),
	)

	s.SetDraft("Quels sont mes droits?")
	result, err := s.SubmitTurn(t.Context())

	var answerErr *AnswerError
	if !errors.As(err, &answerErr) || !errors.Is(err, errBoom) {
		t.Fatalf("expected AnswerError wrapping boom, got %v", err)
	}
	if result.Status != TurnFailed || result.UserMessageID == "" {
		t.Fatalf("expected failed turn with user ID, got %+v", result)
	}
	if got := len(s.Transcript()); got != 0 {
		t.Fatalf("expected transcript back to empty, got %d messages", got)
	}
	if got := s.PendingInput().Text; got != "" {
		t.Fatalf("expected pending input to stay cleared, got %q", got)
	}

	notices := recorder.notices(events.NoticeAnswerFailed)
	if len(notices) != 1 || notices[0].Title != "Oh no! Something went wrong." {
		t.Fatalf("expected one answer failure notice, got %+v", notices)
	}
	if memory.Saves() != 0 {
		t.Fatalf("expected nothing persisted for a failed turn, got %d saves", memory.Saves())
	}

	kinds := recorder.kinds()
	appended, rolledBack := -1, -1
	for i, kind := range kinds {
		switch kind {
		case events.KindUserMessageAppended:
			appended = i
		case events.KindUserMessageRolledBack:
			rolledBack = i
		}
	}
	if appended < 0 || rolledBack < appended {
		t.Fatalf("expected append then rollback, got %v", kinds)
	}
}

func TestSubmitTurnRollbackKeepsMessagesWithIdenticalText(t *testing.T) {
	fail := false
	s := NewSession(WithAnswerGenerator(answerFunc(func(context.Context, conversations.AnswerRequest) (string, error) {
		if fail {
			return "", errBoom
		}
		return "oui", nil
	})))

	s.SetDraft("bonjour")
	if _, err := s.SubmitTurn(t.Context()); err != nil {
		t.Fatalf("expected first turn to complete, got %v", err)
	}
	before := s.Transcript()

	fail = true
	s.SetDraft("bonjour")
	if _, err := s.SubmitTurn(t.Context()); err == nil {
		t.Fatalf("expected second turn to fail")
	}

	after := s.Transcript()
	if len(after) != 2 || after[0].ID != before[0].ID || after[1].ID != before[1].ID {
		t.Fatalf("expected the earlier identical message to survive, got %+v", after)
	}
}

func TestSubmitTurnClearsInputBeforeAnswerArrives(t *testing.T) {
	answer := newBlockingAnswer("réponse", nil)
	recorder := &eventRecorder{}
	s := NewSession(WithAnswerGenerator(answer), WithEventHandler(recorder.handle))
	s.SetDraft("question")
	s.StageAttachment(datauri.InMemoryFile("note.txt", []byte("hello")))

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitTurn(context.Background())
		done <- err
	}()

	select {
	case <-answer.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for answer call")
	}

	if got := s.PendingInput(); !got.IsEmpty() {
		t.Fatalf("expected pending input cleared while waiting, got %+v", got)
	}
	transcript := s.Transcript()
	if len(transcript) != 1 || transcript[0].Role != conversations.RoleUser {
		t.Fatalf("expected optimistic user message, got %+v", transcript)
	}
	if !strings.HasPrefix(transcript[0].Attachment, "data:text/plain") {
		t.Fatalf("expected attachment encoded as data URI, got %q", transcript[0].Attachment)
	}
	if s.Status() != StatusLoading {
		t.Fatalf("expected loading status, got %s", s.Status())
	}

	s.SetDraft("next question")
	close(answer.release)
	if err := <-done; err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}

	if got := s.PendingInput().Text; got != "next question" {
		t.Fatalf("expected the new draft to survive, got %q", got)
	}
	if s.Status() != StatusIdle {
		t.Fatalf("expected idle status, got %s", s.Status())
	}
	statuses := recorder.statuses()
	if len(statuses) != 2 || statuses[0] != string(StatusLoading) || statuses[1] != string(StatusIdle) {
		t.Fatalf("expected loading then idle, got %v", statuses)
	}
}

func TestSubmitTurnIsSingleFlight(t *testing.T) {
	answer := newBlockingAnswer("réponse", nil)
	s := NewSession(WithAnswerGenerator(answer))
	s.SetDraft("première")

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitTurn(context.Background())
		done <- err
	}()
	<-answer.started

	s.SetDraft("deuxième")
	result, err := s.SubmitTurn(t.Context())
	if !errors.Is(err, ErrTurnInFlight) || result.Status != TurnRejected {
		t.Fatalf("expected ErrTurnInFlight, got %+v %v", result, err)
	}
	if got := s.PendingInput().Text; got != "deuxième" {
		t.Fatalf("expected rejected draft to stay, got %q", got)
	}
	if err := s.ClearTranscript(t.Context()); !errors.Is(err, ErrTurnInFlight) {
		t.Fatalf("expected clear to be refused while in flight, got %v", err)
	}

	close(answer.release)
	if err := <-done; err != nil {
		t.Fatalf("expected first turn to complete, got %v", err)
	}
	if got := len(s.Transcript()); got != 2 {
		t.Fatalf("expected exactly one turn, got %d messages", got)
	}
}

func TestSubmitTurnRejectsUnreadableAttachment(t *testing.T) {
	recorder := &eventRecorder{}
	called := false
	s := NewSession(
		WithAnswerGenerator(answerFunc(func(context.Context, conversations.AnswerRequest) (string, error) {
			called = true
			return "unused", nil
		})),
		WithEventHandler(recorder.handle),
	)

	s.SetDraft("que dit ce fichier ?")
	s.StageAttachment(datauri.LocalFile(t.TempDir() + "/missing.pdf"))
	result, err := s.SubmitTurn(t.Context())

	var attachmentErr *AttachmentError
	if !errors.As(err, &attachmentErr) || attachmentErr.Name != "missing.pdf" {
		t.Fatalf("expected AttachmentError, got %v", err)
	}
	if result.Status != TurnRejected || called {
		t.Fatalf("expected rejection before the answer call, got %+v", result)
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("expected no transcript change")
	}
	if got := s.PendingInput(); got.Text != "que dit ce fichier ?" || got.AttachmentName() != "missing.pdf" {
		t.Fatalf("expected pending input untouched, got %+v", got)
	}
	if len(recorder.notices(events.NoticeAttachmentUnreadable)) != 1 {
		t.Fatalf("expected attachment notice")
	}
}

func TestSubmitTurnAcceptsAttachmentWithoutText(t *testing.T) {
	var request conversations.AnswerRequest
	s := NewSession(WithAnswerGenerator(answerFunc(func(_ context.Context, r conversations.AnswerRequest) (string, error) {
		request = r
		return "C'est une image.", nil
	})))

	s.StageAttachment(datauri.InMemoryFile("photo.png", []byte("\x89PNG\r\n\x1a\n0000")))
	if _, err := s.SubmitTurn(t.Context()); err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}
	if !strings.HasPrefix(request.Attachment, "data:image/png;base64,") {
		t.Fatalf("expected image data URI, got %q", request.Attachment)
	}
	if got := s.Transcript()[0].Attachment; got != request.Attachment {
		t.Fatalf("expected user message to keep the attachment")
	}
}

func TestSynthesisFailureLeavesAnswerWithoutAudio(t *testing.T) {
	recorder := &eventRecorder{}
	s := NewSession(
		WithAnswerGenerator(answering("Vous avez droit à un préavis.")),
		WithSpeechSynthesizer(synthFunc(func(context.Context, string) (string, error) { return "", errBoom })),
		WithEventHandler(recorder.handle),
	)

	s.SetDraft("Quels sont mes droits?")
	if _, err := s.SubmitTurn(t.Context()); err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}
	s.Wait()

	transcript := s.Transcript()
	if len(transcript) != 2 || transcript[1].HasAudio() {
		t.Fatalf("expected answer without audio, got %+v", transcript)
	}
	if notices := recorder.allNotices(); len(notices) != 0 {
		t.Fatalf("expected no notices, got %+v", notices)
	}
}

func TestSynthesisAttachesAudioAfterAnswerIsVisible(t *testing.T) {
	release := make(chan struct{})
	recorder := &eventRecorder{}
	s := NewSession(
		WithAnswerGenerator(answering("Bonjour")),
		WithSpeechSynthesizer(synthFunc(func(ctx context.Context, text string) (string, error) {
			<-release
			return "data:audio/wav;base64,UklGRg==", nil
		})),
		WithEventHandler(recorder.handle),
	)

	s.SetDraft("Salut")
	result, err := s.SubmitTurn(t.Context())
	if err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}
	if s.Transcript()[1].HasAudio() {
		t.Fatalf("expected answer visible before audio")
	}

	close(release)
	s.Wait()

	answer := s.Transcript()[1]
	if answer.ID != result.AssistantMessageID || answer.Audio != "data:audio/wav;base64,UklGRg==" {
		t.Fatalf("expected audio on the answer, got %+v", answer)
	}

	kinds := recorder.kinds()
	if kinds[len(kinds)-1] != events.KindAssistantAudioAttached {
		t.Fatalf("expected audio attached last, got %v", kinds)
	}
}

func TestAudioIsAttachedAtMostOnce(t *testing.T) {
	c := &conversation{}
	answer := conversations.NewAssistantMessage("a")
	user := conversations.NewUserMessage("q", "")
	c.append(user)
	c.append(answer)

	if !c.attachAudio(answer.ID, "data:audio/wav;base64,AA==") {
		t.Fatalf("expected first attach to succeed")
	}
	if c.attachAudio(answer.ID, "data:audio/wav;base64,BB==") {
		t.Fatalf("expected second attach to be refused")
	}
	if c.attachAudio(user.ID, "data:audio/wav;base64,CC==") {
		t.Fatalf("expected user messages to never get audio")
	}
	if c.attachAudio("missing", "data:audio/wav;base64,DD==") {
		t.Fatalf("expected unknown IDs to be ignored")
	}
	if got := c.History()[1].Audio; got != "data:audio/wav;base64,AA==" {
		t.Fatalf("expected first audio to stay, got %q", got)
	}
}

func TestAudioForClearedAnswerIsDropped(t *testing.T) {
	release := make(chan struct{})
	s := NewSession(
		WithAnswerGenerator(answering("Bonjour")),
		WithSpeechSynthesizer(synthFunc(func(context.Context, string) (string, error) {
			<-release
			return "data:audio/wav;base64,AA==", nil
		})),
	)

	s.SetDraft("Salut")
	if _, err := s.SubmitTurn(t.Context()); err != nil {
		t.Fatalf("expected turn to complete, got %v", err)
	}
	if err := s.ClearTranscript(t.Context()); err != nil {
		t.Fatalf("expected clear to succeed, got %v", err)
	}
	close(release)
	s.Wait()

	if got := len(s.Transcript()); got != 0 {
		t.Fatalf("expected transcript to stay empty, got %d", got)
	}
}

func TestSubmitTurnWithoutAnswerGeneratorRollsBack(t *testing.T) {
	s := NewSession()
	s.SetDraft("bonjour")

	_, err := s.SubmitTurn(t.Context())
	if !errors.Is(err, ErrAnswerGeneratorMissing) {
		t.Fatalf("expected ErrAnswerGeneratorMissing, got %v", err)
	}
	if len(s.Transcript()) != 0 {
		t.Fatalf("expected empty transcript")
	}
}
