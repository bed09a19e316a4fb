package orchestration

import (
	"context"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
)

type transcriptStore struct {
	client conversations.TranscriptStore
}

func (t *transcriptStore) set(client conversations.TranscriptStore) {
	if t != nil {
		t.client = client
	}
}

func (t *transcriptStore) isConfigured() bool {
	return t != nil && t.client != nil
}

func (t *transcriptStore) load(ctx context.Context) ([]conversations.Message, error) {
	if !t.isConfigured() {
		return []conversations.Message{}, nil
	}
	return t.client.Load(ctx)
}

func (t *transcriptStore) save(ctx context.Context, messages []conversations.Message) error {
	if !t.isConfigured() {
		return nil
	}
	return t.client.Save(ctx, messages)
}

func (t *transcriptStore) Close(ctx context.Context) error {
	if !t.isConfigured() {
		return nil
	}
	return closeClient(ctx, t.client)
}

// persist saves the current transcript. A failure is reported once through a
// notice and never touches the in-memory transcript.
func (s *Session) persist(ctx context.Context) *StorageError {
	ctx, span := tracer.Start(ctx, "persist transcript")
	defer span.End()

	s.persistMu.Lock()
	err := s.store.save(ctx, s.conversation.History())
	s.persistMu.Unlock()
	if err == nil {
		return nil
	}

	storageErr := newStorageError(err)
	span.RecordError(storageErr)
	s.logger.WarnContext(ctx, "failed to persist transcript", "quota", storageErr.Quota, "error", err)

	detail := "La conversation n'a pas pu être enregistrée sur cet appareil."
	if storageErr.Quota {
		detail = "L'espace de stockage est plein : la conversation continue mais ne sera pas conservée."
	}
	s.notify(events.NoticeStorageWarning, events.SeverityWarning, "Sauvegarde impossible", detail)
	return storageErr
}
