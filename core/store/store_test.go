package store

import (
	"os"
	"testing"

	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTranscript() []conversations.Message {
	user := conversations.NewUserMessage("Quels sont mes droits en cas de licenciement?", "data:image/png;base64,AAAA")
	assistant := conversations.NewAssistantMessage("Vous avez droit à un préavis.")
	assistant.Audio = "data:audio/wav;base64,AAAA"
	return []conversations.Message{user, assistant}
}

func contents(messages []conversations.Message) []string {
	out := []string{}
	for _, m := range messages {
		out = append(out, string(m.Role)+":"+m.Content)
	}
	return out
}

func TestFileStoreRoundTripDropsTransientFields(t *testing.T) {
	s := NewFileStore(t.TempDir())
	transcript := sampleTranscript()

	require.NoError(t, s.Save(t.Context(), transcript))
	loaded, err := s.Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, contents(transcript), contents(loaded))
	for _, m := range loaded {
		assert.Empty(t, m.Attachment)
		assert.Empty(t, m.Audio)
		assert.NotEmpty(t, m.ID)
	}

	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"role":"user","content":"Quels sont mes droits en cas de licenciement?"},
		{"role":"assistant","content":"Vous avez droit à un préavis."}
	]`, string(raw))
}

func TestFileStoreSaveOfLoadIsIdempotent(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Save(t.Context(), sampleTranscript()))

	first, err := s.Load(t.Context())
	require.NoError(t, err)
	require.NoError(t, s.Save(t.Context(), first))
	second, err := s.Load(t.Context())
	require.NoError(t, err)

	assert.Equal(t, contents(first), contents(second))
}

func TestFileStoreLoadTreatsAbsentAndMalformedAsEmpty(t *testing.T) {
	s := NewFileStore(t.TempDir())

	loaded, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	for _, raw := range []string{"{not json", `{"role":"user"}`, `[{"role":"system","content":"x"}]`} {
		require.NoError(t, os.WriteFile(s.Path(), []byte(raw), 0o644))
		loaded, err := s.Load(t.Context())
		require.NoError(t, err, raw)
		assert.Empty(t, loaded, raw)
	}
}

func TestFileStoreRemovesSlotWhenEmpty(t *testing.T) {
	s := NewFileStore(t.TempDir())
	require.NoError(t, s.Save(t.Context(), sampleTranscript()))
	require.FileExists(t, s.Path())

	require.NoError(t, s.Save(t.Context(), nil))
	assert.NoFileExists(t, s.Path())

	require.NoError(t, s.Save(t.Context(), nil), "removing an absent slot is not an error")
}

func TestFileStoreQuotaKeepsPreviousValue(t *testing.T) {
	s := NewFileStore(t.TempDir(), WithQuota(120))
	short := []conversations.Message{conversations.NewUserMessage("Bonjour", "")}
	require.NoError(t, s.Save(t.Context(), short))

	long := append(sampleTranscript(), sampleTranscript()...)
	err := s.Save(t.Context(), long)
	require.ErrorIs(t, err, ErrQuotaExceeded)

	loaded, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, contents(short), contents(loaded))
}

func TestMemoryStoreMatchesFileStoreBehaviour(t *testing.T) {
	s := NewMemoryStore(0)
	require.NoError(t, s.Save(t.Context(), sampleTranscript()))

	loaded, err := s.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, contents(sampleTranscript()), contents(loaded))

	require.NoError(t, s.Save(t.Context(), []conversations.Message{}))
	_, present := s.Raw()
	assert.False(t, present)

	s.SetRaw([]byte("garbage"))
	loaded, err = s.Load(t.Context())
	require.NoError(t, err)
	assert.Empty(t, loaded)

	s.SetQuota(10)
	assert.ErrorIs(t, s.Save(t.Context(), sampleTranscript()), ErrQuotaExceeded)
	assert.Equal(t, 3, s.Saves())
}

func TestQuotaErrorReportsSizeAndLimit(t *testing.T) {
	err := checkQuota(make([]byte, 150), 100)
	require.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Contains(t, err.Error(), "150 bytes exceed a 100 byte quota")
	assert.NoError(t, checkQuota(make([]byte, 150), 0), "zero disables the quota")
}
