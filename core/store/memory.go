package store

import (
	"context"
	"sync"

	"github.com/koscakluka/ema-chat/core/conversations"
)

// MemoryStore is an in-process store. It serializes like [FileStore] so
// quota and round-trip behaviour match.
type MemoryStore struct {
	quota int64

	mu      sync.Mutex
	data    []byte
	present bool
	saves   int
	failErr error
}

func NewMemoryStore(quota int64) *MemoryStore {
	return &MemoryStore{quota: quota}
}

func (s *MemoryStore) Load(_ context.Context) ([]conversations.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return []conversations.Message{}, nil
	}
	return decode(s.data), nil
}

func (s *MemoryStore) Save(_ context.Context, messages []conversations.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++

	if s.failErr != nil {
		return s.failErr
	}
	if len(messages) == 0 {
		s.data, s.present = nil, false
		return nil
	}

	data, err := encode(messages)
	if err != nil {
		return err
	}
	if err := checkQuota(data, s.quota); err != nil {
		return err
	}
	s.data, s.present = data, true
	return nil
}

// SetRaw replaces the stored value, e.g. to simulate corrupted data.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data, s.present = data, true
}

// Raw returns the stored value and whether the slot exists.
func (s *MemoryStore) Raw() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...), s.present
}

// SetQuota changes the quota for subsequent saves.
func (s *MemoryStore) SetQuota(quota int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quota = quota
}

// FailWith makes every subsequent save return err. A nil err restores normal
// behaviour.
func (s *MemoryStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
