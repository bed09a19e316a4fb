package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/koscakluka/ema-chat/core/conversations"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FileStore keeps the transcript as a JSON file inside a directory.
type FileStore struct {
	path  string
	quota int64

	mu sync.Mutex
}

type FileStoreOption func(*FileStore)

// WithQuota limits the size of the stored transcript in bytes. Zero means no
// limit.
func WithQuota(quota int64) FileStoreOption {
	return func(s *FileStore) { s.quota = quota }
}

func NewFileStore(dir string, opts ...FileStoreOption) *FileStore {
	s := &FileStore{path: filepath.Join(dir, SlotName+".json")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(ctx context.Context) ([]conversations.Message, error) {
	_, span := tracer.Start(ctx, "load transcript")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []conversations.Message{}, nil
	} else if err != nil {
		// unreadable is treated the same as absent
		span.RecordError(err)
		logger.WarnContext(ctx, "failed to read transcript", "path", s.path, "error", err)
		return []conversations.Message{}, nil
	}

	messages := decode(data)
	span.SetAttributes(attribute.Int("transcript.length", len(messages)))
	return messages, nil
}

func (s *FileStore) Save(ctx context.Context, messages []conversations.Message) error {
	_, span := tracer.Start(ctx, "save transcript")
	defer span.End()
	span.SetAttributes(attribute.Int("transcript.length", len(messages)))

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(messages) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fail(fmt.Errorf("failed to remove transcript: %w", err))
		}
		return nil
	}

	data, err := encode(messages)
	if err != nil {
		return fail(err)
	}
	if err := checkQuota(data, s.quota); err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fail(fmt.Errorf("failed to create store directory: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), SlotName+"-*.tmp")
	if err != nil {
		return fail(fmt.Errorf("failed to create temporary transcript: %w", err))
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fail(fmt.Errorf("failed to write transcript: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("failed to write transcript: %w", err))
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fail(fmt.Errorf("failed to replace transcript: %w", err))
	}
	return nil
}
