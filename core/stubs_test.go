package orchestration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
)

type answerFunc func(ctx context.Context, request conversations.AnswerRequest) (string, error)

func (f answerFunc) GenerateAnswer(ctx context.Context, request conversations.AnswerRequest) (string, error) {
	return f(ctx, request)
}

func answering(answer string) answerFunc {
	return func(context.Context, conversations.AnswerRequest) (string, error) { return answer, nil }
}

func failingAnswer(err error) answerFunc {
	return func(context.Context, conversations.AnswerRequest) (string, error) { return "", err }
}

// blockingAnswer lets a test hold the answer call open.
type blockingAnswer struct {
	started chan conversations.AnswerRequest
	release chan struct{}
	answer  string
	err     error
}

func newBlockingAnswer(answer string, err error) *blockingAnswer {
	return &blockingAnswer{
		started: make(chan conversations.AnswerRequest, 1),
		release: make(chan struct{}),
		answer:  answer,
		err:     err,
	}
}

func (b *blockingAnswer) GenerateAnswer(ctx context.Context, request conversations.AnswerRequest) (string, error) {
	b.started <- request
	select {
	case <-b.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return b.answer, b.err
}

type synthFunc func(ctx context.Context, text string) (string, error)

func (f synthFunc) SynthesizeSpeech(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

type transcribeFunc func(ctx context.Context, audioURI string) (string, error)

func (f transcribeFunc) TranscribeAudio(ctx context.Context, audioURI string) (string, error) {
	return f(ctx, audioURI)
}

type stubMicrophone struct {
	mu sync.Mutex

	accessErr error
	startErr  error
	chunks    [][]byte

	requests  int
	starts    int
	stops     int
	releases  int
	acquired  bool
	capturing bool
}

func (m *stubMicrophone) RequestAccess(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if m.accessErr != nil {
		return m.accessErr
	}
	m.acquired = true
	return nil
}

func (m *stubMicrophone) StartCapture(_ context.Context, onAudio func([]byte)) error {
	m.mu.Lock()
	m.starts++
	if m.startErr != nil {
		m.mu.Unlock()
		return m.startErr
	}
	m.capturing = true
	chunks := m.chunks
	m.mu.Unlock()

	for _, chunk := range chunks {
		onAudio(chunk)
	}
	return nil
}

func (m *stubMicrophone) StopCapture() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stops++
	m.capturing = false
	return nil
}

func (m *stubMicrophone) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releases++
	m.acquired = false
	return nil
}

func (m *stubMicrophone) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}

func (m *stubMicrophone) isAcquired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquired
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) notices(reason events.NoticeReason) []events.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	notices := []events.Notice{}
	for _, event := range r.events {
		if notice, ok := event.(events.Notice); ok && notice.Reason == reason {
			notices = append(notices, notice)
		}
	}
	return notices
}

func (r *eventRecorder) allNotices() []events.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	notices := []events.Notice{}
	for _, event := range r.events {
		if notice, ok := event.(events.Notice); ok {
			notices = append(notices, notice)
		}
	}
	return notices
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := []events.Kind{}
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) statuses() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses := []string{}
	for _, event := range r.events {
		if changed, ok := event.(events.StatusChanged); ok {
			statuses = append(statuses, changed.Status)
		}
	}
	return statuses
}

var errBoom = errors.New("boom")

func waitFor(t *testing.T, what string, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func roles(messages []conversations.Message) []conversations.Role {
	out := []conversations.Role{}
	for _, m := range messages {
		out = append(out, m.Role)
	}
	return out
}

// blockingFile holds Open until released.
type blockingFile struct {
	name    string
	data    []byte
	opened  chan struct{}
	release chan struct{}
}

func newBlockingFile(name string, data []byte) *blockingFile {
	return &blockingFile{name: name, data: data, opened: make(chan struct{}), release: make(chan struct{})}
}

func (f *blockingFile) Name() string { return f.name }

func (f *blockingFile) Open() (io.ReadCloser, error) {
	close(f.opened)
	<-f.release
	return io.NopCloser(bytes.NewReader(f.data)), nil
}
