// Package tui renders a session in the terminal and maps key presses to
// session actions.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/audio"
	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/datauri"
	"github.com/koscakluka/ema-chat/core/events"
)

// Session is the part of [orchestration.Session] the terminal drives.
type Session interface {
	Load(ctx context.Context) error
	SetDraft(text string)
	StageAttachment(file datauri.File)
	ClearAttachment()
	SubmitTurn(ctx context.Context) (orchestration.TurnResult, error)
	ToggleRecording(ctx context.Context) (orchestration.RecordingState, error)
	ClearTranscript(ctx context.Context) error
}

type (
	turnFinishedMsg struct {
		result orchestration.TurnResult
		err    error
	}
	recordingToggledMsg struct {
		state orchestration.RecordingState
		err   error
	}
	transcriptClearedMsg struct{ err error }
	playbackFinishedMsg  struct{ err error }
	loadedMsg            struct{ err error }
)

type Model struct {
	ctx     context.Context
	session Session
	speaker audio.Speaker

	keys      keyMap
	help      help.Model
	input     textinput.Model
	pathInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model

	transcript []conversations.Message
	status     string
	recording  string
	attachment string
	attaching  bool
	playing    bool

	notice *events.Notice
	hint   string

	width, height int
}

type Option func(*Model)

// WithSpeaker enables playback of synthesized answers.
func WithSpeaker(speaker audio.Speaker) Option {
	return func(m *Model) { m.speaker = speaker }
}

func New(ctx context.Context, session Session, opts ...Option) Model {
	input := textinput.New()
	input.Placeholder = "Posez-moi une question..."
	input.Prompt = "› "
	input.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "Chemin du fichier à joindre"
	pathInput.Prompt = "📎 "

	m := Model{
		ctx:       ctx,
		session:   session,
		keys:      defaultKeyMap(),
		help:      help.New(),
		input:     input,
		pathInput: pathInput,
		viewport:  viewport.New(80, 20),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(mutedStyle)),
		status:    string(orchestration.StatusIdle),
		recording: string(orchestration.RecordingIdle),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refreshTranscript()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.load())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.attaching {
			return m.updateAttaching(msg)
		}
		return m.updateTyping(msg)

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case turnFinishedMsg:
		if errors.Is(msg.err, orchestration.ErrTurnInFlight) {
			m.hint = "Une réponse est déjà en cours."
		}
		return m, nil

	case recordingToggledMsg:
		if errors.Is(msg.err, orchestration.ErrRecordingBusy) {
			m.hint = "Transcription en cours, patientez."
		}
		return m, nil

	case transcriptClearedMsg:
		if errors.Is(msg.err, orchestration.ErrTurnInFlight) {
			m.hint = "Impossible d'effacer pendant une réponse."
		}
		return m, nil

	case playbackFinishedMsg:
		m.playing = false
		if msg.err != nil && !errors.Is(msg.err, context.Canceled) {
			m.hint = fmt.Sprintf("Lecture impossible : %v", msg.err)
		}
		return m, nil

	case loadedMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.clearMessages()
		return m, m.submit()
	case key.Matches(msg, m.keys.ToggleRecording):
		m.clearMessages()
		return m, m.toggleRecording()
	case key.Matches(msg, m.keys.Attach):
		m.attaching = true
		m.input.Blur()
		m.pathInput.SetValue("")
		return m, m.pathInput.Focus()
	case key.Matches(msg, m.keys.ClearAttachment):
		m.session.ClearAttachment()
		return m, nil
	case key.Matches(msg, m.keys.Play):
		return m.play()
	case key.Matches(msg, m.keys.ClearTranscript):
		m.clearMessages()
		return m, m.clearTranscript()
	case key.Matches(msg, m.keys.ScrollUp, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.session.SetDraft(after)
	}
	return m, cmd
}

func (m Model) updateAttaching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.stopAttaching()
	case key.Matches(msg, m.keys.Submit):
		if path := m.pathInput.Value(); path != "" {
			// readability is checked when the turn is submitted
			m.session.StageAttachment(datauri.LocalFile(path))
		}
		return m.stopAttaching()
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m Model) stopAttaching() (tea.Model, tea.Cmd) {
	m.attaching = false
	m.pathInput.Blur()
	return m, m.input.Focus()
}

func (m *Model) clearMessages() {
	m.notice = nil
	m.hint = ""
}

func (m Model) load() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return loadedMsg{err: session.Load(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		result, err := session.SubmitTurn(ctx)
		return turnFinishedMsg{result: result, err: err}
	}
}

func (m Model) toggleRecording() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		state, err := session.ToggleRecording(ctx)
		return recordingToggledMsg{state: state, err: err}
	}
}

func (m Model) clearTranscript() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return transcriptClearedMsg{err: session.ClearTranscript(ctx)}
	}
}

// play speaks the audio of the latest answer that has some.
func (m Model) play() (tea.Model, tea.Cmd) {
	if m.speaker == nil {
		m.hint = "Lecture audio indisponible."
		return m, nil
	}
	if m.playing {
		return m, nil
	}

	uri := latestAudio(m.transcript)
	if uri == "" {
		m.hint = "Aucune réponse audio à écouter."
		return m, nil
	}

	m.playing = true
	ctx, speaker := m.ctx, m.speaker
	return m, func() tea.Msg {
		_, data, err := datauri.Decode(uri)
		if err != nil {
			return playbackFinishedMsg{err: err}
		}
		info, pcm, err := audio.DecodeWAV(data)
		if err != nil {
			return playbackFinishedMsg{err: err}
		}
		return playbackFinishedMsg{err: speaker.Play(ctx, info, pcm)}
	}
}

func latestAudio(transcript []conversations.Message) string {
	for i := len(transcript) - 1; i >= 0; i-- {
		if transcript[i].Role == conversations.RoleAssistant && transcript[i].HasAudio() {
			return transcript[i].Audio
		}
	}
	return ""
}

func (m *Model) applyEvent(event events.Event) {
	switch event := event.(type) {
	case events.TranscriptLoaded:
		m.transcript = append([]conversations.Message(nil), event.Messages...)
	case events.UserMessageAppended:
		m.transcript = append(m.transcript, event.Message)
	case events.AssistantMessageAppended:
		m.transcript = append(m.transcript, event.Message)
	case events.UserMessageRolledBack:
		for i, message := range m.transcript {
			if message.ID == event.MessageID {
				m.transcript = append(m.transcript[:i:i], m.transcript[i+1:]...)
				break
			}
		}
	case events.AssistantAudioAttached:
		for i := range m.transcript {
			if m.transcript[i].ID == event.MessageID {
				m.transcript[i].Audio = event.Audio
				break
			}
		}
	case events.TranscriptCleared:
		m.transcript = nil
	case events.StatusChanged:
		m.status = event.Status
		return
	case events.RecordingStateChanged:
		m.recording = event.State
		return
	case events.DraftUpdated:
		if m.input.Value() != event.Text {
			m.input.SetValue(event.Text)
			m.input.CursorEnd()
		}
		return
	case events.AttachmentStaged:
		m.attachment = event.Name
		return
	case events.Notice:
		m.notice = &event
		return
	default:
		return
	}
	m.refreshTranscript()
}
