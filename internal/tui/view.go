package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-chat/core"
	"github.com/koscakluka/ema-chat/core/conversations"
	"github.com/koscakluka/ema-chat/core/events"
	"github.com/muesli/reflow/wordwrap"
)

const (
	appTitle    = "Xaamaal laa say Yéleef"
	welcomeText = "Bienvenue sur Xaamaal laa say Yéleef"
	welcomeHint = "Commencez une conversation en tapant un message ci-dessous. Votre historique de discussion sera sauvegardé sur cet appareil."

	// header, status, notice, bordered input and help
	chromeHeight = 8
)

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 3)
	m.input.Width = max(width-8, 10)
	m.pathInput.Width = max(width-8, 10)
	m.help.Width = width
	m.refreshTranscript()
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(renderTranscript(m.transcript, m.viewport.Width))
	m.viewport.GotoBottom()
}

func renderTranscript(transcript []conversations.Message, width int) string {
	wrap := max(width-4, 20)
	if len(transcript) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			titleStyle.Render(welcomeText),
			mutedStyle.Render(wordwrap.String(welcomeHint, wrap)),
		)
	}

	var b strings.Builder
	for _, message := range transcript {
		b.WriteString(renderMessage(message, wrap))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderMessage(message conversations.Message, wrap int) string {
	label := userLabelStyle.Render("Vous")
	if message.Role == conversations.RoleAssistant {
		label = assistantLabelStyle.Render("Assistant")
		if message.HasAudio() {
			label += mutedStyle.Render("  ♪ ctrl+p")
		}
	} else if message.HasAttachment() {
		label += mutedStyle.Render("  📎 pièce jointe")
	}
	return label + "\n" + messageStyle.Render(wordwrap.String(message.Content, wrap))
}

func (m Model) View() string {
	sections := []string{
		titleStyle.Render(appTitle),
		m.viewport.View(),
		m.statusLine(),
		m.noticeLine(),
		m.inputBox(),
		m.help.View(m.keys),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) statusLine() string {
	var status string
	switch orchestration.Status(m.status) {
	case orchestration.StatusLoading:
		status = m.spinner.View() + " L'assistant réfléchit..."
	case orchestration.StatusRecording:
		status = errorStyle.Render("●") + " Enregistrement... (ctrl+r pour arrêter)"
	case orchestration.StatusTranscribing:
		status = m.spinner.View() + " Transcription..."
	}
	if m.playing {
		status = strings.TrimSpace(status + "  ♪ lecture")
	}
	return status
}

func (m Model) noticeLine() string {
	if m.notice != nil {
		style := warningStyle
		if m.notice.Severity == events.SeverityError {
			style = errorStyle
		}
		line := style.Render(m.notice.Title)
		if m.notice.Detail != "" {
			line += " " + m.notice.Detail
		}
		return line
	}
	if m.hint != "" {
		return mutedStyle.Render(m.hint)
	}
	return ""
}

func (m Model) inputBox() string {
	content := m.input.View()
	if m.attaching {
		content = m.pathInput.View()
	} else if m.attachment != "" {
		content += "\n" + mutedStyle.Render("📎 "+m.attachment+" (ctrl+x pour retirer)")
	}
	box := inputBoxStyle
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}
	return box.Render(content)
}
