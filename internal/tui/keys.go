package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Submit          key.Binding
	ToggleRecording key.Binding
	Attach          key.Binding
	ClearAttachment key.Binding
	Play            key.Binding
	ClearTranscript key.Binding
	Cancel          key.Binding
	ScrollUp        key.Binding
	ScrollDown      key.Binding
	Quit            key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("entrée", "envoyer"),
		),
		ToggleRecording: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "dicter"),
		),
		Attach: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "joindre"),
		),
		ClearAttachment: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "retirer le fichier"),
		),
		Play: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "écouter"),
		),
		ClearTranscript: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "effacer"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("échap", "annuler"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quitter"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.ToggleRecording, k.Attach, k.ClearAttachment, k.Play, k.ClearTranscript, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Cancel, k.ScrollUp, k.ScrollDown}}
}
