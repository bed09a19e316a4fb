package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/koscakluka/ema-chat/core/events"
)

// EventMsg carries a session event into the bubbletea update loop.
type EventMsg struct {
	Event events.Event
}

// Relay forwards session events to a running program. Events emitted before
// Attach are dropped.
type Relay struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

func NewRelay() *Relay {
	return &Relay{}
}

func (r *Relay) Attach(program *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = program.Send
}

// Handle is an events.Handler.
func (r *Relay) Handle(event events.Event) {
	r.mu.RLock()
	send := r.send
	r.mu.RUnlock()
	if send != nil {
		send(EventMsg{Event: event})
	}
}
