package events

import "time"

type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind           { return b.kind }
func (b Base) Timestamp() time.Time { return b.timestamp }

// Handler receives events published by a session. Handlers run inline and
// should not block.
type Handler func(Event)

func NoopHandler(Event) {}
