package orchestration

import "github.com/koscakluka/ema-chat/core/events"

type eventEmitter func(events.Event)

func (s *Session) emit(event events.Event) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("event handler panicked", "kind", event.Kind(), "panic", recovered)
		}
	}()
	s.emitEvent(event)
}

func (s *Session) notify(reason events.NoticeReason, severity events.Severity, title, detail string) {
	s.emit(events.NewNotice(reason, severity, title, detail))
}
