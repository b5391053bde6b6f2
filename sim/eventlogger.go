package sim

import (
	"log"
	"reflect"
)

// EventLogger is a hook that prints every event as it is about to be
// handled. Wiring it into an Engine is the cheapest way to get a trace of a
// run without touching the Stats collector.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns an EventLogger writing to the given logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event's cycle and type to the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	h.Logger.Printf("%d, %s", evt.Time(), reflect.TypeOf(evt))
}
