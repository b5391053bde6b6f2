// Package sim provides the primitives of the cycle-level discrete-event
// engine: the event type, the time-ordered queue, and the engine that drains
// it. Domain packages build the fabric simulation on top of these.
package sim

// Cycle is the simulated time unit. The engine never advances it except by
// jumping directly to the time of the next popped event.
type Cycle uint64

// An Event is something scheduled to happen at a future cycle.
type Event interface {
	// Time returns the cycle at which the event should be handled.
	Time() Cycle

	// Handler returns the handler responsible for this event.
	Handler() Handler

	// Seq returns the insertion sequence number, used to break ties between
	// events scheduled for the same cycle.
	Seq() uint64
}

// EventBase provides the common fields and getters used by concrete event
// types.
type EventBase struct {
	time    Cycle
	handler Handler
	seq     uint64
}

// NewEventBase creates an EventBase for the given time and handler. The
// sequence number is taken from NextSeq at construction, so that events
// created earlier sort before events created later at the same cycle.
func NewEventBase(t Cycle, handler Handler) EventBase {
	return EventBase{
		time:    t,
		handler: handler,
		seq:     NextSeq(),
	}
}

// Time returns the cycle the event is scheduled for.
func (e EventBase) Time() Cycle {
	return e.time
}

// Handler returns the handler registered to process the event.
func (e EventBase) Handler() Handler {
	return e.handler
}

// Seq returns the insertion sequence number.
func (e EventBase) Seq() uint64 {
	return e.seq
}

// A Handler processes events. Every event is bound to exactly one Handler.
type Handler interface {
	Handle(e Event) error
}
