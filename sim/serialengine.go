package sim

import (
	"fmt"
	"reflect"
)

// SerialEngine is the single-threaded cooperative engine described in the
// design: it pops the earliest event, advances the clock to its time, and
// hands it to its handler before looking at the next one. There is no
// concurrency inside Run; every handler runs to completion before the next
// event is even looked at.
type SerialEngine struct {
	HookableBase

	time  Cycle
	queue EventQueue

	paused bool

	simulationEndHandlers []SimulationEndHandler
}

// NewSerialEngine creates an empty SerialEngine.
func NewSerialEngine() *SerialEngine {
	e := new(SerialEngine)
	e.queue = NewEventQueue()
	return e
}

// Schedule registers an event to happen in the future. Scheduling an event
// strictly before the current cycle is a programmer error.
func (e *SerialEngine) Schedule(evt Event) {
	if evt.Time() < e.time {
		panic(fmt.Sprintf(
			"cannot schedule %s at cycle %d: engine is already at cycle %d",
			reflect.TypeOf(evt), evt.Time(), e.time))
	}

	e.queue.Push(evt)
}

// Run drains the event queue. Termination is queue exhaustion, per the
// design's termination rule; there is no other halt condition inside the
// core.
func (e *SerialEngine) Run() error {
	for e.queue.Len() > 0 {
		if e.paused {
			return nil
		}

		evt := e.queue.Pop()
		if evt.Time() < e.time {
			panic(fmt.Sprintf(
				"event-time monotonicity violated: %s at cycle %d, now %d",
				reflect.TypeOf(evt), evt.Time(), e.time))
		}
		e.time = evt.Time()

		hookCtx := HookCtx{Domain: e, Pos: HookPosBeforeEvent, Item: evt}
		e.InvokeHook(hookCtx)

		if err := evt.Handler().Handle(evt); err != nil {
			return err
		}

		hookCtx.Pos = HookPosAfterEvent
		e.InvokeHook(hookCtx)
	}

	return nil
}

// Pause stops Run from processing further events. An already-popped event
// still finishes before Run returns.
func (e *SerialEngine) Pause() {
	e.paused = true
}

// Continue clears the paused flag so a later Run call resumes draining the
// queue.
func (e *SerialEngine) Continue() {
	e.paused = false
}

// CurrentTime returns the cycle of the event most recently handled.
func (e *SerialEngine) CurrentTime() Cycle {
	return e.time
}

// RegisterSimulationEndHandler adds a handler to be invoked by Finished.
func (e *SerialEngine) RegisterSimulationEndHandler(handler SimulationEndHandler) {
	e.simulationEndHandlers = append(e.simulationEndHandlers, handler)
}

// Finished runs every registered SimulationEndHandler. The orchestrator
// calls this once after Run returns, passing the makespan along implicitly
// through CurrentTime.
func (e *SerialEngine) Finished() {
	for _, h := range e.simulationEndHandlers {
		h.Handle(e.time)
	}
}
