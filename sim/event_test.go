package sim_test

import (
	"fmt"
	"math/rand"

	"github.com/archfab/fabricsim/sim"
)

type splitEvent struct {
	sim.EventBase
}

type splitHandler struct {
	total  int
	engine sim.Engine
	rng    *rand.Rand
}

func (h *splitHandler) Handle(evt sim.Event) error {
	h.total++
	now := evt.Time()

	for i := 0; i < 2; i++ {
		delay := sim.Cycle(h.rng.Intn(3) + 1)
		next := now + delay
		if next < 10 {
			h.engine.Schedule(splitEvent{EventBase: sim.NewEventBase(next, h)})
		}
	}

	return nil
}

// ExampleEvent shows the minimal handler/event/engine wiring: each handled
// event schedules up to two more events on itself, splitting a population
// until the horizon is reached.
func ExampleEvent() {
	engine := sim.NewSerialEngine()
	h := &splitHandler{engine: engine, rng: rand.New(rand.NewSource(1))}

	engine.Schedule(splitEvent{EventBase: sim.NewEventBase(0, h)})

	err := engine.Run()
	if err != nil {
		panic(err)
	}

	fmt.Printf("handled at least one event: %v\n", h.total > 0)
	// Output: handled at least one event: true
}
