package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	name   string
	order  *[]string
	onDone func(now Cycle)
}

func (h *recordingHandler) Handle(evt Event) error {
	*h.order = append(*h.order, h.name)
	if h.onDone != nil {
		h.onDone(evt.Time())
	}
	return nil
}

var _ = Describe("SerialEngine", func() {
	var engine *SerialEngine

	BeforeEach(func() {
		engine = NewSerialEngine()
	})

	It("should handle events in time order regardless of schedule order", func() {
		var order []string
		h1 := &recordingHandler{name: "evt1", order: &order}
		h2 := &recordingHandler{name: "evt2", order: &order}
		h3 := &recordingHandler{name: "evt3", order: &order}
		h4 := &recordingHandler{name: "evt4", order: &order}

		engine.Schedule(fakeEvent{EventBase: NewEventBase(4, h1)})
		engine.Schedule(fakeEvent{EventBase: NewEventBase(2, h2)})
		engine.Schedule(fakeEvent{EventBase: NewEventBase(3, h3)})
		engine.Schedule(fakeEvent{EventBase: NewEventBase(5, h4)})

		Expect(engine.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"evt2", "evt3", "evt1", "evt4"}))
	})

	It("should let a handler chain new events while running", func() {
		var order []string
		var total int
		chain := &recordingHandler{name: "chain", order: &order}
		chain.onDone = func(now Cycle) {
			total++
			if total < 3 {
				engine.Schedule(fakeEvent{EventBase: NewEventBase(now+1, chain)})
			}
		}

		engine.Schedule(fakeEvent{EventBase: NewEventBase(0, chain)})
		Expect(engine.Run()).To(Succeed())
		Expect(total).To(Equal(3))
		Expect(engine.CurrentTime()).To(Equal(Cycle(2)))
	})

	It("should panic when scheduling an event in the past", func() {
		var order []string
		engine.Schedule(fakeEvent{EventBase: NewEventBase(5, &recordingHandler{name: "h", order: &order})})
		Expect(engine.Run()).To(Succeed())

		Expect(func() {
			engine.Schedule(fakeEvent{EventBase: NewEventBase(1, &recordingHandler{name: "h", order: &order})})
		}).To(Panic())
	})

	It("should stop processing once paused", func() {
		var order []string
		engine.Pause()
		engine.Schedule(fakeEvent{EventBase: NewEventBase(0, &recordingHandler{name: "h", order: &order})})
		Expect(engine.Run()).To(Succeed())
		Expect(order).To(BeEmpty())
	})

	It("should resume draining the queue after Continue", func() {
		var order []string
		engine.Pause()
		engine.Schedule(fakeEvent{EventBase: NewEventBase(0, &recordingHandler{name: "h", order: &order})})
		Expect(engine.Run()).To(Succeed())
		Expect(order).To(BeEmpty())

		engine.Continue()
		Expect(engine.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"h"}))
	})

	It("should invoke every registered SimulationEndHandler exactly once, with the final cycle", func() {
		var order []string
		engine.Schedule(fakeEvent{EventBase: NewEventBase(3, &recordingHandler{name: "h", order: &order})})
		Expect(engine.Run()).To(Succeed())

		var seen []Cycle
		engine.RegisterSimulationEndHandler(recordingEndHandler{seen: &seen})
		engine.RegisterSimulationEndHandler(recordingEndHandler{seen: &seen})
		engine.Finished()

		Expect(seen).To(Equal([]Cycle{3, 3}))
	})
})

type recordingEndHandler struct {
	seen *[]Cycle
}

func (h recordingEndHandler) Handle(now Cycle) {
	*h.seen = append(*h.seen, now)
}
