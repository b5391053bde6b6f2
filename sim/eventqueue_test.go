package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeEvent struct {
	EventBase
}

var _ = Describe("EventQueueImpl", func() {
	var queue *EventQueueImpl

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop in time order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			t := Cycle(rand.Intn(1000))
			queue.Push(fakeEvent{EventBase: NewEventBase(t, nil)})
		}

		var now Cycle
		for i := 0; i < numEvents; i++ {
			evt := queue.Pop()
			Expect(evt.Time() >= now).To(BeTrue())
			now = evt.Time()
		}
		Expect(queue.Len()).To(Equal(0))
	})

	It("should break ties on insertion order", func() {
		first := fakeEvent{EventBase: NewEventBase(5, nil)}
		second := fakeEvent{EventBase: NewEventBase(5, nil)}
		queue.Push(first)
		queue.Push(second)

		Expect(queue.Pop().Seq()).To(Equal(first.Seq()))
		Expect(queue.Pop().Seq()).To(Equal(second.Seq()))
	})

	It("should peek without removing", func() {
		queue.Push(fakeEvent{EventBase: NewEventBase(3, nil)})
		Expect(queue.Peek().Time()).To(Equal(Cycle(3)))
		Expect(queue.Len()).To(Equal(1))
	})
})
