package sim

import "container/heap"

// EventQueue is a time-ordered queue of events. The engine is single
// threaded (see SerialEngine), so no implementation here needs locking.
type EventQueue interface {
	Push(evt Event)
	Pop() Event
	Len() int
	Peek() Event
}

// EventQueueImpl is a min-heap ordered by (Time, Seq) ascending. Seq breaks
// ties between events scheduled for the same cycle deterministically.
type EventQueueImpl struct {
	events eventHeap
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueueImpl {
	q := new(EventQueueImpl)
	q.events = make([]Event, 0)
	heap.Init(&q.events)
	return q
}

// Push adds an event to the queue.
func (q *EventQueueImpl) Push(evt Event) {
	heap.Push(&q.events, evt)
}

// Pop removes and returns the earliest event.
func (q *EventQueueImpl) Pop() Event {
	return heap.Pop(&q.events).(Event)
}

// Len returns the number of events still in the queue.
func (q *EventQueueImpl) Len() int {
	return q.events.Len()
}

// Peek returns the earliest event without removing it.
func (q *EventQueueImpl) Peek() Event {
	return q.events[0]
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

// Less breaks ties on Seq so that two events scheduled for the same cycle
// are always ordered by insertion order, keeping runs deterministic.
func (h eventHeap) Less(i, j int) bool {
	if h[i].Time() != h[j].Time() {
		return h[i].Time() < h[j].Time()
	}
	return h[i].Seq() < h[j].Seq()
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *eventHeap) Push(x interface{}) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	event := old[n-1]
	*h = old[0 : n-1]
	return event
}
