package scheduler

import (
	"fmt"

	"github.com/archfab/fabricsim/dag"
)

// Scheduler owns the ready queue, the per-core idle bitmap, and the
// round-robin cursor used for idle-core selection.
type Scheduler struct {
	policy Policy
	graph  *dag.Graph

	ready []int
	idle  []bool

	rrCursor int
}

// New creates a Scheduler with every core initially idle.
func New(policy Policy, numCores int, graph *dag.Graph) *Scheduler {
	idle := make([]bool, numCores)
	for i := range idle {
		idle[i] = true
	}
	return &Scheduler{policy: policy, graph: graph, idle: idle}
}

// HasReady reports whether any instance is waiting in the ready queue.
func (s *Scheduler) HasReady() bool {
	return len(s.ready) > 0
}

// AddReady appends an instance to the ready queue in arrival order.
func (s *Scheduler) AddReady(iid int) {
	s.ready = append(s.ready, iid)
}

// SelectNextInstance removes and returns the instance the configured
// policy picks next. FIFO and RoundRobin both take the head of the queue;
// RoundRobin's fairness comes entirely from SelectIdleCore.
func (s *Scheduler) SelectNextInstance() (int, bool) {
	if len(s.ready) == 0 {
		return 0, false
	}

	if s.policy != ShortestOpsFirst {
		iid := s.ready[0]
		s.ready = s.ready[1:]
		return iid, true
	}

	bestIdx := 0
	bestRemaining := s.remainingOps(s.ready[0])
	for i := 1; i < len(s.ready); i++ {
		if r := s.remainingOps(s.ready[i]); r < bestRemaining {
			bestRemaining = r
			bestIdx = i
		}
	}

	iid := s.ready[bestIdx]
	s.ready = append(s.ready[:bestIdx], s.ready[bestIdx+1:]...)
	return iid, true
}

func (s *Scheduler) remainingOps(iid int) int {
	inst := s.graph.Instance(iid)
	return len(s.graph.Ops(inst.TaskID)) - inst.Cursor
}

// SelectIdleCore scans cores starting at the round-robin cursor and returns
// the first idle one, advancing the cursor one past it. It does not mark
// the core busy; call Dispatch for that.
func (s *Scheduler) SelectIdleCore() (int, bool) {
	n := len(s.idle)
	for i := 0; i < n; i++ {
		c := (s.rrCursor + i) % n
		if s.idle[c] {
			s.rrCursor = (c + 1) % n
			return c, true
		}
	}
	return 0, false
}

// Dispatch marks a core busy. Dispatching to a non-idle core is a
// programmer error.
func (s *Scheduler) Dispatch(core int) {
	if !s.idle[core] {
		panic(fmt.Sprintf("scheduler: dispatch to already-busy core %d", core))
	}
	s.idle[core] = false
}

// ReleaseCore marks a core idle again.
func (s *Scheduler) ReleaseCore(core int) {
	if s.idle[core] {
		panic(fmt.Sprintf("scheduler: release of already-idle core %d", core))
	}
	s.idle[core] = true
}
