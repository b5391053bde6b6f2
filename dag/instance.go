package dag

import "github.com/archfab/fabricsim/sim"

// Instance is one runtime occurrence of a Task. A task with multiplicity k
// produces k instances sharing the task's op list but owning their own
// cursor, in-degree, and timestamps.
type Instance struct {
	InstanceID int
	TaskID     int

	Cursor   int
	InDegree int

	ReadyTime    sim.Cycle
	DispatchTime sim.Cycle
	DoneTime     sim.Cycle

	Successors []int
}
