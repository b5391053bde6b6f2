package orchestrator

import "github.com/archfab/fabricsim/sim"

type taskReadyEvent struct {
	sim.EventBase
	InstanceID int
}

type taskDispatchedEvent struct {
	sim.EventBase
	InstanceID int
}

type computeDoneEvent struct {
	sim.EventBase
	InstanceID int
}

type memReqIssuedEvent struct {
	sim.EventBase
	InstanceID int
}

type memRespDoneEvent struct {
	sim.EventBase
	InstanceID    int
	CachePortHeld bool
}

type taskDoneEvent struct {
	sim.EventBase
	InstanceID int
}

func (s *Simulator) newTaskReady(t sim.Cycle, iid int) sim.Event {
	return taskReadyEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid}
}

func (s *Simulator) newTaskDispatched(t sim.Cycle, iid int) sim.Event {
	return taskDispatchedEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid}
}

func (s *Simulator) newComputeDone(t sim.Cycle, iid int) sim.Event {
	return computeDoneEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid}
}

func (s *Simulator) newMemReqIssued(t sim.Cycle, iid int) sim.Event {
	return memReqIssuedEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid}
}

func (s *Simulator) newMemRespDone(t sim.Cycle, iid int, cachePortHeld bool) sim.Event {
	return memRespDoneEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid, CachePortHeld: cachePortHeld}
}

func (s *Simulator) newTaskDone(t sim.Cycle, iid int) sim.Event {
	return taskDoneEvent{EventBase: sim.NewEventBase(t, s), InstanceID: iid}
}
