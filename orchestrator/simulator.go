// Package orchestrator wires the task DAG, scheduler, cores, and memory
// system to a sim.Engine: it is the only package that knows about every
// other domain package at once, and the only place events are dispatched.
package orchestrator

import (
	"fmt"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/core"
	"github.com/archfab/fabricsim/dag"
	"github.com/archfab/fabricsim/memsys"
	"github.com/archfab/fabricsim/memsys/bank"
	"github.com/archfab/fabricsim/memsys/cache"
	"github.com/archfab/fabricsim/memsys/dtcm"
	"github.com/archfab/fabricsim/memsys/interconnect"
	"github.com/archfab/fabricsim/scheduler"
	"github.com/archfab/fabricsim/sim"
	"github.com/archfab/fabricsim/stats"
)

// InvariantError reports a runtime consistency violation: a bug in the
// orchestrator's own bookkeeping rather than a malformed input.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "invariant: " + e.Msg }

// Simulator owns every mutable component of one run and dispatches the six
// event types described by the design onto them.
type Simulator struct {
	cfg   *config.Config
	graph *dag.Graph

	sched *scheduler.Scheduler
	cores []*core.Core
	mem   *memsys.MemorySystem
	stats *stats.Collector

	engine sim.Engine

	instanceCore map[int]int
	busyStart    map[int]sim.Cycle

	flushErr error
}

// statsFlushHandler adapts a func(sim.Cycle) to sim.SimulationEndHandler, so
// the stats write can be registered with the engine without a dedicated
// named type per callback.
type statsFlushHandler func(now sim.Cycle)

func (h statsFlushHandler) Handle(now sim.Cycle) { h(now) }

// New builds a Simulator over an already-validated configuration and an
// already-built task graph.
func New(cfg *config.Config, graph *dag.Graph) *Simulator {
	cores := make([]*core.Core, cfg.Cores)
	for i := range cores {
		cores[i] = core.NewCore(i)
	}

	var d *dtcm.DTCM
	if cfg.DTCM.Enabled {
		d = dtcm.New(cfg.Resolved.DTCMBaseAddress, uint64(cfg.DTCM.SizeBytes), uint32(cfg.DTCM.LatencyCycles))
	}

	var c *cache.Cache
	if cfg.Cache.Enabled {
		c = cache.MakeBuilder().
			WithCapacityLines(cfg.CacheCapacityLines(cache.LineSize)).
			WithHitLatency(uint32(cfg.Cache.HitLatencyCycles)).
			WithPortLimit(cfg.Cache.PortLimit).
			Build()
	}

	banks := make([]*bank.Bank, cfg.MemoryBanks.Count)
	for i := range banks {
		chiplet := i % cfg.Chiplets
		banks[i] = bank.New(i, chiplet, uint32(cfg.MemoryBanks.ServiceLatencyCycles),
			cfg.MemoryBanks.PortLimit, cfg.Resolved.ConflictPolicy)
	}

	ic := interconnect.New(cfg.Resolved.Topology, uint32(cfg.Interconnect.BaseLatencyCycles),
		uint32(cfg.Interconnect.LinkWidthBytesPerCycle), uint32(cfg.Chiplet.RemotePenaltyCycles))

	mem := memsys.New(d, c, banks, ic, cfg.Resolved.BankIndexFn, cfg.Chiplets)

	return &Simulator{
		cfg:          cfg,
		graph:        graph,
		sched:        scheduler.New(cfg.Resolved.Policy, cfg.Cores, graph),
		cores:        cores,
		mem:          mem,
		stats:        stats.New(cfg.Cores, cfg.FrequencyGHz),
		engine:       sim.NewSerialEngine(),
		instanceCore: make(map[int]int),
		busyStart:    make(map[int]sim.Cycle),
	}
}

// Engine exposes the underlying engine, e.g. so a caller can register a
// verbose trace hook before Run.
func (s *Simulator) Engine() sim.Engine {
	return s.engine
}

// StatsCollector exposes the run's stats collector, e.g. so a caller can
// register an atexit safety-net flush before Run.
func (s *Simulator) StatsCollector() *stats.Collector {
	return s.stats
}

// RegisterStatsFlush arranges for the stats document to be written to path
// the moment the run completes, via the engine's SimulationEndHandler
// mechanism: Run calls Finished() exactly once after the event queue
// drains, and that invokes this handler with the final makespan. A second,
// best-effort write is still registered through atexit as a safety net for
// a process that exits before Run returns (see cmd/fabricsim).
func (s *Simulator) RegisterStatsFlush(path string) {
	s.engine.RegisterSimulationEndHandler(statsFlushHandler(func(now sim.Cycle) {
		s.flushErr = s.stats.WriteJSON(path, now, s.mem.InterconnectBusyCycles())
	}))
}

// FlushErr returns the error, if any, from the SimulationEndHandler
// registered by RegisterStatsFlush. Callers that never call
// RegisterStatsFlush will always see nil here.
func (s *Simulator) FlushErr() error {
	return s.flushErr
}

// Run seeds every in-degree-0 instance as ready at cycle 0 and drains the
// event queue. It returns the makespan: the cycle of the last event
// handled.
func (s *Simulator) Run() (sim.Cycle, error) {
	for _, iid := range s.graph.ReadyInstances() {
		s.engine.Schedule(s.newTaskReady(0, iid))
	}

	if err := s.engine.Run(); err != nil {
		return s.engine.CurrentTime(), err
	}

	s.engine.Finished()
	return s.engine.CurrentTime(), nil
}

// Report renders the accumulated stats into the structured document.
func (s *Simulator) Report() stats.Report {
	return s.stats.Report(s.engine.CurrentTime(), s.mem.InterconnectBusyCycles())
}

// InterconnectBusyCycles returns the interconnect's cumulative utilization
// so far, e.g. for an atexit safety-net flush that must read it lazily.
func (s *Simulator) InterconnectBusyCycles() uint64 {
	return s.mem.InterconnectBusyCycles()
}

// Handle dispatches one popped event to its concrete handler. Every event
// scheduled by this package carries the Simulator itself as its Handler.
func (s *Simulator) Handle(e sim.Event) error {
	now := e.Time()

	switch evt := e.(type) {
	case taskReadyEvent:
		return s.handleTaskReady(now, evt.InstanceID)
	case taskDispatchedEvent:
		return s.handleTaskDispatched(now, evt.InstanceID)
	case computeDoneEvent:
		return s.handleComputeDone(now, evt.InstanceID)
	case memReqIssuedEvent:
		return s.handleMemReqIssued(now, evt.InstanceID)
	case memRespDoneEvent:
		return s.handleMemRespDone(now, evt.InstanceID, evt.CachePortHeld)
	case taskDoneEvent:
		return s.handleTaskDone(now, evt.InstanceID)
	default:
		return &InvariantError{Msg: fmt.Sprintf("unknown event type %T", e)}
	}
}

func (s *Simulator) handleTaskReady(now sim.Cycle, iid int) error {
	inst := s.graph.Instance(iid)
	inst.ReadyTime = now
	s.sched.AddReady(iid)
	s.tryDispatch(now)
	return nil
}

// tryDispatch opportunistically matches ready instances to idle cores until
// either runs out.
func (s *Simulator) tryDispatch(now sim.Cycle) {
	for s.sched.HasReady() {
		cid, ok := s.sched.SelectIdleCore()
		if !ok {
			return
		}

		iid, ok := s.sched.SelectNextInstance()
		if !ok {
			return
		}

		s.sched.Dispatch(cid)
		inst := s.graph.Instance(iid)
		inst.DispatchTime = now

		s.instanceCore[iid] = cid
		s.busyStart[cid] = now

		s.engine.Schedule(s.newTaskDispatched(now, iid))
	}
}

func (s *Simulator) handleTaskDispatched(now sim.Cycle, iid int) error {
	inst := s.graph.Instance(iid)
	ops := s.graph.Ops(inst.TaskID)
	if inst.Cursor >= len(ops) {
		return &InvariantError{Msg: fmt.Sprintf("instance %d dispatched with no remaining ops", iid)}
	}

	cid, ok := s.instanceCore[iid]
	if !ok {
		return &InvariantError{Msg: fmt.Sprintf("instance %d dispatched without an assigned core", iid)}
	}

	action := s.cores[cid].ExecuteOp(iid, ops[inst.Cursor])

	switch action.Kind {
	case core.ActionCompute:
		s.engine.Schedule(s.newComputeDone(now+sim.Cycle(action.Cycles), iid))
	case core.ActionMemory:
		s.engine.Schedule(s.newMemReqIssued(now, iid))
	}

	return nil
}

func (s *Simulator) handleComputeDone(now sim.Cycle, iid int) error {
	return s.completeCurrentOp(now, iid)
}

func (s *Simulator) handleMemReqIssued(now sim.Cycle, iid int) error {
	inst := s.graph.Instance(iid)
	ops := s.graph.Ops(inst.TaskID)
	op := ops[inst.Cursor]

	cid, ok := s.instanceCore[iid]
	if !ok {
		return &InvariantError{Msg: fmt.Sprintf("instance %d issued a memory request without an assigned core", iid)}
	}

	outcome := s.mem.IssueRequest(op.Address, cid, now)
	s.applyOutcomeStats(outcome)

	s.engine.Schedule(s.newMemRespDone(outcome.Completion, iid, outcome.CachePortAcquired))
	return nil
}

func (s *Simulator) handleMemRespDone(now sim.Cycle, iid int, cachePortHeld bool) error {
	if cachePortHeld {
		s.mem.ReleaseCachePort()
	}
	return s.completeCurrentOp(now, iid)
}

// completeCurrentOp advances the instance's cursor past the op that just
// finished and either chains the next op in the same cycle or finalizes the
// instance. Shared by ComputeDone and MemRespDone, the two events that can
// retire an op.
func (s *Simulator) completeCurrentOp(now sim.Cycle, iid int) error {
	inst := s.graph.Instance(iid)
	ops := s.graph.Ops(inst.TaskID)

	cid, ok := s.instanceCore[iid]
	if !ok {
		return &InvariantError{Msg: fmt.Sprintf("instance %d completed an op without an assigned core", iid)}
	}

	inst.Cursor++
	done := inst.Cursor == len(ops)

	s.cores[cid].CompleteOp(iid, done)

	if done {
		inst.DoneTime = now
		s.engine.Schedule(s.newTaskDone(now, iid))
	} else {
		s.engine.Schedule(s.newTaskDispatched(now, iid))
	}

	return nil
}

func (s *Simulator) handleTaskDone(now sim.Cycle, iid int) error {
	inst := s.graph.Instance(iid)

	cid, ok := s.instanceCore[iid]
	if !ok {
		return &InvariantError{Msg: fmt.Sprintf("instance %d finished without an assigned core", iid)}
	}

	s.stats.RecordCoreBusy(cid, uint64(now-s.busyStart[cid]))
	s.stats.RecordTaskDone(uint64(inst.DoneTime-inst.ReadyTime), uint64(inst.DispatchTime-inst.ReadyTime))

	s.sched.ReleaseCore(cid)
	delete(s.instanceCore, iid)
	delete(s.busyStart, cid)

	for _, sid := range s.graph.MarkComplete(iid) {
		s.engine.Schedule(s.newTaskReady(now, sid))
	}

	s.tryDispatch(now)
	return nil
}

func (s *Simulator) applyOutcomeStats(o memsys.Outcome) {
	switch {
	case o.DTCMHit:
		s.stats.RecordDTCMHit()
	case o.CacheHit:
		s.stats.RecordCacheHit()
	case o.CacheMiss:
		s.stats.RecordCacheMiss()
	}

	if o.MainMemoryAccess {
		s.stats.RecordMainMemoryAccess()
	}
	if o.BankConflict {
		s.stats.RecordBankConflict()
	}
	if o.BankPortConflict {
		s.stats.RecordBankPortConflict()
	}
	if o.CachePortConflict {
		s.stats.RecordCachePortConflict()
	}
	if o.IntraChiplet {
		s.stats.RecordIntraChipletConflict()
	}
	if o.InterChiplet {
		s.stats.RecordInterChipletConflict()
	}
}
