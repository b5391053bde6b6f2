// Package stats accumulates per-run counters as the orchestrator dispatches
// events, and renders them into a structured document and a human-readable
// report once the run completes.
package stats

import (
	"encoding/json"
	"os"

	"github.com/tebeka/atexit"

	"github.com/archfab/fabricsim/sim"
)

// Collector accumulates the counters named by the structured document:
// per-core busy cycles, task latency/wait samples, memory-tier hit/miss
// counts, and conflict counts split by site and chiplet locality.
type Collector struct {
	runID string

	freqGHz float64

	coreBusyCycles []uint64

	tasksCompleted uint64
	taskLatencies  []uint64
	taskWaits      []uint64

	dtcmHits           uint64
	cacheHits          uint64
	cacheMisses        uint64
	mainMemoryAccesses uint64

	bankConflicts         uint64
	cachePortConflicts    uint64
	bankPortConflicts     uint64
	intraChipletConflicts uint64
	interChipletConflicts uint64

	writtenTo string
}

// New creates a Collector for a run over numCores cores clocked at freqGHz.
func New(numCores int, freqGHz float64) *Collector {
	return &Collector{
		runID:          sim.NewRunID(),
		freqGHz:        freqGHz,
		coreBusyCycles: make([]uint64, numCores),
	}
}

// RunID returns the opaque id tagging this run in logs.
func (c *Collector) RunID() string {
	return c.runID
}

// RecordCoreBusy adds cycles to a core's busy-cycle accumulator.
func (c *Collector) RecordCoreBusy(core int, cycles uint64) {
	c.coreBusyCycles[core] += cycles
}

// RecordTaskDone records one completed instance's latency and wait.
func (c *Collector) RecordTaskDone(latency, wait uint64) {
	c.tasksCompleted++
	c.taskLatencies = append(c.taskLatencies, latency)
	c.taskWaits = append(c.taskWaits, wait)
}

func (c *Collector) RecordDTCMHit()              { c.dtcmHits++ }
func (c *Collector) RecordCacheHit()             { c.cacheHits++ }
func (c *Collector) RecordCacheMiss()            { c.cacheMisses++ }
func (c *Collector) RecordMainMemoryAccess()     { c.mainMemoryAccesses++ }
func (c *Collector) RecordBankConflict()         { c.bankConflicts++ }
func (c *Collector) RecordCachePortConflict()    { c.cachePortConflicts++ }
func (c *Collector) RecordBankPortConflict()     { c.bankPortConflicts++ }
func (c *Collector) RecordIntraChipletConflict() { c.intraChipletConflicts++ }
func (c *Collector) RecordInterChipletConflict() { c.interChipletConflicts++ }

func avg(samples []uint64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var total uint64
	for _, s := range samples {
		total += s
	}
	return float64(total) / float64(len(samples))
}

// Report renders the accumulated counters into the structured document.
// makespan and interconnectBusyCycles are supplied by the caller because
// the collector does not own the engine or the interconnect.
func (c *Collector) Report(makespan sim.Cycle, interconnectBusyCycles uint64) Report {
	ms := uint64(makespan)

	util := make([]float64, len(c.coreBusyCycles))
	var totalUtil float64
	for i, busy := range c.coreBusyCycles {
		if ms > 0 {
			util[i] = float64(busy) / float64(ms)
		}
		totalUtil += util[i]
	}

	avgUtil := 0.0
	if len(util) > 0 {
		avgUtil = totalUtil / float64(len(util))
	}

	icUtil := 0.0
	if ms > 0 {
		icUtil = float64(interconnectBusyCycles) / float64(ms)
	}

	seconds := 0.0
	if c.freqGHz > 0 {
		seconds = float64(ms) / (c.freqGHz * 1e9)
	}

	return Report{
		MakespanCycles:       ms,
		MakespanSeconds:      seconds,
		CoreUtilization:      util,
		CoreBusyCycles:       append([]uint64(nil), c.coreBusyCycles...),
		AvgCoreUtilization:   avgUtil,
		TotalTasksCompleted:  c.tasksCompleted,
		AvgTaskLatencyCycles: avg(c.taskLatencies),
		AvgTaskWaitCycles:    avg(c.taskWaits),
		MemoryAccesses: MemoryAccessReport{
			DTCMHits:           c.dtcmHits,
			CacheHits:          c.cacheHits,
			CacheMisses:        c.cacheMisses,
			MainMemoryAccesses: c.mainMemoryAccesses,
		},
		InterconnectBusyCycles:  interconnectBusyCycles,
		InterconnectUtilization: icUtil,
		Conflicts: ConflictReport{
			BankConflicts:         c.bankConflicts,
			CachePortConflicts:    c.cachePortConflicts,
			BankPortConflicts:     c.bankPortConflicts,
			IntraChipletConflicts: c.intraChipletConflicts,
			InterChipletConflicts: c.interChipletConflicts,
		},
	}
}

// WriteJSON persists the report to path. It is idempotent per path: once a
// report has been written to path, a later call for the same path (e.g.
// from an atexit-registered flush after the normal write path) is a no-op.
func (c *Collector) WriteJSON(path string, makespan sim.Cycle, interconnectBusyCycles uint64) error {
	if c.writtenTo == path {
		return nil
	}

	data, err := json.MarshalIndent(c.Report(makespan, interconnectBusyCycles), "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}

	c.writtenTo = path
	return nil
}

// RegisterAtExitFlush arranges for path to be written once more on process
// exit via atexit.Exit, as a safety net if the normal write path is never
// reached. makespan and interconnectBusyCycles are read lazily so they
// reflect whatever state the run reached.
func (c *Collector) RegisterAtExitFlush(path string, makespan func() sim.Cycle, interconnectBusyCycles func() uint64) {
	atexit.Register(func() {
		_ = c.WriteJSON(path, makespan(), interconnectBusyCycles())
	})
}
