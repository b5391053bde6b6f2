package stats

import (
	"fmt"
	"strings"
)

// String renders the report as the human-readable text printed to stdout
// alongside the structured document.
func (r Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "makespan: %d cycles (%.9fs)\n", r.MakespanCycles, r.MakespanSeconds)
	fmt.Fprintf(&b, "tasks completed: %d\n", r.TotalTasksCompleted)
	fmt.Fprintf(&b, "avg task latency: %.2f cycles, avg wait: %.2f cycles\n",
		r.AvgTaskLatencyCycles, r.AvgTaskWaitCycles)

	fmt.Fprintf(&b, "core utilization: avg %.2f%%\n", r.AvgCoreUtilization*100)
	for i, u := range r.CoreUtilization {
		fmt.Fprintf(&b, "  core %d: %.2f%% (%d busy cycles)\n", i, u*100, r.CoreBusyCycles[i])
	}

	fmt.Fprintf(&b, "memory: dtcm_hits=%d cache_hits=%d cache_misses=%d main_memory_accesses=%d\n",
		r.MemoryAccesses.DTCMHits, r.MemoryAccesses.CacheHits,
		r.MemoryAccesses.CacheMisses, r.MemoryAccesses.MainMemoryAccesses)

	fmt.Fprintf(&b, "interconnect: busy_cycles=%d utilization=%.2f%%\n",
		r.InterconnectBusyCycles, r.InterconnectUtilization*100)

	fmt.Fprintf(&b, "conflicts: bank=%d cache_port=%d bank_port=%d intra_chiplet=%d inter_chiplet=%d\n",
		r.Conflicts.BankConflicts, r.Conflicts.CachePortConflicts, r.Conflicts.BankPortConflicts,
		r.Conflicts.IntraChipletConflicts, r.Conflicts.InterChipletConflicts)

	return b.String()
}
