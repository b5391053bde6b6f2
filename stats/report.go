package stats

// Report is the structured document persisted at the end of a run. Field
// names follow the external interface exactly via json tags.
type Report struct {
	MakespanCycles  uint64  `json:"makespan_cycles"`
	MakespanSeconds float64 `json:"makespan_seconds"`

	CoreUtilization    []float64 `json:"core_utilization"`
	CoreBusyCycles     []uint64  `json:"core_busy_cycles"`
	AvgCoreUtilization float64   `json:"avg_core_utilization"`

	TotalTasksCompleted  uint64  `json:"total_tasks_completed"`
	AvgTaskLatencyCycles float64 `json:"avg_task_latency_cycles"`
	AvgTaskWaitCycles    float64 `json:"avg_task_wait_cycles"`

	MemoryAccesses MemoryAccessReport `json:"memory_accesses"`

	InterconnectBusyCycles  uint64  `json:"interconnect_busy_cycles"`
	InterconnectUtilization float64 `json:"interconnect_utilization"`

	Conflicts ConflictReport `json:"conflicts"`
}

// MemoryAccessReport breaks down where every memory op was served.
type MemoryAccessReport struct {
	DTCMHits           uint64 `json:"dtcm_hits"`
	CacheHits          uint64 `json:"cache_hits"`
	CacheMisses        uint64 `json:"cache_misses"`
	MainMemoryAccesses uint64 `json:"main_memory_accesses"`
}

// ConflictReport breaks down structural contention by site and locality.
type ConflictReport struct {
	BankConflicts         uint64 `json:"bank_conflicts"`
	CachePortConflicts    uint64 `json:"cache_port_conflicts"`
	BankPortConflicts     uint64 `json:"bank_port_conflicts"`
	IntraChipletConflicts uint64 `json:"intra_chiplet_conflicts"`
	InterChipletConflicts uint64 `json:"inter_chiplet_conflicts"`
}
