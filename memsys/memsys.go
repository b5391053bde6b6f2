// Package memsys routes a memory request through the tiered hierarchy:
// DTCM, then cache, then the banked main-memory path over the
// interconnect. It computes a deterministic completion cycle at dispatch
// time (the fast-path design: bank and interconnect contention is reflected
// in counters, not in the scheduled completion of the request that hit it).
package memsys

import (
	"github.com/archfab/fabricsim/memsys/bank"
	"github.com/archfab/fabricsim/memsys/cache"
	"github.com/archfab/fabricsim/memsys/dtcm"
	"github.com/archfab/fabricsim/memsys/interconnect"
	"github.com/archfab/fabricsim/sim"
)

// Outcome summarizes what happened to one request, for the orchestrator to
// fold into the stats collector and to know whether to release a cache
// port once the response completes.
type Outcome struct {
	Completion sim.Cycle

	DTCMHit          bool
	CacheHit         bool
	CacheMiss        bool
	MainMemoryAccess bool

	BankConflict      bool
	BankPortConflict  bool
	CachePortConflict bool
	IntraChiplet      bool
	InterChiplet      bool

	CachePortAcquired bool
}

// MemorySystem wires the tiers together. DTCM and Cache are nil when
// disabled by configuration.
type MemorySystem struct {
	DTCM         *dtcm.DTCM
	Cache        *cache.Cache
	Banks        []*bank.Bank
	Interconnect *interconnect.Interconnect
	IndexFn      bank.IndexFn
	NumChiplets  int
}

// New creates a MemorySystem from its already-constructed tiers.
func New(
	d *dtcm.DTCM,
	c *cache.Cache,
	banks []*bank.Bank,
	ic *interconnect.Interconnect,
	indexFn bank.IndexFn,
	numChiplets int,
) *MemorySystem {
	return &MemorySystem{
		DTCM:         d,
		Cache:        c,
		Banks:        banks,
		Interconnect: ic,
		IndexFn:      indexFn,
		NumChiplets:  numChiplets,
	}
}

func chipletOf(id, numChiplets int) int {
	if numChiplets <= 0 {
		return 0
	}
	return id % numChiplets
}

// IssueRequest routes one request from coreID at cycle now through the
// hierarchy and returns its outcome, including the cycle its MemRespDone
// should be scheduled at.
func (m *MemorySystem) IssueRequest(addr uint64, coreID int, now sim.Cycle) Outcome {
	if m.DTCM != nil && m.DTCM.InRange(addr) {
		return Outcome{
			Completion: now + sim.Cycle(m.DTCM.Latency),
			DTCMHit:    true,
		}
	}

	var outcome Outcome

	if m.Cache != nil {
		if !m.Cache.AcquirePort() {
			outcome.CachePortConflict = true
			// The cache is core-local: a port conflict never crosses a
			// chiplet boundary.
			outcome.IntraChiplet = true
		} else {
			outcome.CachePortAcquired = true
		}

		if m.Cache.Lookup(addr) {
			outcome.CacheHit = true
			outcome.Completion = now + sim.Cycle(m.Cache.HitLatency())
			return outcome
		}

		m.Cache.Insert(addr)
		outcome.CacheMiss = true
	}

	outcome.MainMemoryAccess = true

	bankID := bank.Index(addr, len(m.Banks), m.IndexFn)
	b := m.Banks[bankID]

	srcChiplet := chipletOf(coreID, m.NumChiplets)
	dstChiplet := b.Chiplet
	sameChiplet := srcChiplet == dstChiplet

	_, icConflict := m.Interconnect.Transfer(now, sameChiplet)
	bankResult := b.ServiceRequest(now)

	latency := interconnect.Latency(
		interconnect.DefaultDataSize,
		m.Interconnect.BaseLatency,
		m.Interconnect.LinkWidth,
		m.Interconnect.RemotePenalty,
		sameChiplet,
	)
	outcome.Completion = now + sim.Cycle(latency) + sim.Cycle(b.ServiceLatency())

	outcome.BankConflict = bankResult.Conflict
	outcome.BankPortConflict = bankResult.PortConflict

	if anyConflict := bankResult.Conflict || bankResult.PortConflict || icConflict; anyConflict {
		if sameChiplet {
			outcome.IntraChiplet = true
		} else {
			outcome.InterChiplet = true
		}
	}

	return outcome
}

// ReleaseCachePort returns a port acquired by a request whose
// CachePortAcquired outcome was true, once that request's response has
// been delivered.
func (m *MemorySystem) ReleaseCachePort() {
	if m.Cache != nil {
		m.Cache.ReleasePort()
	}
}

// InterconnectBusyCycles returns the cumulative interconnect utilization,
// for the final report.
func (m *MemorySystem) InterconnectBusyCycles() uint64 {
	if m.Interconnect == nil {
		return 0
	}
	return m.Interconnect.BusyCycles()
}
