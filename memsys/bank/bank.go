// Package bank implements the per-bank request servicing described by the
// memory hierarchy: a FIFO-ish service point whose response to contention
// depends on a configurable conflict policy.
package bank

import "github.com/archfab/fabricsim/sim"

// IndexFn maps an address to a bank index.
type IndexFn int

const (
	AddrModN IndexFn = iota
	XorFold
)

// ParseIndexFn parses one of the configuration document's enum strings.
func ParseIndexFn(s string) (IndexFn, bool) {
	switch s {
	case "addr_mod_n":
		return AddrModN, true
	case "xor_fold":
		return XorFold, true
	default:
		return 0, false
	}
}

// Index computes the bank index for addr under the given function.
// AddrModN operates at line granularity (64 bytes); XorFold folds the
// high bits into the low bits before reducing mod numBanks.
func Index(addr uint64, numBanks int, fn IndexFn) int {
	if numBanks <= 0 {
		return 0
	}

	switch fn {
	case XorFold:
		return int((addr ^ (addr >> 16)) % uint64(numBanks))
	default:
		return int((addr >> 6) % uint64(numBanks))
	}
}

// ConflictPolicy governs how a bank behaves when a new request arrives
// while it is still servicing a previous one.
type ConflictPolicy int

const (
	Serialize ConflictPolicy = iota
	Queue
	ExtraDelay
)

// ParseConflictPolicy parses one of the configuration document's enum
// strings.
func ParseConflictPolicy(s string) (ConflictPolicy, bool) {
	switch s {
	case "serialize":
		return Serialize, true
	case "queue":
		return Queue, true
	case "extra_delay":
		return ExtraDelay, true
	default:
		return 0, false
	}
}

// extraDelayPenalty is the fixed cycle penalty the ExtraDelay policy adds
// on top of the bank's service latency when a request arrives while busy.
const extraDelayPenalty sim.Cycle = 10

// Result is the outcome of servicing one request.
type Result struct {
	Completion   sim.Cycle
	Conflict     bool
	PortConflict bool
}

// Bank is one unit of main memory with its own busy-until clock (and, under
// the Queue policy, its own set of parallel ports).
type Bank struct {
	ID      int
	Chiplet int

	serviceLatency uint32
	portLimit      int
	policy         ConflictPolicy

	busyUntil     sim.Cycle
	portBusyUntil []sim.Cycle
}

// New creates a Bank. portLimit of 0 means unlimited ports under the Queue
// policy; it has no effect under Serialize or ExtraDelay.
func New(id, chiplet int, serviceLatency uint32, portLimit int, policy ConflictPolicy) *Bank {
	b := &Bank{
		ID:             id,
		Chiplet:        chiplet,
		serviceLatency: serviceLatency,
		portLimit:      portLimit,
		policy:         policy,
	}
	if portLimit > 0 {
		b.portBusyUntil = make([]sim.Cycle, portLimit)
	}
	return b
}

// ServiceLatency returns the configured per-request service latency.
func (b *Bank) ServiceLatency() uint32 {
	return b.serviceLatency
}

// ServiceRequest services one request arriving at now, applying the bank's
// conflict policy and returning the completion cycle plus whether the
// request conflicted with in-flight work. Under Serialize and Queue a
// conflicting request is not serviced and no bank state changes; its
// Completion is then the bank's busy-until cycle (Serialize) or now (Queue).
func (b *Bank) ServiceRequest(now sim.Cycle) Result {
	switch b.policy {
	case Queue:
		return b.serviceQueue(now)
	case ExtraDelay:
		return b.serviceExtraDelay(now)
	default:
		return b.serviceSerialize(now)
	}
}

func (b *Bank) serviceSerialize(now sim.Cycle) Result {
	if now >= b.busyUntil {
		completion := now + sim.Cycle(b.serviceLatency)
		b.busyUntil = completion
		return Result{Completion: completion}
	}
	return Result{Completion: b.busyUntil, Conflict: true}
}

func (b *Bank) serviceQueue(now sim.Cycle) Result {
	if b.portLimit <= 0 {
		completion := now + sim.Cycle(b.serviceLatency)
		if completion > b.busyUntil {
			b.busyUntil = completion
		}
		return Result{Completion: completion}
	}

	for i := range b.portBusyUntil {
		if now >= b.portBusyUntil[i] {
			completion := now + sim.Cycle(b.serviceLatency)
			b.portBusyUntil[i] = completion
			if completion > b.busyUntil {
				b.busyUntil = completion
			}
			return Result{Completion: completion}
		}
	}

	return Result{Completion: now, Conflict: true, PortConflict: true}
}

func (b *Bank) serviceExtraDelay(now sim.Cycle) Result {
	completion := now + sim.Cycle(b.serviceLatency)
	conflict := now < b.busyUntil
	if conflict {
		completion += extraDelayPenalty
	}
	b.busyUntil = completion
	return Result{Completion: completion, Conflict: conflict}
}
