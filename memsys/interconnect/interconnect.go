// Package interconnect models the shared on-chip fabric a bank request
// crosses: a topology-aware latency formula plus single-transfer FIFO
// arbitration.
package interconnect

import "github.com/archfab/fabricsim/sim"

// Topology is advisory at the latency-model level: both report in the
// configuration, but the formula in Latency is used for either.
type Topology int

const (
	Bus Topology = iota
	Mesh
)

// ParseTopology parses one of the configuration document's enum strings.
func ParseTopology(s string) (Topology, bool) {
	switch s {
	case "bus":
		return Bus, true
	case "mesh":
		return Mesh, true
	default:
		return 0, false
	}
}

// DefaultDataSize is the transfer size assumed for a request that does not
// specify one explicitly: one cache line.
const DefaultDataSize uint32 = 64

// Latency computes base_latency + ceil(dataSize/linkWidth), plus
// remotePenalty if the request crosses a chiplet boundary.
func Latency(dataSize, baseLatency, linkWidth, remotePenalty uint32, sameChiplet bool) uint32 {
	lat := baseLatency + ceilDiv(dataSize, linkWidth)
	if !sameChiplet {
		lat += remotePenalty
	}
	return lat
}

func ceilDiv(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return (a + b - 1) / b
}

// Interconnect is the shared fabric: one transfer at a time, FIFO
// arbitrated, with busyUntil tracking the current transfer's completion.
type Interconnect struct {
	Topology      Topology
	BaseLatency   uint32
	LinkWidth     uint32
	RemotePenalty uint32

	busyUntil  sim.Cycle
	busyCycles uint64
}

// New creates an Interconnect with the given parameters.
func New(topology Topology, baseLatency, linkWidth, remotePenalty uint32) *Interconnect {
	return &Interconnect{
		Topology:      topology,
		BaseLatency:   baseLatency,
		LinkWidth:     linkWidth,
		RemotePenalty: remotePenalty,
	}
}

// Transfer arbitrates one DefaultDataSize transfer arriving at now. It
// reports whether the fabric was already busy (a conflict) and accumulates
// busy-cycle utilization regardless.
func (ic *Interconnect) Transfer(now sim.Cycle, sameChiplet bool) (completion sim.Cycle, conflict bool) {
	lat := Latency(DefaultDataSize, ic.BaseLatency, ic.LinkWidth, ic.RemotePenalty, sameChiplet)

	start := now
	conflict = now < ic.busyUntil
	if conflict {
		start = ic.busyUntil
	}

	completion = start + sim.Cycle(lat)
	ic.busyCycles += uint64(lat)
	ic.busyUntil = completion
	return completion, conflict
}

// BusyCycles returns the cumulative cycles the fabric has spent in transfer.
func (ic *Interconnect) BusyCycles() uint64 {
	return ic.busyCycles
}
