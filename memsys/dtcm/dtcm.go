// Package dtcm implements the per-core scratchpad: a fixed address window
// with constant-latency access and no capacity pressure or eviction.
package dtcm

// DTCM is a single contiguous address window [Base, Base+Size).
type DTCM struct {
	Base    uint64
	Size    uint64
	Latency uint32
}

// New creates a DTCM covering [base, base+size) with the given fixed access
// latency.
func New(base, size uint64, latency uint32) *DTCM {
	return &DTCM{Base: base, Size: size, Latency: latency}
}

// InRange reports whether addr falls inside the scratchpad's window.
func (d *DTCM) InRange(addr uint64) bool {
	return addr >= d.Base && addr < d.Base+d.Size
}
