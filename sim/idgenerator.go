package sim

import (
	"sync/atomic"

	"github.com/rs/xid"
)

var seqCounter uint64

// NextSeq returns a monotonically increasing sequence number. The event
// queue uses it as a stable tie-break for events scheduled at the same
// cycle, which keeps a run byte-identical across executions.
func NextSeq() uint64 {
	return atomic.AddUint64(&seqCounter, 1)
}

// ResetSeq restarts the sequence counter. Useful between independent runs in
// the same process, e.g. in tests, so each run's tie-break order starts from
// a known point.
func ResetSeq() {
	atomic.StoreUint64(&seqCounter, 0)
}

// NewRunID returns a short opaque identifier used to tag a simulation run in
// logs when several runs write to the same directory. It has no bearing on
// simulated behavior or on the tie-break order above.
func NewRunID() string {
	return xid.New().String()
}
