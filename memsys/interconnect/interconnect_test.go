package interconnect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archfab/fabricsim/memsys/interconnect"
	"github.com/archfab/fabricsim/sim"
)

func TestLatencyFormulaSameChiplet(t *testing.T) {
	lat := interconnect.Latency(64, 10, 8, 5, true)
	assert.Equal(t, uint32(10+8), lat) // ceil(64/8) = 8, no remote penalty
}

func TestLatencyFormulaRemoteChiplet(t *testing.T) {
	lat := interconnect.Latency(64, 10, 8, 5, false)
	assert.Equal(t, uint32(10+8+5), lat)
}

func TestTransferAccumulatesBusyCycles(t *testing.T) {
	ic := interconnect.New(interconnect.Bus, 10, 8, 0)
	completion, conflict := ic.Transfer(0, true)
	assert.False(t, conflict)
	assert.Equal(t, sim.Cycle(18), completion)
	assert.Equal(t, uint64(18), ic.BusyCycles())
}

func TestTransferConflictsWhileBusy(t *testing.T) {
	ic := interconnect.New(interconnect.Bus, 10, 8, 0)
	ic.Transfer(0, true)
	_, conflict := ic.Transfer(5, true)
	assert.True(t, conflict)
}
