package orchestrator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/dag"
	"github.com/archfab/fabricsim/memsys/bank"
	"github.com/archfab/fabricsim/memsys/interconnect"
	"github.com/archfab/fabricsim/orchestrator"
	"github.com/archfab/fabricsim/scheduler"
)

func baseConfig(cores, chiplets int) *config.Config {
	return &config.Config{
		Cores:        cores,
		Chiplets:     chiplets,
		FrequencyGHz: 1.0,
		MemoryBanks: config.MemoryBanksConfig{
			Count:                1,
			ServiceLatencyCycles: 50,
			PortLimit:            0,
		},
		Interconnect: config.InterconnectConfig{
			BaseLatencyCycles:      10,
			LinkWidthBytesPerCycle: 8,
		},
		Resolved: config.Resolved{
			Policy:         scheduler.FIFO,
			BankIndexFn:    bank.AddrModN,
			ConflictPolicy: bank.Serialize,
			Topology:       interconnect.Bus,
		},
	}
}

func TestSingleComputeOp(t *testing.T) {
	cfg := baseConfig(1, 1)
	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 10}}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	makespan, err := s.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 10, makespan)

	report := s.Report()
	assert.Equal(t, []float64{1.0}, report.CoreUtilization)
	assert.Equal(t, uint64(1), report.TotalTasksCompleted)
	assert.InDelta(t, 10.0, report.AvgTaskLatencyCycles, 1e-9)
}

func TestLinearChain(t *testing.T) {
	cfg := baseConfig(1, 1)
	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 5}}},
		{ID: 1, Executions: 1, Deps: []int{0}, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 5}}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	makespan, err := s.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 10, makespan)

	t1 := graph.Instance(1)
	assert.EqualValues(t, 5, t1.ReadyTime)
	assert.EqualValues(t, 10, t1.DoneTime)
}

func TestFanoutWithMultiplicity(t *testing.T) {
	cfg := baseConfig(2, 1)
	tasks := []*dag.Task{
		{ID: 0, Executions: 2, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 4}}},
		{ID: 1, Executions: 1, Deps: []int{0}, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 4}}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	makespan, err := s.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 8, makespan)

	t1 := graph.Instance(2)
	assert.EqualValues(t, 4, t1.ReadyTime)
	assert.EqualValues(t, 8, t1.DoneTime)
}

func TestDTCMHitMakespan(t *testing.T) {
	cfg := baseConfig(1, 1)
	cfg.DTCM = config.DTCMConfig{Enabled: true, SizeBytes: 0x1000, LatencyCycles: 1}
	cfg.Resolved.DTCMBaseAddress = 0x80000000

	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Ops: []dag.Op{{Kind: dag.OpMemory, Address: 0x80000040, Access: dag.Read}}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	makespan, err := s.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 1, makespan)
	assert.Equal(t, uint64(1), s.Report().MemoryAccesses.DTCMHits)
}

func TestCacheMissThenHitMakespan(t *testing.T) {
	cfg := baseConfig(1, 1)
	cfg.Cache = config.CacheConfig{Enabled: true, SizeBytes: 64, HitLatencyCycles: 2, PortLimit: 0}

	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Ops: []dag.Op{
			{Kind: dag.OpMemory, Address: 0x100, Access: dag.Read},
			{Kind: dag.OpMemory, Address: 0x100, Access: dag.Read},
		}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	makespan, err := s.Run()
	require.NoError(t, err)

	assert.EqualValues(t, 70, makespan)

	report := s.Report()
	assert.Equal(t, uint64(1), report.MemoryAccesses.CacheHits)
	assert.Equal(t, uint64(1), report.MemoryAccesses.CacheMisses)
}

func TestRegisterStatsFlushWritesOnCompletion(t *testing.T) {
	cfg := baseConfig(1, 1)
	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 10}}},
	}

	graph, err := dag.Build(tasks)
	require.NoError(t, err)

	s := orchestrator.New(cfg, graph)
	path := filepath.Join(t.TempDir(), "stats.json")
	s.RegisterStatsFlush(path)

	makespan, err := s.Run()
	require.NoError(t, err)
	require.NoError(t, s.FlushErr())
	assert.EqualValues(t, 10, makespan)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"makespan_cycles": 10`)
}

func TestCycleDetectionFailsBuild(t *testing.T) {
	tasks := []*dag.Task{
		{ID: 0, Executions: 1, Deps: []int{1}},
		{ID: 1, Executions: 1, Deps: []int{0}},
	}

	_, err := dag.Build(tasks)
	require.Error(t, err)

	var cycleErr *dag.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Error(), "0")
	assert.Contains(t, cycleErr.Error(), "1")
}
