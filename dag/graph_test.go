package dag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archfab/fabricsim/dag"
)

func TestBuildLinearChain(t *testing.T) {
	tasks := []*dag.Task{
		{ID: 0, Name: "T0", Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 5}}},
		{ID: 1, Name: "T1", Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 5}}, Deps: []int{0}},
	}

	g, err := dag.Build(tasks)
	require.NoError(t, err)
	require.Equal(t, 2, g.NumInstances())

	assert.Equal(t, []int{0}, g.ReadyInstances())

	newlyReady := g.MarkComplete(0)
	assert.Equal(t, []int{1}, newlyReady)
	assert.Equal(t, 0, g.Instance(1).InDegree)
}

func TestBuildFanoutWithMultiplicity(t *testing.T) {
	tasks := []*dag.Task{
		{ID: 0, Name: "T0", Executions: 2, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 4}}},
		{ID: 1, Name: "T1", Executions: 1, Ops: []dag.Op{{Kind: dag.OpCompute, Cycles: 4}}, Deps: []int{0}},
	}

	g, err := dag.Build(tasks)
	require.NoError(t, err)
	require.Equal(t, 3, g.NumInstances())

	t1 := g.Instance(2)
	assert.Equal(t, 1, t1.TaskID)
	assert.Equal(t, 2, t1.InDegree)

	assert.Empty(t, g.MarkComplete(0))
	newlyReady := g.MarkComplete(1)
	assert.Equal(t, []int{2}, newlyReady)
}

func TestBuildDetectsCycle(t *testing.T) {
	tasks := []*dag.Task{
		{ID: 0, Name: "T0", Executions: 1, Deps: []int{1}},
		{ID: 1, Name: "T1", Executions: 1, Deps: []int{0}},
	}

	_, err := dag.Build(tasks)
	require.Error(t, err)

	var cycleErr *dag.CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Contains(t, cycleErr.Path, 0)
	assert.Contains(t, cycleErr.Path, 1)
}

func TestReadyInstancesOnlyInitialRoots(t *testing.T) {
	tasks := []*dag.Task{
		{ID: 0, Name: "T0", Executions: 1},
		{ID: 1, Name: "T1", Executions: 1, Deps: []int{0}},
	}

	g, err := dag.Build(tasks)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, g.ReadyInstances())
}
