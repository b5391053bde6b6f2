// Package dag builds the task-level dependency graph declared by a
// workload and expands it into the instance-level graph the scheduler and
// core automaton actually run against.
package dag

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError reports a cycle found during Graph build. Path is the ordered
// list of task ids from the point the depth-first search re-entered an
// on-stack vertex, closing the loop (the first and last elements repeat the
// same task id).
type CycleError struct {
	Path []int
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("dag: cycle detected: %s", strings.Join(parts, " -> "))
}

// Graph holds the task-level definitions plus the expanded instance-level
// graph derived from them. Both are read-only after Build returns, except
// for the handful of Instance fields the orchestrator mutates as a run
// progresses (Cursor, InDegree, and the three timestamps).
type Graph struct {
	Tasks map[int]*Task

	instances     []*Instance
	taskInstances map[int][]int
}

// Build validates that the task graph is acyclic, then expands every task
// into its instances under the Cartesian dependency rule: every instance of
// a task depends on all instances of each predecessor task.
func Build(tasks []*Task) (*Graph, error) {
	g := &Graph{Tasks: make(map[int]*Task, len(tasks))}
	for _, t := range tasks {
		g.Tasks[t.ID] = t
	}

	if err := g.checkAcyclic(); err != nil {
		return nil, err
	}

	g.expand()

	return g, nil
}

func (g *Graph) sortedTaskIDs() []int {
	ids := make([]int, 0, len(g.Tasks))
	for id := range g.Tasks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// checkAcyclic runs a three-color depth-first search over the forward
// (predecessor -> successor) edges implied by every task's Deps list.
func (g *Graph) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	successors := make(map[int][]int)
	for _, id := range g.sortedTaskIDs() {
		for _, dep := range g.Tasks[id].Deps {
			successors[dep] = append(successors[dep], id)
		}
	}

	color := make(map[int]int)
	var stack []int

	var visit func(id int) error
	visit = func(id int) error {
		color[id] = gray
		stack = append(stack, id)

		for _, succ := range successors[id] {
			switch color[succ] {
			case gray:
				idx := indexOf(stack, succ)
				path := append([]int{}, stack[idx:]...)
				path = append(path, succ)
				return &CycleError{Path: path}
			case white:
				if err := visit(succ); err != nil {
					return err
				}
			}
		}

		color[id] = black
		stack = stack[:len(stack)-1]
		return nil
	}

	for _, id := range g.sortedTaskIDs() {
		if color[id] == white {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}

// expand materializes every task's instances, then wires in-degree and
// successor lists from the already-complete instance set. Two passes: the
// first creates every instance so the second can resolve dependencies
// regardless of task processing order.
func (g *Graph) expand() {
	g.taskInstances = make(map[int][]int)

	nextID := 0
	for _, id := range g.sortedTaskIDs() {
		t := g.Tasks[id]
		for e := 0; e < t.Executions; e++ {
			g.instances = append(g.instances, &Instance{
				InstanceID: nextID,
				TaskID:     id,
			})
			g.taskInstances[id] = append(g.taskInstances[id], nextID)
			nextID++
		}
	}

	for _, inst := range g.instances {
		t := g.Tasks[inst.TaskID]
		for _, dep := range t.Deps {
			for _, predIID := range g.taskInstances[dep] {
				inst.InDegree++
				g.instances[predIID].Successors = append(
					g.instances[predIID].Successors, inst.InstanceID)
			}
		}
	}
}

// Instance returns the instance with the given id.
func (g *Graph) Instance(iid int) *Instance {
	return g.instances[iid]
}

// NumInstances returns the total number of instances in the graph.
func (g *Graph) NumInstances() int {
	return len(g.instances)
}

// Ops returns the shared, immutable op list for a task.
func (g *Graph) Ops(taskID int) []Op {
	t := g.Tasks[taskID]
	if t == nil {
		return nil
	}
	return t.Ops
}

// ReadyInstances returns every instance with in-degree 0. It is meant to be
// called once, at seeding: after that, readiness transitions are driven by
// MarkComplete.
func (g *Graph) ReadyInstances() []int {
	var ready []int
	for _, inst := range g.instances {
		if inst.InDegree == 0 {
			ready = append(ready, inst.InstanceID)
		}
	}
	return ready
}

// MarkComplete decrements the in-degree of every successor of iid and
// returns the ids of successors that just reached in-degree 0. It does not
// mutate iid itself.
func (g *Graph) MarkComplete(iid int) []int {
	inst := g.instances[iid]

	var newlyReady []int
	for _, sid := range inst.Successors {
		succ := g.instances[sid]
		succ.InDegree--
		if succ.InDegree == 0 {
			newlyReady = append(newlyReady, sid)
		}
	}
	return newlyReady
}
