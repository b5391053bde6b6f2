// Package core implements the per-core state machine that walks an
// instance's operation cursor, one op at a time, emitting the action the
// orchestrator should schedule next.
package core

import (
	"fmt"

	"github.com/archfab/fabricsim/dag"
)

// State is a core's position in the Idle / Busy(instance) automaton.
type State int

const (
	Idle State = iota
	Busy
)

// ActionKind tells the orchestrator what kind of event to schedule after a
// core executes an op.
type ActionKind int

const (
	ActionCompute ActionKind = iota
	ActionMemory
)

// Action is the side effect of executing one op: either a compute delay or
// a memory request, depending on the op's kind.
type Action struct {
	Kind    ActionKind
	Cycles  uint32
	Address uint64
	Access  dag.AccessKind
}

// Core is a small state machine over the op cursor of a single instance. It
// owns only its busy/idle exclusivity; the instance's cursor and timestamps
// live on the dag.Instance itself.
type Core struct {
	id       int
	state    State
	instance int
}

// NewCore creates an idle core.
func NewCore(id int) *Core {
	return &Core{id: id, state: Idle, instance: -1}
}

// ID returns the core's index.
func (c *Core) ID() int {
	return c.id
}

// State returns the core's current automaton state.
func (c *Core) State() State {
	return c.state
}

// CurrentInstance returns the instance id the core is busy with, or -1 if
// idle.
func (c *Core) CurrentInstance() int {
	return c.instance
}

// ExecuteOp transitions Idle -> Busy(iid) the first time it is called for an
// instance, and is a no-op on the state machine for every subsequent op of
// the same instance (the core remains Busy across the whole chain). A core
// executing an op for an instance other than the one it is already busy
// with is a programmer error.
func (c *Core) ExecuteOp(iid int, op dag.Op) Action {
	switch c.state {
	case Idle:
		c.state = Busy
		c.instance = iid
	case Busy:
		if c.instance != iid {
			panic(fmt.Sprintf(
				"core %d: execute_op for instance %d while busy with %d",
				c.id, iid, c.instance))
		}
	}

	switch op.Kind {
	case dag.OpCompute:
		return Action{Kind: ActionCompute, Cycles: op.Cycles}
	case dag.OpMemory:
		return Action{Kind: ActionMemory, Address: op.Address, Access: op.Access}
	default:
		panic(fmt.Sprintf("core %d: unknown op kind %v", c.id, op.Kind))
	}
}

// CompleteOp advances past the op that just finished. done reports whether
// the instance has exhausted its op list, in which case the core returns to
// Idle. Completing an op on an idle core, or on a core busy with a
// different instance, is a programmer error.
func (c *Core) CompleteOp(iid int, done bool) {
	if c.state != Busy || c.instance != iid {
		panic(fmt.Sprintf(
			"core %d: complete_op for instance %d while in state %v on instance %d",
			c.id, iid, c.state, c.instance))
	}

	if done {
		c.state = Idle
		c.instance = -1
	}
}
