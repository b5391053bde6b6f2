// Package workload parses the tasks and operations tables that describe a
// run's DAG: two delimited-text files read with the standard csv reader.
package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/archfab/fabricsim/dag"
)

// WorkloadError reports a malformed tasks or ops table.
type WorkloadError struct {
	Msg string
}

func (e *WorkloadError) Error() string { return "workload: " + e.Msg }

func errf(format string, a ...interface{}) error {
	return &WorkloadError{Msg: fmt.Sprintf(format, a...)}
}

func openTable(path string) (*csv.Reader, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errf("opening %s: %v", path, err)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r, f, nil
}

func indexOf(header []string, name string) (int, error) {
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i, nil
		}
	}
	return -1, errf("missing header column %q", name)
}

// LoadTasks reads the tasks table at path into a slice of tasks, with Ops
// left empty — callers fill it in via LoadOps.
func LoadTasks(path string) ([]*dag.Task, error) {
	r, f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, errf("reading header: %v", err)
	}
	if len(header) == 0 {
		return nil, errf("empty header row")
	}

	idCol, err := indexOf(header, "id")
	if err != nil {
		return nil, err
	}
	nameCol, err := indexOf(header, "name")
	if err != nil {
		return nil, err
	}
	execCol, err := indexOf(header, "executions")
	if err != nil {
		return nil, err
	}
	depsCol, err := indexOf(header, "deps")
	if err != nil {
		return nil, err
	}

	var tasks []*dag.Task
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errf("reading row: %v", err)
		}
		if len(record) != len(header) {
			return nil, errf("row has %d fields, header has %d", len(record), len(header))
		}

		id, err := strconv.Atoi(strings.TrimSpace(record[idCol]))
		if err != nil {
			return nil, errf("task id %q: %v", record[idCol], err)
		}

		executions, err := strconv.Atoi(strings.TrimSpace(record[execCol]))
		if err != nil {
			return nil, errf("task %d: executions %q: %v", id, record[execCol], err)
		}
		if executions < 1 {
			return nil, errf("task %d: executions must be >= 1, got %d", id, executions)
		}

		deps, err := parseDeps(record[depsCol])
		if err != nil {
			return nil, errf("task %d: %v", id, err)
		}

		tasks = append(tasks, &dag.Task{
			ID:         id,
			Name:       strings.TrimSpace(record[nameCol]),
			Executions: executions,
			Deps:       deps,
		})
	}

	return tasks, nil
}

func parseDeps(field string) ([]int, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	parts := strings.Split(field, ";")
	deps := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("dep %q: %v", p, err)
		}
		deps = append(deps, v)
	}
	return deps, nil
}

type seqOp struct {
	seq int
	op  dag.Op
}

// LoadOps reads the ops table at path and groups operations by task_id,
// ordered by seq_idx ascending. knownTaskIDs is consulted to reject
// references to tasks the tasks table never declared.
func LoadOps(path string, knownTaskIDs map[int]bool) (map[int][]dag.Op, error) {
	r, f, err := openTable(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, errf("reading header: %v", err)
	}
	if len(header) == 0 {
		return nil, errf("empty header row")
	}

	taskCol, err := indexOf(header, "task_id")
	if err != nil {
		return nil, err
	}
	seqCol, err := indexOf(header, "seq_idx")
	if err != nil {
		return nil, err
	}
	typeCol, err := indexOf(header, "type")
	if err != nil {
		return nil, err
	}
	cyclesCol, err := indexOf(header, "cycles")
	if err != nil {
		return nil, err
	}
	addrCol, err := indexOf(header, "address")
	if err != nil {
		return nil, err
	}
	rwCol, err := indexOf(header, "rw")
	if err != nil {
		return nil, err
	}

	byTask := map[int][]seqOp{}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errf("reading row: %v", err)
		}
		if len(record) != len(header) {
			return nil, errf("row has %d fields, header has %d", len(record), len(header))
		}

		taskID, err := strconv.Atoi(strings.TrimSpace(record[taskCol]))
		if err != nil {
			return nil, errf("task_id %q: %v", record[taskCol], err)
		}
		if knownTaskIDs != nil && !knownTaskIDs[taskID] {
			return nil, errf("unknown task_id %d", taskID)
		}

		seqIdx, err := strconv.Atoi(strings.TrimSpace(record[seqCol]))
		if err != nil {
			return nil, errf("task %d: seq_idx %q: %v", taskID, record[seqCol], err)
		}
		if seqIdx < 0 {
			return nil, errf("task %d: seq_idx must be >= 0, got %d", taskID, seqIdx)
		}

		op, err := parseOp(taskID, strings.TrimSpace(record[typeCol]), record[cyclesCol], record[addrCol], record[rwCol])
		if err != nil {
			return nil, err
		}

		byTask[taskID] = append(byTask[taskID], seqOp{seq: seqIdx, op: op})
	}

	ops := make(map[int][]dag.Op, len(byTask))
	for taskID, entries := range byTask {
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
		list := make([]dag.Op, len(entries))
		for i, e := range entries {
			list[i] = e.op
		}
		ops[taskID] = list
	}

	return ops, nil
}

func parseOp(taskID int, kind, cyclesField, addrField, rwField string) (dag.Op, error) {
	switch kind {
	case "compute":
		cyclesField = strings.TrimSpace(cyclesField)
		if cyclesField == "" {
			return dag.Op{}, errf("task %d: compute op missing cycles", taskID)
		}
		cycles, err := strconv.ParseUint(cyclesField, 10, 32)
		if err != nil {
			return dag.Op{}, errf("task %d: cycles %q: %v", taskID, cyclesField, err)
		}
		return dag.Op{Kind: dag.OpCompute, Cycles: uint32(cycles)}, nil

	case "mem":
		addrField = strings.TrimSpace(addrField)
		if addrField == "" {
			return dag.Op{}, errf("task %d: mem op missing address", taskID)
		}
		addr, err := parseHexAddress(addrField)
		if err != nil {
			return dag.Op{}, errf("task %d: address %q: %v", taskID, addrField, err)
		}

		access, err := parseAccess(strings.TrimSpace(rwField))
		if err != nil {
			return dag.Op{}, errf("task %d: %v", taskID, err)
		}

		return dag.Op{Kind: dag.OpMemory, Address: addr, Access: access}, nil

	default:
		return dag.Op{}, errf("task %d: unknown operation type %q", taskID, kind)
	}
}

func parseHexAddress(s string) (uint64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(trimmed, 16, 64)
}

func parseAccess(rw string) (dag.AccessKind, error) {
	switch rw {
	case "R":
		return dag.Read, nil
	case "W":
		return dag.Write, nil
	default:
		return 0, fmt.Errorf("unknown rw %q", rw)
	}
}

// Load reads both tables and returns tasks with Ops populated, ready for
// dag.Build.
func Load(tasksPath, opsPath string) ([]*dag.Task, error) {
	tasks, err := LoadTasks(tasksPath)
	if err != nil {
		return nil, err
	}

	known := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}

	ops, err := LoadOps(opsPath, known)
	if err != nil {
		return nil, err
	}

	for _, t := range tasks {
		t.Ops = ops[t.ID]
	}

	return tasks, nil
}
