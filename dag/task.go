package dag

// Task is a node in the task-level dependency graph. Ops is shared by
// reference with every instance expanded from this task; it is read-only
// after the workload is loaded.
type Task struct {
	ID         int
	Name       string
	Executions int
	Ops        []Op
	Deps       []int
}
