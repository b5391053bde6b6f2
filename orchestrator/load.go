package orchestrator

import (
	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/dag"
	"github.com/archfab/fabricsim/workload"
)

// Load reads the configuration document and the two workload tables,
// builds the task graph, and returns a Simulator ready to Run.
func Load(configPath, tasksPath, opsPath string) (*Simulator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	tasks, err := workload.Load(tasksPath, opsPath)
	if err != nil {
		return nil, err
	}

	graph, err := dag.Build(tasks)
	if err != nil {
		return nil, err
	}

	return New(cfg, graph), nil
}
