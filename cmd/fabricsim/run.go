package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/archfab/fabricsim/config"
	"github.com/archfab/fabricsim/orchestrator"
	"github.com/archfab/fabricsim/sim"
)

const statsPath = "stats.json"

func run(cmd *cobra.Command, args []string) error {
	// Flag validation has already passed; main logs any error from here on
	// as a single line, without Cobra's usage text.
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	configPath, _ := cmd.Flags().GetString("config")
	tasksPath, _ := cmd.Flags().GetString("tasks")
	opsPath, _ := cmd.Flags().GetString("ops")
	verbose, _ := cmd.Flags().GetBool("verbose")

	s, err := orchestrator.Load(configPath, tasksPath, opsPath)
	if err != nil {
		return err
	}

	if verbose {
		logger := log.New(os.Stdout, "", log.LstdFlags)
		s.Engine().AcceptHook(sim.NewEventLogger(logger))
		echoConfig(configPath)
		fmt.Printf("run id: %s\n", s.StatsCollector().RunID())
	}

	s.RegisterStatsFlush(statsPath)
	s.StatsCollector().RegisterAtExitFlush(statsPath, s.Engine().CurrentTime, s.InterconnectBusyCycles)

	if _, err := s.Run(); err != nil {
		return err
	}
	if err := s.FlushErr(); err != nil {
		return err
	}

	fmt.Println(s.Report().String())
	return nil
}

func echoConfig(path string) {
	cfg, err := config.Load(path)
	if err != nil {
		return
	}
	fmt.Printf("config: cores=%d chiplets=%d policy=%s frequency_ghz=%v\n",
		cfg.Cores, cfg.Chiplets, cfg.Resolved.Policy, cfg.FrequencyGHz)
}
