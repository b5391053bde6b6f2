// Package main provides the command-line entry point for fabricsim: a
// cycle-level simulator of a multi-core, multi-chiplet fabric driven by a
// DAG-based task workload.
package main

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

var rootCmd = &cobra.Command{
	Use:   "fabricsim",
	Short: "fabricsim runs a cycle-level simulation of a task DAG over a tiered memory fabric.",
	Long: `fabricsim runs a cycle-level simulation of a task DAG over a tiered ` +
		`memory fabric. It reads a JSON configuration document and two CSV ` +
		`workload tables, runs the simulation to completion, and writes ` +
		`stats.json alongside a human-readable report.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().String("config", "", "path to the configuration document (required)")
	rootCmd.Flags().String("tasks", "", "path to the tasks table (required)")
	rootCmd.Flags().String("ops", "", "path to the ops table (required)")
	rootCmd.Flags().Bool("verbose", false, "log every event as it is handled and echo the resolved configuration")

	rootCmd.MarkFlagRequired("config")
	rootCmd.MarkFlagRequired("tasks")
	rootCmd.MarkFlagRequired("ops")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
