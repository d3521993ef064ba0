// Package cmd provides the snapengine CLI: benchmarking and point-set
// diagnostics for the snap detection engine.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "snapengine",
	Short: "Snap detection engine tooling",
	Long:  `Benchmarking and diagnostics for the ductwork snap detection engine.`,
}

func Execute() error {
	return rootCmd.Execute()
}
