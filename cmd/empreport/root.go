// Package main provides the entry point for the empreport CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for empreport.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "empreport",
		Short: "Employee performance report generator",
		Long: `empreport reads employee performance records from a CSV file, computes
overall and per-department statistics, and renders a formatted report.

Each generated run is archived so past results can be listed and compared.
By default, reports are rendered as PDF documents.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewGenerateCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
