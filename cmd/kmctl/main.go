package main

import (
	"os"

	"github.com/kidneymate/server/cmd/kmctl/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kmctl",
		Short:         "Operator tools for the KidneyMate server",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.TechniciansCmd())
	rootCmd.AddCommand(cmd.RemindersCmd())
	rootCmd.AddCommand(cmd.CodesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
