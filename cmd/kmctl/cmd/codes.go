package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func CodesCmd() *cobra.Command {
	codesCmd := &cobra.Command{
		Use:   "codes",
		Short: "Phone sign-in code maintenance",
	}

	var olderThan time.Duration
	cleanup := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete used and expired sign-in codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := a.AuthService.CleanupPhoneCodes(olderThan)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d codes\n", n)
			return nil
		},
	}
	cleanup.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "Only delete codes older than this")

	codesCmd.AddCommand(cleanup)
	return codesCmd
}
