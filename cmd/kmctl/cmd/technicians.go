package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func TechniciansCmd() *cobra.Command {
	techniciansCmd := &cobra.Command{
		Use:   "technicians",
		Short: "Manage the dialysis technician roster",
	}

	techniciansCmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update technicians from a YAML roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			a, closeFn, err := openApp()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := a.RosterService.Import(f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d technicians\n", n)
			return nil
		},
	})

	techniciansCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the roster",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp()
			if err != nil {
				return err
			}
			defer closeFn()

			technicians, err := a.RosterService.Technicians()
			if err != nil {
				return err
			}
			for _, t := range technicians {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", t.Name, t.Hospital, t.Contact, t.Charges)
			}
			return nil
		},
	})

	return techniciansCmd
}
