package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func RemindersCmd() *cobra.Command {
	remindersCmd := &cobra.Command{
		Use:   "reminders",
		Short: "Medication reminder tools",
	}

	var at string
	runOnce := &cobra.Command{
		Use:   "run-once",
		Short: "Send the reminders due this minute (or at --at HH:MM) and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp()
			if err != nil {
				return err
			}
			defer closeFn()

			now := time.Now().In(a.Cfg.ReminderLocation())
			if at != "" {
				t, err := time.ParseInLocation("15:04", at, now.Location())
				if err != nil {
					return fmt.Errorf("invalid --at %q, want HH:MM", at)
				}
				now = time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
			}

			sent, err := a.ReminderService.SendDue(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminders for %s\n", sent, now.Format("15:04"))
			return nil
		},
	}
	runOnce.Flags().StringVar(&at, "at", "", "Reminder time to send, HH:MM in the reminder timezone")

	remindersCmd.AddCommand(runOnce)
	return remindersCmd
}
