package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/capguard/journal"
)

func newAlertsCmd(a *app) *cobra.Command {
	alertsCmd := &cobra.Command{
		Use:   "alerts",
		Short: "Query and prune journaled alerts",
		Long: `Query and prune alerts stored in the SQLite journal.

Subcommands:
  recent - Show the most recent alerts
  prune  - Delete alerts older than a maximum age

Examples:
  capguard alerts recent -n 20
  capguard alerts recent --org
  capguard alerts prune --max-age 72h
  capguard alerts prune --max-age 0`,
	}

	var (
		n   int
		org bool
	)
	recentCmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent alerts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			alerts, err := s.store.RecentAlerts(n)
			if err != nil {
				return fmt.Errorf("query alerts: %w", err)
			}

			out := cmd.OutOrStdout()
			if org {
				fmt.Fprintln(out, journal.FormatAlertsOrg(alerts))
				return nil
			}
			for _, al := range alerts {
				fmt.Fprintf(out, "%s  %-8s  %-16s  %s\n",
					al.Timestamp.UTC().Format(time.RFC3339), al.Severity, al.Type, al.Message)
			}
			return nil
		},
	}
	recentCmd.Flags().IntVarP(&n, "number", "n", 10, "number of alerts to show")
	recentCmd.Flags().BoolVar(&org, "org", false, "print as org-mode entries")

	var maxAge time.Duration
	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete alerts older than --max-age",
		Long: `Delete journaled alerts older than --max-age.

Age is measured from the current wall-clock time. Alerts written by
replay carry the timestamps of the replayed ticks, so a replay of old
data is pruned by its tick times, not by when the replay ran.

A --max-age of 0 deletes every alert.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxAge < 0 {
				return fmt.Errorf("--max-age must not be negative")
			}
			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if maxAge == 0 {
				removed, err := s.store.DeleteAllAlerts()
				if err != nil {
					return fmt.Errorf("prune alerts: %w", err)
				}
				s.log.Info("alerts pruned", zap.Int64("removed", removed))
				fmt.Fprintf(out, "Pruned all %d alerts\n", removed)
				return nil
			}

			cutoff := time.Now().Add(-maxAge)
			removed, err := s.store.DeleteAlertsBefore(cutoff)
			if err != nil {
				return fmt.Errorf("prune alerts: %w", err)
			}
			s.log.Info("alerts pruned", zap.Int64("removed", removed), zap.Time("cutoff", cutoff))

			fmt.Fprintf(out, "Pruned %d alerts older than %s\n", removed, maxAge)
			return nil
		},
	}
	pruneCmd.Flags().DurationVar(&maxAge, "max-age", 72*time.Hour, "maximum alert age to keep, 0 deletes all")

	alertsCmd.AddCommand(recentCmd, pruneCmd)
	return alertsCmd
}
