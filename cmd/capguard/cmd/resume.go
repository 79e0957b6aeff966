package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResumeCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "resume",
		Short: "Clear an emergency stop and resume normal operations",
		Long: `Operator action that clears the sticky emergency flag and resets the
risk-reduction level. Without --force it refuses while the recovery
conditions do not hold.

Examples:
  capguard resume
  capguard resume --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			dd := s.guard.DrawdownStatus()
			if !force && !s.guard.CheckRecoveryConditions(dd) {
				return fmt.Errorf("recovery conditions not met (drawdown %.2f%%, recovery %.1f%%); use --force to override",
					dd.CurrentDrawdown, dd.RecoveryProgress)
			}

			s.guard.ResumeNormalOperations()
			for _, al := range s.guard.RecentAlerts(1) {
				if err := s.store.RecordAlert(al); err != nil {
					return fmt.Errorf("journal: %w", err)
				}
			}
			if err := s.save(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Normal operations resumed for %s (drawdown %.2f%%)\n",
				s.cfg.Account.ID, dd.CurrentDrawdown)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "resume even if recovery conditions do not hold")
	return cmd
}
