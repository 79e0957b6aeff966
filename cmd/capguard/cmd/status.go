package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/capguard/journal"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the persisted protection state",
		Long: `Print statistics and the sticky protection state saved for the account.

Example:
  capguard --db capguard.db status`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !s.restored {
				fmt.Fprintf(out, "No state saved for account %s\n", s.cfg.Account.ID)
				return nil
			}

			st := s.guard.State()
			dd := s.guard.DrawdownStatus()
			fmt.Fprint(out, journal.FormatStatsOrg(s.cfg.Account.ID, s.guard.Stats()))
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Emergency active:    %t\n", dd.EmergencyMeasuresActive)
			fmt.Fprintf(out, "Risk reduction:      %.0f%%\n", dd.RiskReductionLevel)
			fmt.Fprintf(out, "Last balance:        %.2f\n", dd.CurrentBalance)
			fmt.Fprintf(out, "Recovery progress:   %.1f%%\n", dd.RecoveryProgress)
			fmt.Fprintf(out, "Recovery conditions: %t\n", s.guard.CheckRecoveryConditions(dd))
			if !st.UpdatedAt.IsZero() {
				fmt.Fprintf(out, "Last tick:           %s\n", st.UpdatedAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}
