package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/capguard/risk"
)

func newSizeCmd(a *app) *cobra.Command {
	var (
		in         risk.Inputs
		instrument string
	)

	cmd := &cobra.Command{
		Use:   "size [base-units]",
		Short: "Size a position under the current risk-reduction level",
		Long: `Scale a position size by the persisted risk-reduction level.

With a base size the base is scaled directly. With --stop the size is
first derived from equity, risk percent and stop distance, then scaled.

Examples:
  capguard size 10000
  capguard size --equity 100000 --risk-pct 0.005 --entry 1.1000 --stop 1.0980
  capguard size --instrument USD_JPY --entry 150.00 --stop 149.50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && in.StopPrice == 0 {
				return fmt.Errorf("need a base size or --stop")
			}

			s, err := a.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			dd := s.guard.DrawdownStatus()
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				base, err := strconv.ParseFloat(args[0], 64)
				if err != nil {
					return fmt.Errorf("bad base size %q: %w", args[0], err)
				}
				fmt.Fprintf(out, "Risk reduction: %.0f%%\n", dd.RiskReductionLevel)
				fmt.Fprintf(out, "Adjusted size:  %.2f\n", s.guard.CalculatePositionSizeAdjustment(base, dd))
				return nil
			}

			if instrument != "" {
				if in, err = risk.InputsFor(instrument, s.cfg.Account.Currency, in); err != nil {
					return err
				}
			}
			if in.Equity == 0 {
				in.Equity = s.cfg.Account.Balance
				if dd.CurrentBalance > 0 {
					in.Equity = dd.CurrentBalance
				}
			}
			res := risk.SizeForRisk(in, dd)
			fmt.Fprintf(out, "Risk reduction: %.0f%%\n", dd.RiskReductionLevel)
			fmt.Fprintf(out, "Stop distance:  %.1f pips\n", res.StopPips)
			fmt.Fprintf(out, "Risk amount:    %.2f\n", res.RiskAmount)
			fmt.Fprintf(out, "Units:          %.0f\n", res.Units)
			return nil
		},
	}

	cmd.Flags().Float64Var(&in.Equity, "equity", 0, "account equity (defaults to the last balance)")
	cmd.Flags().Float64Var(&in.RiskPct, "risk-pct", 0.005, "fraction of equity to risk")
	cmd.Flags().Float64Var(&in.EntryPrice, "entry", 0, "entry price")
	cmd.Flags().Float64Var(&in.StopPrice, "stop", 0, "stop-loss price")
	cmd.Flags().StringVar(&instrument, "instrument", "", "instrument (sets pip location and quote conversion)")
	cmd.Flags().IntVar(&in.PipLocation, "pip-location", -4, "pip location (-4 for EUR_USD, -2 for USD_JPY)")
	cmd.Flags().Float64Var(&in.QuoteToAccount, "quote-to-account", 1, "quote currency to account currency rate")
	return cmd
}
