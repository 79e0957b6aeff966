package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/capguard/journal"
	"github.com/rustyeddy/capguard/metrics"
	"github.com/rustyeddy/capguard/replay"
	"github.com/rustyeddy/capguard/risk"
)

type replayOptions struct {
	positions  string
	csvOut     string
	metricsOut string
	fresh      bool
}

func newReplayCmd(a *app) *cobra.Command {
	var o replayOptions

	cmd := &cobra.Command{
		Use:   "replay <ticks.csv>",
		Short: "Drive the guard over recorded account ticks",
		Long: `Replay recorded account ticks through the guard, one evaluation per row.

Ticks CSV (header optional):
  time,balance,daily_pnl,weekly_pnl,monthly_pnl

Positions CSV (header optional, rows grouped by tick time):
  time,id,symbol,side,size,entry_price,current_price,unrealized_pnl,stop_loss,take_profit,bucket

Every tick and alert is journaled and the guard state is saved under the
account ID, so a later replay, status or resume continues from it.

Examples:
  capguard replay data/account.csv
  capguard replay data/account.csv --positions data/positions.csv --csv-out out/
  capguard --config capguard.yaml replay data/account.csv --fresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, a, args[0], o)
		},
	}

	cmd.Flags().StringVarP(&o.positions, "positions", "p", "", "CSV file of open positions per tick")
	cmd.Flags().StringVar(&o.csvOut, "csv-out", "", "directory for ticks.csv and alerts.csv")
	cmd.Flags().StringVar(&o.metricsOut, "metrics-out", "", "Prometheus textfile written at the end (overrides metrics.textfile)")
	cmd.Flags().BoolVar(&o.fresh, "fresh", false, "ignore persisted guard state")
	return cmd
}

func runReplay(cmd *cobra.Command, a *app, ticksPath string, o replayOptions) error {
	ticks, err := replay.LoadFiles(ticksPath, o.positions)
	if err != nil {
		return fmt.Errorf("load ticks: %w", err)
	}
	if len(ticks) == 0 {
		return fmt.Errorf("%s: no ticks", ticksPath)
	}

	cfg, err := a.config()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	prom, err := metrics.NewPrometheus(reg, cfg.Account.ID)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	clock := risk.NewManualClock(ticks[0].Time)
	s, err := a.open(o.fresh, risk.WithClock(clock), risk.WithObserver(prom))
	if err != nil {
		return err
	}
	defer s.Close()

	journals := []journal.Journal{s.store}
	csvj, err := openCSVJournal(s, o.csvOut)
	if err != nil {
		return err
	}
	if csvj != nil {
		defer csvj.Close()
		journals = append(journals, csvj)
	}

	s.log.Info("replay started",
		zap.String("ticks", ticksPath),
		zap.Int("count", len(ticks)),
		zap.Bool("restored", s.restored))

	sum, err := replay.Run(cmd.Context(), s.guard, clock, ticks, func(_ replay.Tick, res risk.MonitoringResult) error {
		for _, j := range journals {
			if err := journal.Record(j, res); err != nil {
				return fmt.Errorf("journal: %w", err)
			}
		}
		return nil
	})
	if serr := s.save(); serr != nil && err == nil {
		err = serr
	}
	if err != nil {
		return fmt.Errorf("replay: %w", err)
	}

	textfile := cfg.Metrics.TextFile
	if o.metricsOut != "" {
		textfile = o.metricsOut
	}
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	printSummary(cmd, sum, s.guard.Stats())
	return nil
}

// openCSVJournal returns the CSV journal requested by --csv-out or by a csv
// journal config, or nil when neither asks for one.
func openCSVJournal(s *session, dir string) (*journal.CSVJournal, error) {
	var ticksPath, alertsPath string
	switch {
	case dir != "":
		ticksPath = filepath.Join(dir, "ticks.csv")
		alertsPath = filepath.Join(dir, "alerts.csv")
	case s.cfg.Journal.Type == "csv":
		ticksPath = s.cfg.Journal.TicksFile
		alertsPath = s.cfg.Journal.AlertsFile
	default:
		return nil, nil
	}

	j, err := journal.NewCSV(ticksPath, alertsPath)
	if err != nil {
		return nil, fmt.Errorf("create csv journal: %w", err)
	}
	return j, nil
}

func printSummary(cmd *cobra.Command, sum replay.Summary, st risk.Stats) {
	out := cmd.OutOrStdout()
	dd := sum.Last.DrawdownStatus

	fmt.Fprintf(out, "Replayed %d ticks\n", sum.Ticks)
	fmt.Fprintf(out, "  Final balance:    %.2f (peak %.2f)\n", dd.CurrentBalance, dd.PeakBalance)
	fmt.Fprintf(out, "  Drawdown:         %.2f%% (max %.2f%%)\n", dd.CurrentDrawdown, dd.MaxDrawdown)
	fmt.Fprintf(out, "  Status:           %s\n", sum.Last.Status)
	fmt.Fprintf(out, "  Trading allowed:  %t\n", sum.Last.TradingAllowed)
	fmt.Fprintf(out, "  Risk reduction:   %.0f%%\n", dd.RiskReductionLevel)
	fmt.Fprintf(out, "  Alerts:           %d\n", sum.Alerts)
	fmt.Fprintf(out, "  Halted ticks:     %d\n", sum.Halted)
	if !sum.FirstHalt.IsZero() {
		fmt.Fprintf(out, "  First halt:       %s\n", sum.FirstHalt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(out, "  Episodes:         %d\n", st.DrawdownEpisodes)
	fmt.Fprintf(out, "  Emergency stops:  %d\n", st.EmergencyActivations)
}
