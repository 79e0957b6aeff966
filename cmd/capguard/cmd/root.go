package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/capguard/config"
	"github.com/rustyeddy/capguard/journal"
	"github.com/rustyeddy/capguard/logger"
	"github.com/rustyeddy/capguard/risk"
)

const defaultDBPath = "./capguard.db"

// app carries the persistent flags shared by every subcommand.
type app struct {
	cfgFile  string
	dbPath   string
	logLevel string
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "capguard",
		Short: "Capital-preservation guard for automated trading accounts",
		Long: `Capguard watches account equity against its peak and against daily,
weekly and monthly loss budgets, and decides whether trading may continue,
must be scaled down, or must stop.

It provides tools for:
  - Replaying recorded account ticks through the guard
  - Inspecting the persisted protection state and alert history
  - Resuming normal operations after an emergency stop
  - Sizing positions under the current risk-reduction level`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (YAML or JSON); defaults are used when empty")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite state and journal path (overrides journal.db_path)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	root.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newReplayCmd(a),
		newStatusCmd(a),
		newResumeCmd(a),
		newAlertsCmd(a),
		newSizeCmd(a),
	)
	return root
}

// Execute runs the CLI. An interrupt cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) config() (*config.Config, error) {
	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.LoadFromFile(a.cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if a.dbPath != "" {
		cfg.Journal.DBPath = a.dbPath
	}
	if cfg.Journal.DBPath == "" {
		cfg.Journal.DBPath = defaultDBPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	return cfg, nil
}

// session is everything a command needs to work on the persisted guard.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	store    *journal.SQLite
	guard    *risk.Guard
	restored bool
}

func (s *session) Close() error {
	_ = s.log.Sync()
	return s.store.Close()
}

// open loads the config, opens the state store and restores the guard for
// the configured account. fresh ignores any persisted state.
func (a *app) open(fresh bool, opts ...risk.Option) (*session, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg.Log.Level).With(zap.String("account", cfg.Account.ID))

	store, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st, ok, err := store.LoadState(cfg.Account.ID)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}

	opts = append([]risk.Option{risk.WithLogger(log)}, opts...)
	restored := ok && !fresh
	if restored {
		opts = append(opts, risk.WithState(st))
	}

	g, err := risk.NewGuard(cfg.Protection, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if restored {
		log.Debug("guard state restored",
			zap.Bool("emergency", st.EmergencyActive),
			zap.Float64("peak", st.PeakBalance),
			zap.Time("updated_at", st.UpdatedAt))
	}

	return &session{cfg: cfg, log: log, store: store, guard: g, restored: restored}, nil
}

func (s *session) save() error {
	if err := s.store.SaveState(s.cfg.Account.ID, s.guard.State()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}
