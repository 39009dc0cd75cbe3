// Package cli wires the logbook commands. Running without a subcommand opens
// the terminal UI.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/logbook/internal/config"
	"github.com/sadopc/logbook/internal/store"
	"github.com/sadopc/logbook/internal/tui"
)

type options struct {
	dbPath string
}

func NewRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "logbook",
		Short:         "logbook tracks habits, measurements and targets from your terminal",
		Long:          "logbook records events in categories (todos, measured values, protocols), checks them against recurring targets and charts them over days, weeks or months.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.runTUI()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to SQLite database")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Open the terminal UI",
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.runTUI()
			},
		},
		newStatusCmd(opts),
		newSeriesCmd(opts),
		newExportCmd(opts),
		newLogCmd(opts),
		newCategoryCmd(opts),
		newTargetCmd(opts),
		newGraphCmd(opts),
	)
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) runTUI() error {
	return o.withStore(func(s *store.Store, cfg *config.Config) error {
		p := tea.NewProgram(tui.NewApp(s, cfg.Location), tea.WithAltScreen())
		_, err := p.Run()
		return err
	})
}

// withStore loads the configuration, installs the file logger and opens the
// database for the duration of run.
func (o *options) withStore(run func(*store.Store, *config.Config) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if o.dbPath != "" {
		cfg.WithDBPath(o.dbPath)
	}

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	s.SetLocation(cfg.Location)

	slog.Debug("database opened", "path", cfg.DBPath, "tz", cfg.Location.String())
	return run(s, cfg)
}
