// Command formsheet fills spreadsheet-driven forms from a terminal or a
// browser and stores each submission as a row of a remote table.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formsheet"
	"github.com/goliatone/go-formsheet/pkg/config"
	"github.com/goliatone/go-formsheet/pkg/form"
)

// cli holds what the persistent flags resolve to.
type cli struct {
	configPath string
	verbose    bool
	dryRun     bool

	logger *zap.Logger
	cfg    config.Config
	app    *formsheet.App
}

func newRootCmd() *cobra.Command {
	a := &cli{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "formsheet",
		Short:         "Spreadsheet-driven data entry forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `formsheet renders forms declared in CSV or XLSX schema sheets.

Each form is listed in formsheet.yaml with its schema, the optional region
reference table and the remote table that receives submissions.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Help and completion need no configuration.
			if cmd.Name() == "help" || cmd.Name() == "completion" || (cmd.Parent() != nil && cmd.Parent().Name() == "completion") {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "formsheet.yaml", "configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "keep submissions in memory instead of the configured store")

	root.AddCommand(
		newFillCmd(a),
		newServeCmd(a),
		newInspectCmd(a),
		newExportCmd(a),
	)
	return root
}

func (a *cli) init() error {
	zcfg := zap.NewProductionConfig()
	if a.verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	app, err := formsheet.Open(cfg, formsheet.WithLogger(logger), formsheet.WithDryRun(a.dryRun))
	if err != nil {
		return err
	}
	a.app = app
	a.logger.Debug("configuration loaded", zap.String("config", a.configPath))
	return nil
}

func (a *cli) close() {
	if err := a.app.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func (a *cli) definition(id string) (form.Definition, error) {
	f, ok := a.cfg.Form(id)
	if !ok {
		return form.Definition{}, fmt.Errorf("unknown form %q", id)
	}
	return a.cfg.Definition(f), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}
