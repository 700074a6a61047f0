package main

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/renderers/tui"
)

func newFillCmd(a *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill a form interactively in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.definition(args[0])
			if err != nil {
				return err
			}
			engine := a.app.Engine
			runner := tui.NewRunner(engine,
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithLogger(a.logger),
			)

			result, err := runner.Run(cmd.Context(), def, answers.NewSession(def.ID))
			switch {
			case errors.Is(err, tui.ErrDeclined), errors.Is(err, tui.ErrAborted):
				a.logger.Info("form not stored", zap.String("form", def.ID), zap.Error(err))
				return nil
			case err != nil:
				return err
			}
			a.logger.Debug("form stored", zap.String("form", def.ID), zap.Int("columns", len(result.Row.Columns)))
			return nil
		},
	}
}
