package tui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/form"
	"github.com/goliatone/go-formsheet/pkg/validation"
)

// TechnicalErrorMessage is shown when the remote write fails.
const TechnicalErrorMessage = "Ocurrió un error técnico al guardar. Sus respuestas se conservan."

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner fills one form in the terminal: render, submit, and on failure
// either re-render with the answers kept or offer a retry.
type Runner struct {
	engine *form.Engine
	driver PromptDriver
	theme  Theme
	logger *zap.Logger
}

// NewRunner builds a runner over engine using the survey driver by default.
func NewRunner(engine *form.Engine, options ...Option) *Runner {
	r := &Runner{
		engine: engine,
		theme:  DefaultTheme(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Run fills def until it is stored or the user declines.
func (r *Runner) Run(ctx context.Context, def form.Definition, session *answers.Session) (form.Result, error) {
	if session == nil {
		session = answers.NewSession(def.ID)
	}
	for {
		f, err := r.engine.Open(ctx, def)
		if err != nil {
			return form.Result{}, err
		}
		if err := r.driver.Info(ctx, f.Definition().Title); err != nil {
			return form.Result{}, err
		}
		if _, err := f.Render(ctx, NewControls(r.driver, session, r.theme), session); err != nil {
			return form.Result{}, err
		}

		send, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Guardar registro?", Default: true})
		if err != nil {
			return form.Result{}, err
		}
		if !send {
			return form.Result{}, ErrDeclined
		}

		result, err := r.submit(ctx, f, session)
		var verr *validation.Error
		switch {
		case err == nil:
			return result, r.driver.Info(ctx, r.theme.InfoPrefix+result.Message)
		case errors.As(err, &verr):
			for _, msg := range verr.Messages() {
				if err := r.driver.Info(ctx, r.theme.ErrorPrefix+msg); err != nil {
					return form.Result{}, err
				}
			}
			continue
		default:
			return form.Result{}, err
		}
	}
}

// submit retries remote failures while the user agrees.
func (r *Runner) submit(ctx context.Context, f *form.Form, session *answers.Session) (form.Result, error) {
	for {
		result, err := r.engine.Submit(ctx, f, session)
		if !errors.Is(err, form.ErrRemote) {
			return result, err
		}
		r.logger.Warn("remote write failed", zap.String("form", f.Definition().ID), zap.Error(err))
		if infoErr := r.driver.Info(ctx, r.theme.ErrorPrefix+TechnicalErrorMessage); infoErr != nil {
			return form.Result{}, infoErr
		}
		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "¿Reintentar?", Default: true})
		if cerr != nil {
			return form.Result{}, cerr
		}
		if !retry {
			return form.Result{}, fmt.Errorf("%w: %w", ErrDeclined, err)
		}
	}
}
