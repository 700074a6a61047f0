// Package formsheet wires a configuration file to a form engine: it opens
// the configured store backend and builds an engine writing through it.
package formsheet

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/config"
	"github.com/goliatone/go-formsheet/pkg/form"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/store"
	"github.com/goliatone/go-formsheet/pkg/store/memstore"
	"github.com/goliatone/go-formsheet/pkg/store/sqlitestore"
	"github.com/goliatone/go-formsheet/pkg/store/xlsxstore"
)

// Option configures Open.
type Option func(*options)

type options struct {
	logger *zap.Logger
	dryRun bool
	engine []form.Option
}

// WithLogger attaches a logger to the store and the engine.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDryRun keeps submissions in memory regardless of the configured
// backend.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}

// WithEngineOptions forwards options to form.NewEngine.
func WithEngineOptions(opts ...form.Option) Option {
	return func(o *options) {
		o.engine = append(o.engine, opts...)
	}
}

// App is an engine bound to the store it writes through.
type App struct {
	Config    config.Config
	Connector store.Connector
	Engine    *form.Engine
	closeFn   func() error
}

// Close releases the store backend.
func (a *App) Close() error {
	if a == nil || a.closeFn == nil {
		return nil
	}
	return a.closeFn()
}

// Open builds the store connector and form engine for cfg.
func Open(cfg config.Config, opts ...Option) (*App, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	backend := Backend(cfg, o.dryRun)
	connector, closeFn, err := NewConnector(backend, cfg.StoreDir(), o.logger)
	if err != nil {
		return nil, err
	}

	engineOpts := []form.Option{
		form.WithReadTTL(cfg.Store.ReadTTL()),
		form.WithLogger(o.logger),
	}
	if cfg.Input.StripMarkup {
		engineOpts = append(engineOpts, form.WithRenderOptions(render.WithSanitizer(render.StripMarkup())))
	}
	engineOpts = append(engineOpts, o.engine...)
	engine, err := form.NewEngine(connector, engineOpts...)
	if err != nil {
		_ = closeFn()
		return nil, err
	}
	o.logger.Debug("store opened",
		zap.String("backend", backend),
		zap.String("dir", cfg.StoreDir()),
		zap.Int("forms", len(cfg.Forms)))
	return &App{Config: cfg, Connector: connector, Engine: engine, closeFn: closeFn}, nil
}

// Backend returns the backend Open uses for cfg.
func Backend(cfg config.Config, dryRun bool) string {
	if dryRun {
		return config.BackendMemory
	}
	return cfg.Store.Backend
}

// NewConnector opens a store backend rooted at dir. The returned func
// releases it.
func NewConnector(backend, dir string, logger *zap.Logger) (store.Connector, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case config.BackendMemory:
		return memstore.New(), noop, nil
	case config.BackendXLSX:
		return xlsxstore.New(dir, xlsxstore.WithLogger(logger)), noop, nil
	case config.BackendSQLite:
		c := sqlitestore.New(dir, sqlitestore.WithLogger(logger))
		return c, c.Close, nil
	default:
		return nil, nil, fmt.Errorf("formsheet: unsupported store backend %q", backend)
	}
}
