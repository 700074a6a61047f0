// Package form ties the schema, geo reference, renderer, validator and
// submission sink into openable, submittable forms.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/cache"
	"github.com/goliatone/go-formsheet/pkg/derive"
	"github.com/goliatone/go-formsheet/pkg/geo"
	"github.com/goliatone/go-formsheet/pkg/model"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/schema"
	"github.com/goliatone/go-formsheet/pkg/store"
	"github.com/goliatone/go-formsheet/pkg/validation"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

var (
	// ErrFormUnavailable marks a form whose schema or reference table could
	// not be loaded. Nothing of the form is rendered.
	ErrFormUnavailable = errors.New("form: unavailable")
	// ErrRemote marks a failed remote write. Answers are left untouched.
	ErrRemote = errors.New("form: remote store failure")
)

// DefaultSuccessMessage is shown after a stored submission when the
// definition sets none.
const DefaultSuccessMessage = "Registro guardado correctamente."

// SubjectSource names the remote table that feeds the subject selector.
type SubjectSource struct {
	Store string
	Table string
	// NameColumn and SurnameColumn are matched as folded substrings of the
	// header cells.
	NameColumn    string
	SurnameColumn string
}

// Definition describes one form.
type Definition struct {
	ID              string
	Title           string
	Schema          schema.Source
	Geo             schema.Source
	CascadeCategory string
	Labels          render.CascadeLabels
	Store           string
	Table           string
	Subjects        *SubjectSource
	SuccessMessage  string
}

// Result reports a stored submission.
type Result struct {
	Row     answers.Row
	Message string
}

// Form is an opened definition ready to render.
type Form struct {
	def       Definition
	schema    model.Schema
	geo       *geo.Resolver
	subjects  []string
	validator *validation.Validator
	engine    *Engine
}

// Definition returns the definition the form was opened from.
func (f *Form) Definition() Definition { return f.def }

// Schema returns the loaded schema.
func (f *Form) Schema() model.Schema { return f.schema }

// Geo returns the reference resolver, or nil for forms without a cascade.
func (f *Form) Geo() *geo.Resolver { return f.geo }

// Subjects returns the subject selector options.
func (f *Form) Subjects() []string { return append([]string(nil), f.subjects...) }

// Pass returns the render pass description.
func (f *Form) Pass() render.Pass {
	return render.Pass{
		Schema:          f.schema,
		Geo:             f.geo,
		CascadeCategory: f.def.CascadeCategory,
		Labels:          f.def.Labels,
		Subjects:        f.subjects,
	}
}

// Render runs one pass over controls, replacing the session answers.
func (f *Form) Render(ctx context.Context, controls widget.Controls, session *answers.Session) (*answers.Set, error) {
	set := session.BeginRender()
	if err := f.engine.renderer.Render(ctx, controls, f.Pass(), set); err != nil {
		return set, err
	}
	return set, nil
}

// Validate checks the current session answers.
func (f *Form) Validate(session *answers.Session) error {
	return f.validator.Validate(f.schema, session.Answers())
}

func cascadeRules(pass render.Pass) validation.Cascade {
	keys := pass.CascadeKeys()
	return validation.Cascade{
		Enabled:  pass.HasCascade(),
		Region:   keys.Region,
		Province: keys.Province,
		District: keys.District,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLoader overrides the schema loader.
func WithLoader(loader *schema.Loader) Option {
	return func(e *Engine) {
		if loader != nil {
			e.loader = loader
		}
	}
}

// WithClock injects the clock for timestamps, derived ages and caches.
func WithClock(clock cache.Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithReadTTL sets how long remote reads are reused.
func WithReadTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.readTTL = ttl
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRenderOptions forwards options to the renderer.
func WithRenderOptions(opts ...render.Option) Option {
	return func(e *Engine) {
		e.renderOpts = append(e.renderOpts, opts...)
	}
}

// Engine opens and submits forms against one remote connector.
type Engine struct {
	loader     *schema.Loader
	clock      cache.Clock
	readTTL    time.Duration
	logger     *zap.Logger
	renderOpts []render.Option

	schemas  *cache.Cache[model.Schema]
	geos     *cache.Cache[*geo.Resolver]
	reader   *store.CachedReader
	sink     *store.Sink
	renderer *render.Renderer
}

// NewEngine builds an engine writing through connector.
func NewEngine(connector store.Connector, options ...Option) (*Engine, error) {
	if connector == nil {
		return nil, fmt.Errorf("form: connector is required")
	}
	e := &Engine{
		loader:  schema.NewLoader(),
		clock:   cache.SystemClock,
		readTTL: store.DefaultReadTTL,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}

	e.schemas = cache.New[model.Schema](cache.WithClock(e.clock), cache.WithTTL(cache.Forever))
	e.geos = cache.New[*geo.Resolver](cache.WithClock(e.clock), cache.WithTTL(cache.Forever))
	e.reader = store.NewCachedReader(connector, cache.WithClock(e.clock), cache.WithTTL(e.readTTL))
	e.sink = store.NewSink(connector, store.WithSinkLogger(e.logger))

	renderOpts := append([]render.Option{
		render.WithDeriveEngine(derive.NewEngine(e.clock)),
		render.WithLogger(e.logger),
	}, e.renderOpts...)
	renderer, err := render.New(renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("form: renderer: %w", err)
	}
	e.renderer = renderer
	return e, nil
}

// Reader exposes the memoised remote reader.
func (e *Engine) Reader() *store.CachedReader { return e.reader }

// Open loads def. Schema and geo failures are wrapped in ErrFormUnavailable.
// A failed subject read leaves the selector empty.
func (e *Engine) Open(ctx context.Context, def Definition) (*Form, error) {
	if def.Schema == nil {
		return nil, fmt.Errorf("%w: %s: no schema source", ErrFormUnavailable, def.ID)
	}
	logger := e.logger.With(zap.String("form", def.ID))

	s, err := e.schemas.Get(ctx, schema.CacheKey(def.Schema), func(ctx context.Context) (model.Schema, error) {
		return e.loader.Load(ctx, def.Schema)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFormUnavailable, def.ID, err)
	}
	if len(s.Skipped) > 0 {
		logger.Debug("schema rows skipped", zap.Ints("rows", s.Skipped))
	}

	f := &Form{def: def, schema: s, engine: e}
	if f.def.SuccessMessage == "" {
		f.def.SuccessMessage = DefaultSuccessMessage
	}

	if def.Geo != nil {
		resolver, err := e.geos.Get(ctx, schema.CacheKey(def.Geo), func(ctx context.Context) (*geo.Resolver, error) {
			return geo.LoadReference(ctx, e.loader, def.Geo)
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFormUnavailable, def.ID, err)
		}
		f.geo = resolver
	}

	if def.Subjects != nil && s.HasRole(model.RoleSubjectSelector) {
		subjects, err := e.Subjects(ctx, *def.Subjects)
		if err != nil {
			logger.Warn("subject list unavailable", zap.Error(err))
		}
		f.subjects = subjects
	}

	f.validator = validation.ForSchema(s, cascadeRules(f.Pass()))
	return f, nil
}

// Subjects reads the display names for a subject selector: name plus
// paternal surname, unique, in row order. Tables without a name column fall
// back to their first column.
func (e *Engine) Subjects(ctx context.Context, src SubjectSource) ([]string, error) {
	rows, err := e.reader.ReadAll(ctx, src.Store, src.Table)
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}
	header, data := rows[0], rows[1:]

	nameCol := store.ColumnContaining(header, orDefault(src.NameColumn, "nombres"))
	surnameCol := store.ColumnContaining(header, orDefault(src.SurnameColumn, "paterno"))

	seen := make(map[string]struct{}, len(data))
	var out []string
	for _, row := range data {
		var display string
		switch {
		case nameCol < 0:
			display = row.Cell(0)
		case surnameCol < 0:
			display = row.Cell(nameCol)
		default:
			display = row.Cell(nameCol) + " " + row.Cell(surnameCol)
		}
		display = strings.TrimSpace(display)
		if display == "" {
			continue
		}
		if _, dup := seen[display]; dup {
			continue
		}
		seen[display] = struct{}{}
		out = append(out, display)
	}
	return out, nil
}

// Submit validates the session answers and appends them to the form's
// table. Violations return *validation.Error; write failures wrap ErrRemote.
// Only a stored submission clears the session.
func (e *Engine) Submit(ctx context.Context, f *Form, session *answers.Session) (Result, error) {
	set := session.Answers()
	if err := f.validator.Validate(f.schema, set); err != nil {
		return Result{}, err
	}

	row := set.Row(e.clock.Now())
	if err := e.sink.Append(ctx, f.def.Store, f.def.Table, row); err != nil {
		e.logger.Error("submission failed",
			zap.String("form", f.def.ID),
			zap.String("table", f.def.Table),
			zap.Error(err))
		return Result{}, fmt.Errorf("%w: %w", ErrRemote, err)
	}

	e.reader.Invalidate(f.def.Store, f.def.Table)
	session.Clear()
	e.logger.Info("submission stored",
		zap.String("form", f.def.ID),
		zap.String("table", f.def.Table))
	return Result{Row: row, Message: f.def.SuccessMessage}, nil
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
