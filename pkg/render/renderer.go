package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/derive"
	"github.com/goliatone/go-formsheet/pkg/geo"
	"github.com/goliatone/go-formsheet/pkg/model"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

// Stable widget keys of the cascade controls.
const (
	KeyRegion   = "geo_region"
	KeyProvince = "geo_province"
	KeyDistrict = "geo_district"
)

// SubjectPlaceholder is shown on the subject selector before a choice.
const SubjectPlaceholder = "Busque el nombre..."

// CascadeLabels are the answer keys written by the cascade when the schema
// does not name its own region/province/district questions.
type CascadeLabels struct {
	Region   string `yaml:"region" json:"region"`
	Province string `yaml:"province" json:"province"`
	District string `yaml:"district" json:"district"`
}

// DefaultCascadeLabels matches the column names of existing destination
// tables.
func DefaultCascadeLabels() CascadeLabels {
	return CascadeLabels{Region: "Departamento:", Province: "Provincia:", District: "Distrito:"}
}

// Pass describes one form render: the schema plus the per-form collaborators
// the special roles need.
type Pass struct {
	Schema model.Schema
	// Geo enables the cascade. Nil renders geo-role fields as plain selects.
	Geo *geo.Resolver
	// CascadeCategory marks a category as hosting the cascade even when none
	// of its rows carries a geo role. Matching is by substring.
	CascadeCategory string
	Labels          CascadeLabels
	// Subjects feeds the subject selector.
	Subjects []string
}

// Renderer drives widget.Controls over a schema and fills an answer set.
type Renderer struct {
	registry *Registry
	derive   *derive.Engine
	sanitize func(string) string
	logger   *zap.Logger
}

// New constructs a renderer with the default kind registry and the wall
// clock. Free text is stored verbatim unless WithSanitizer is given.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		registry: DefaultRegistry(),
		derive:   derive.NewEngine(nil),
		sanitize: Verbatim,
		logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if err := r.registry.Complete(); err != nil {
		return nil, err
	}
	return r, nil
}

// WidgetKey derives the stable control key of a field.
func WidgetKey(spec model.FieldSpec) string {
	return fmt.Sprintf("%d_%s", spec.Row, spec.Question)
}

// RenderField renders one field and records its answer under spec.Question.
// Specs without a question or kind are skipped and record nothing.
func (r *Renderer) RenderField(ctx context.Context, controls widget.Controls, spec model.FieldSpec, set *answers.Set) error {
	if !spec.Renderable() {
		return nil
	}
	_, err := r.renderField(ctx, controls, spec, set)
	return err
}

func (r *Renderer) renderField(ctx context.Context, controls widget.Controls, spec model.FieldSpec, set *answers.Set) (FieldContext, error) {
	fn, err := r.registry.Get(spec.Kind)
	if err != nil {
		return FieldContext{}, err
	}
	fc := r.fieldContext(controls, spec, set)
	if err := fn(ctx, fc); err != nil {
		return fc, fmt.Errorf("render: field %q: %w", spec.Question, err)
	}
	return fc, nil
}

func (r *Renderer) fieldContext(controls widget.Controls, spec model.FieldSpec, set *answers.Set) FieldContext {
	return FieldContext{
		Controls: controls,
		Spec:     spec,
		Answers:  set,
		Key:      WidgetKey(spec),
		Today:    r.derive.Today(),
		Sanitize: r.sanitize,
	}
}

// HasCascade reports whether the pass renders the region cascade.
func (p Pass) HasCascade() bool {
	if p.Geo == nil {
		return false
	}
	for _, category := range p.Schema.Categories {
		if p.cascadeCategory(category) {
			return true
		}
	}
	return false
}

// CascadeKeys returns the answer keys the cascade writes.
func (p Pass) CascadeKeys() CascadeLabels {
	labels := p.Labels
	defaults := DefaultCascadeLabels()
	if labels.Region == "" {
		labels.Region = defaults.Region
	}
	if labels.Province == "" {
		labels.Province = defaults.Province
	}
	if labels.District == "" {
		labels.District = defaults.District
	}
	if f := p.Schema.FieldsWithRole(model.RoleRegion); len(f) > 0 {
		labels.Region = f[0].Question
	}
	if f := p.Schema.FieldsWithRole(model.RoleProvince); len(f) > 0 {
		labels.Province = f[0].Question
	}
	if f := p.Schema.FieldsWithRole(model.RoleDistrict); len(f) > 0 {
		labels.District = f[0].Question
	}
	return labels
}

func (p Pass) cascadeCategory(category string) bool {
	if p.CascadeCategory != "" && strings.Contains(category, p.CascadeCategory) {
		return true
	}
	for _, field := range p.Schema.ByCategory(category) {
		if field.Role.Geographic() {
			return true
		}
	}
	return false
}

// passState is shared by the fields of one render pass.
type passState struct {
	birth         *time.Time
	cascadeDone   bool
	cascadeActive bool
}

// Render runs one linear pass over the schema, category by category, writing
// every answer into set.
func (r *Renderer) Render(ctx context.Context, controls widget.Controls, pass Pass, set *answers.Set) error {
	if controls == nil {
		return fmt.Errorf("render: controls are required")
	}
	if set == nil {
		return fmt.Errorf("render: answer set is required")
	}

	state := &passState{cascadeActive: pass.HasCascade()}
	for _, category := range pass.Schema.Categories {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := controls.Section(ctx, category); err != nil {
			return err
		}

		fields := pass.Schema.ByCategory(category)
		if state.cascadeActive && !state.cascadeDone && pass.cascadeCategory(category) {
			if err := r.renderCascade(ctx, controls, pass, set); err != nil {
				return err
			}
			state.cascadeDone = true
		}

		for _, spec := range fields {
			if !spec.Renderable() {
				continue
			}
			if state.cascadeActive && spec.Role.Geographic() {
				continue
			}
			if err := r.renderRole(ctx, controls, pass, spec, set, state); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) renderRole(ctx context.Context, controls widget.Controls, pass Pass, spec model.FieldSpec, set *answers.Set, state *passState) error {
	switch spec.Role {
	case model.RoleBirthDate:
		fc := r.fieldContext(controls, spec, set)
		birth, err := renderDateValue(ctx, fc)
		if err != nil {
			return fmt.Errorf("render: field %q: %w", spec.Question, err)
		}
		state.birth = birth
		return nil

	case model.RoleAge:
		age := r.derive.Age(state.birth)
		if _, err := controls.Number(ctx, widget.NumberSpec{
			Key:      WidgetKey(spec),
			Label:    spec.Question,
			Value:    age,
			ReadOnly: true,
		}); err != nil {
			return fmt.Errorf("render: field %q: %w", spec.Question, err)
		}
		set.Put(spec.Question, answers.Number(age))
		return nil

	case model.RoleSubjectSelector:
		value, ok, err := controls.Select(ctx, widget.SelectSpec{
			Key:         WidgetKey(spec),
			Label:       spec.Question,
			Options:     pass.Subjects,
			Placeholder: SubjectPlaceholder,
		})
		if err != nil {
			return fmt.Errorf("render: field %q: %w", spec.Question, err)
		}
		set.Put(spec.Question, selection(value, ok, pass.Subjects))
		return nil
	}

	_, err := r.renderField(ctx, controls, spec, set)
	return err
}

func (r *Renderer) renderCascade(ctx context.Context, controls widget.Controls, pass Pass, set *answers.Set) error {
	labels := pass.CascadeKeys()
	resolver := pass.Geo

	var cascade geo.Cascade

	region, ok, err := controls.Select(ctx, widget.SelectSpec{
		Key:         KeyRegion,
		Label:       strings.TrimSuffix(labels.Region, ":"),
		Options:     resolver.Regions(),
		Placeholder: widget.DefaultPlaceholder,
	})
	if err != nil {
		return fmt.Errorf("render: cascade region: %w", err)
	}
	if ok {
		cascade.SelectRegion(region)
	}

	province, ok, err := controls.Select(ctx, widget.SelectSpec{
		Key:         KeyProvince,
		Label:       strings.TrimSuffix(labels.Province, ":"),
		Options:     resolver.Provinces(cascade.Region),
		Placeholder: widget.DefaultPlaceholder,
		Disabled:    !cascade.ProvinceEnabled(),
	})
	if err != nil {
		return fmt.Errorf("render: cascade province: %w", err)
	}
	if ok && cascade.ProvinceEnabled() {
		cascade.SelectProvince(province)
	}

	district, ok, err := controls.Select(ctx, widget.SelectSpec{
		Key:         KeyDistrict,
		Label:       strings.TrimSuffix(labels.District, ":"),
		Options:     resolver.Districts(cascade.Region, cascade.Province),
		Placeholder: widget.DefaultPlaceholder,
		Disabled:    !cascade.DistrictEnabled(),
	})
	if err != nil {
		return fmt.Errorf("render: cascade district: %w", err)
	}
	if ok && cascade.DistrictEnabled() {
		cascade.SelectDistrict(district)
	}

	if cascade.Normalize(resolver) {
		r.logger.Debug("cascade selection normalised",
			zap.String("region", cascade.Region),
			zap.String("province", cascade.Province))
	}

	set.Put(labels.Region, cascadeValue(cascade.Region))
	set.Put(labels.Province, cascadeValue(cascade.Province))
	set.Put(labels.District, cascadeValue(cascade.District))
	return nil
}

func cascadeValue(v string) answers.Value {
	if v == "" {
		return answers.NoSelection()
	}
	return answers.Text(v)
}
