package render

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/model"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

// FieldContext carries everything a kind renderer may touch. The only side
// effect a FieldFunc is allowed is writing Answers[Spec.Question].
type FieldContext struct {
	Controls widget.Controls
	Spec     model.FieldSpec
	Answers  *answers.Set
	Key      string
	Today    time.Time
	Sanitize func(string) string
}

// FieldFunc renders one field kind.
type FieldFunc func(ctx context.Context, fc FieldContext) error

// Registry maps every field kind to its render behaviour.
type Registry struct {
	mu    sync.RWMutex
	kinds map[model.FieldKind]FieldFunc
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[model.FieldKind]FieldFunc)}
}

// DefaultRegistry returns a registry with the built-in behaviour for every
// kind in model.FieldKinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(model.FieldKindText, renderText)
	r.MustRegister(model.FieldKindLongText, renderLongText)
	r.MustRegister(model.FieldKindSingleSelect, renderSingleSelect)
	r.MustRegister(model.FieldKindMultiSelect, renderMultiSelect)
	r.MustRegister(model.FieldKindDate, renderDate)
	r.MustRegister(model.FieldKindNumber, renderNumber)
	return r
}

// Register binds a kind to fn. Re-registering a kind returns an error.
func (r *Registry) Register(kind model.FieldKind, fn FieldFunc) error {
	if kind == "" {
		return fmt.Errorf("render: field kind is required")
	}
	if fn == nil {
		return fmt.Errorf("render: render func for %q is required", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.kinds[kind]; exists {
		return fmt.Errorf("render: kind %q already registered", kind)
	}
	r.kinds[kind] = fn
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(kind model.FieldKind, fn FieldFunc) {
	if err := r.Register(kind, fn); err != nil {
		panic(err)
	}
}

// Get retrieves the render func for kind.
func (r *Registry) Get(kind model.FieldKind) (FieldFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("render: no renderer for field kind %q", kind)
	}
	return fn, nil
}

// List returns the registered kinds, sorted.
func (r *Registry) List() []model.FieldKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]model.FieldKind, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Complete fails when any kind in model.FieldKinds has no renderer.
func (r *Registry) Complete() error {
	for _, kind := range model.FieldKinds {
		if _, err := r.Get(kind); err != nil {
			return err
		}
	}
	return nil
}
