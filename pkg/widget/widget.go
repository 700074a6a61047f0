// Package widget declares the primitive input controls a front-end must
// provide. Every control takes a stable Key so repeated renders of the same
// form map onto the same remembered state.
package widget

import (
	"context"
	"time"
)

// TextSpec configures single- and multi-line text entry.
type TextSpec struct {
	Key   string
	Label string
}

// SelectSpec configures single and multiple choice controls.
type SelectSpec struct {
	Key         string
	Label       string
	Options     []string
	Placeholder string
	Disabled    bool
}

// DateSpec configures a bounded calendar date picker.
type DateSpec struct {
	Key   string
	Label string
	Min   time.Time
	Max   time.Time
}

// BeforeMin reports whether d falls on a calendar day before Min. Days are
// compared in each value's own location, so a bound and a pick built in
// different zones still agree on the date.
func (s DateSpec) BeforeMin(d time.Time) bool {
	return !s.Min.IsZero() && calendarDay(d) < calendarDay(s.Min)
}

// AfterMax reports whether d falls on a calendar day after Max.
func (s DateSpec) AfterMax(d time.Time) bool {
	return !s.Max.IsZero() && calendarDay(d) > calendarDay(s.Max)
}

// InRange reports whether d lies within [Min, Max] by calendar day.
func (s DateSpec) InRange(d time.Time) bool {
	return !s.BeforeMin(d) && !s.AfterMax(d)
}

func calendarDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// NumberSpec configures integer entry. ReadOnly controls display Value and
// never accept input.
type NumberSpec struct {
	Key      string
	Label    string
	Value    int
	Min      int
	ReadOnly bool
}

// Controls is the UI toolkit seen by the renderer.
type Controls interface {
	// Section announces a category heading.
	Section(ctx context.Context, title string) error
	Text(ctx context.Context, spec TextSpec) (string, error)
	TextArea(ctx context.Context, spec TextSpec) (string, error)
	// Select returns the chosen option and false when nothing is selected.
	Select(ctx context.Context, spec SelectSpec) (string, bool, error)
	// MultiSelect returns the chosen options in option order.
	MultiSelect(ctx context.Context, spec SelectSpec) ([]string, error)
	// Date returns nil when no date is chosen.
	Date(ctx context.Context, spec DateSpec) (*time.Time, error)
	Number(ctx context.Context, spec NumberSpec) (int, error)
}

// DateLayout is the serialised form of date answers.
const DateLayout = "02/01/2006"

// DefaultPlaceholder is shown on single-choice controls without a selection.
const DefaultPlaceholder = "Seleccione..."
