package render

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

func renderText(ctx context.Context, fc FieldContext) error {
	raw, err := fc.Controls.Text(ctx, widget.TextSpec{Key: fc.Key, Label: fc.Spec.Question})
	if err != nil {
		return err
	}
	fc.Answers.Put(fc.Spec.Question, answers.Text(fc.Sanitize(raw)))
	return nil
}

func renderLongText(ctx context.Context, fc FieldContext) error {
	raw, err := fc.Controls.TextArea(ctx, widget.TextSpec{Key: fc.Key, Label: fc.Spec.Question})
	if err != nil {
		return err
	}
	fc.Answers.Put(fc.Spec.Question, answers.Text(fc.Sanitize(raw)))
	return nil
}

func renderSingleSelect(ctx context.Context, fc FieldContext) error {
	value, ok, err := fc.Controls.Select(ctx, widget.SelectSpec{
		Key:         fc.Key,
		Label:       fc.Spec.Question,
		Options:     fc.Spec.Options,
		Placeholder: widget.DefaultPlaceholder,
	})
	if err != nil {
		return err
	}
	fc.Answers.Put(fc.Spec.Question, selection(value, ok, fc.Spec.Options))
	return nil
}

func renderMultiSelect(ctx context.Context, fc FieldContext) error {
	chosen, err := fc.Controls.MultiSelect(ctx, widget.SelectSpec{
		Key:     fc.Key,
		Label:   fc.Spec.Question,
		Options: fc.Spec.Options,
	})
	if err != nil {
		return err
	}
	fc.Answers.Put(fc.Spec.Question, answers.Text(strings.Join(inOptionOrder(fc.Spec.Options, chosen), ", ")))
	return nil
}

func renderDate(ctx context.Context, fc FieldContext) error {
	_, err := renderDateValue(ctx, fc)
	return err
}

func renderNumber(ctx context.Context, fc FieldContext) error {
	n, err := fc.Controls.Number(ctx, widget.NumberSpec{Key: fc.Key, Label: fc.Spec.Question, Min: 0})
	if err != nil {
		return err
	}
	if n < 0 {
		n = 0
	}
	fc.Answers.Put(fc.Spec.Question, answers.Number(n))
	return nil
}

// selection maps a control result onto an answer, treating values outside
// the option list as no selection.
func selection(value string, ok bool, options []string) answers.Value {
	if !ok || !containsOption(options, value) {
		return answers.NoSelection()
	}
	return answers.Text(value)
}

func inOptionOrder(options, chosen []string) []string {
	picked := make(map[string]struct{}, len(chosen))
	for _, c := range chosen {
		picked[c] = struct{}{}
	}
	out := make([]string, 0, len(chosen))
	for _, option := range options {
		if _, ok := picked[option]; ok {
			out = append(out, option)
		}
	}
	return out
}

func containsOption(options []string, value string) bool {
	for _, option := range options {
		if option == value {
			return true
		}
	}
	return false
}

// EarliestDate returns the lower bound of every date control, 1920-01-01 in
// loc.
func EarliestDate(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(1920, time.January, 1, 0, 0, 0, 0, loc)
}

// renderDateValue records the date answer and returns the picked date, or nil
// when unset or outside [EarliestDate, today].
func renderDateValue(ctx context.Context, fc FieldContext) (*time.Time, error) {
	spec := widget.DateSpec{
		Key:   fc.Key,
		Label: fc.Spec.Question,
		Min:   EarliestDate(fc.Today.Location()),
		Max:   fc.Today,
	}
	picked, err := fc.Controls.Date(ctx, spec)
	if err != nil {
		return nil, err
	}
	if picked == nil || !spec.InRange(*picked) {
		fc.Answers.Put(fc.Spec.Question, answers.Text(""))
		return nil, nil
	}
	fc.Answers.Put(fc.Spec.Question, answers.Text(picked.Format(widget.DateLayout)))
	return picked, nil
}
