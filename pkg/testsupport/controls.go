package testsupport

import (
	"context"
	"time"

	"github.com/goliatone/go-formsheet/pkg/widget"
)

// Call records one control invocation.
type Call struct {
	Kind     string
	Key      string
	Label    string
	Options  []string
	Disabled bool
	ReadOnly bool
	Value    int
}

// ScriptedControls answers controls from maps keyed by label. Unscripted
// controls behave as untouched widgets.
type ScriptedControls struct {
	Texts    map[string]string
	Selects  map[string]string
	Multi    map[string][]string
	Dates    map[string]time.Time
	Numbers  map[string]int
	Sections []string
	Calls    []Call
}

var _ widget.Controls = (*ScriptedControls)(nil)

// Section implements widget.Controls.
func (c *ScriptedControls) Section(_ context.Context, title string) error {
	c.Sections = append(c.Sections, title)
	return nil
}

// Text implements widget.Controls.
func (c *ScriptedControls) Text(_ context.Context, spec widget.TextSpec) (string, error) {
	c.Calls = append(c.Calls, Call{Kind: "text", Key: spec.Key, Label: spec.Label})
	return c.Texts[spec.Label], nil
}

// TextArea implements widget.Controls.
func (c *ScriptedControls) TextArea(_ context.Context, spec widget.TextSpec) (string, error) {
	c.Calls = append(c.Calls, Call{Kind: "textarea", Key: spec.Key, Label: spec.Label})
	return c.Texts[spec.Label], nil
}

// Select implements widget.Controls. A scripted value outside the offered
// options is rejected the way a real widget would.
func (c *ScriptedControls) Select(_ context.Context, spec widget.SelectSpec) (string, bool, error) {
	c.Calls = append(c.Calls, Call{Kind: "select", Key: spec.Key, Label: spec.Label, Options: spec.Options, Disabled: spec.Disabled})
	if spec.Disabled {
		return "", false, nil
	}
	value, ok := c.Selects[spec.Label]
	if !ok {
		return "", false, nil
	}
	for _, option := range spec.Options {
		if option == value {
			return value, true, nil
		}
	}
	return "", false, nil
}

// MultiSelect implements widget.Controls.
func (c *ScriptedControls) MultiSelect(_ context.Context, spec widget.SelectSpec) ([]string, error) {
	c.Calls = append(c.Calls, Call{Kind: "multiselect", Key: spec.Key, Label: spec.Label, Options: spec.Options})
	return c.Multi[spec.Label], nil
}

// Date implements widget.Controls.
func (c *ScriptedControls) Date(_ context.Context, spec widget.DateSpec) (*time.Time, error) {
	c.Calls = append(c.Calls, Call{Kind: "date", Key: spec.Key, Label: spec.Label})
	if d, ok := c.Dates[spec.Label]; ok {
		return &d, nil
	}
	return nil, nil
}

// Number implements widget.Controls.
func (c *ScriptedControls) Number(_ context.Context, spec widget.NumberSpec) (int, error) {
	c.Calls = append(c.Calls, Call{Kind: "number", Key: spec.Key, Label: spec.Label, ReadOnly: spec.ReadOnly, Value: spec.Value})
	if spec.ReadOnly {
		return spec.Value, nil
	}
	return c.Numbers[spec.Label], nil
}

// Find returns the first recorded call for label.
func (c *ScriptedControls) Find(label string) (Call, bool) {
	for _, call := range c.Calls {
		if call.Label == label {
			return call, true
		}
	}
	return Call{}, false
}
