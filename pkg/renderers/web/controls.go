package web

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

// htmlDate is the value layout of <input type="date">.
const htmlDate = "2006-01-02"

// OptionView is one <option>.
type OptionView struct {
	Value    string
	Selected bool
}

// FieldView describes one control for the page template.
type FieldView struct {
	Kind        string
	Key         string
	Label       string
	Value       string
	Options     []OptionView
	Placeholder string
	Disabled    bool
	ReadOnly    bool
	Min         string
	Max         string
	Errors      []string
}

// SectionView groups the fields of a category.
type SectionView struct {
	Title  string
	Fields []FieldView
}

// Controls implements widget.Controls over posted form values. Without
// posted values the session's remembered widget state is shown. Every
// control is recorded as a FieldView for the page.
type Controls struct {
	posted   url.Values
	session  *answers.Session
	sections []SectionView
}

var _ widget.Controls = (*Controls)(nil)

// NewControls reads posted values, or the session state when posted is nil.
func NewControls(session *answers.Session, posted url.Values) *Controls {
	return &Controls{posted: posted, session: session}
}

// Sections returns the recorded page layout.
func (c *Controls) Sections() []SectionView {
	return c.sections
}

// Annotate attaches mapped violation messages to the recorded fields.
func (c *Controls) Annotate(mapping render.ErrorMapping) {
	for i := range c.sections {
		fields := c.sections[i].Fields
		for j := range fields {
			fields[j].Errors = mapping.For(fields[j].Key)
		}
	}
}

func (c *Controls) add(view FieldView) {
	if len(c.sections) == 0 {
		c.sections = append(c.sections, SectionView{})
	}
	last := &c.sections[len(c.sections)-1]
	last.Fields = append(last.Fields, view)
}

func (c *Controls) value(key string) string {
	if c.posted != nil {
		v := strings.TrimSpace(c.posted.Get(key))
		c.session.SetWidget(key, v)
		return v
	}
	if v, ok := c.session.Widget(key); ok {
		s, _ := v.(string)
		return s
	}
	return ""
}

func (c *Controls) values(key string) []string {
	if c.posted != nil {
		v := append([]string(nil), c.posted[key]...)
		c.session.SetWidget(key, v)
		return v
	}
	if v, ok := c.session.Widget(key); ok {
		s, _ := v.([]string)
		return s
	}
	return nil
}

// Section implements widget.Controls.
func (c *Controls) Section(_ context.Context, title string) error {
	c.sections = append(c.sections, SectionView{Title: title})
	return nil
}

// Text implements widget.Controls.
func (c *Controls) Text(_ context.Context, spec widget.TextSpec) (string, error) {
	v := c.value(spec.Key)
	c.add(FieldView{Kind: "text", Key: spec.Key, Label: spec.Label, Value: v})
	return v, nil
}

// TextArea implements widget.Controls.
func (c *Controls) TextArea(_ context.Context, spec widget.TextSpec) (string, error) {
	v := c.value(spec.Key)
	c.add(FieldView{Kind: "textarea", Key: spec.Key, Label: spec.Label, Value: v})
	return v, nil
}

// Select implements widget.Controls. Values outside the offered options
// count as no selection.
func (c *Controls) Select(_ context.Context, spec widget.SelectSpec) (string, bool, error) {
	v := c.value(spec.Key)
	if spec.Disabled || !contains(spec.Options, v) {
		v = ""
	}
	view := FieldView{
		Kind:        "select",
		Key:         spec.Key,
		Label:       spec.Label,
		Value:       v,
		Placeholder: spec.Placeholder,
		Disabled:    spec.Disabled,
	}
	for _, option := range spec.Options {
		view.Options = append(view.Options, OptionView{Value: option, Selected: option == v})
	}
	c.add(view)
	return v, v != "", nil
}

// MultiSelect implements widget.Controls.
func (c *Controls) MultiSelect(_ context.Context, spec widget.SelectSpec) ([]string, error) {
	chosen := c.values(spec.Key)
	var kept []string
	view := FieldView{Kind: "multiselect", Key: spec.Key, Label: spec.Label}
	for _, option := range spec.Options {
		selected := contains(chosen, option)
		if selected {
			kept = append(kept, option)
		}
		view.Options = append(view.Options, OptionView{Value: option, Selected: selected})
	}
	c.add(view)
	return kept, nil
}

// Date implements widget.Controls. Both the browser layout (YYYY-MM-DD) and
// DD/MM/YYYY are accepted.
func (c *Controls) Date(_ context.Context, spec widget.DateSpec) (*time.Time, error) {
	raw := c.value(spec.Key)
	view := FieldView{Kind: "date", Key: spec.Key, Label: spec.Label}
	if !spec.Min.IsZero() {
		view.Min = spec.Min.Format(htmlDate)
	}
	if !spec.Max.IsZero() {
		view.Max = spec.Max.Format(htmlDate)
	}

	parsed, ok := parseDate(raw, spec.Max.Location())
	if ok && !spec.InRange(parsed) {
		ok = false
	}
	if !ok {
		c.add(view)
		return nil, nil
	}
	view.Value = parsed.Format(htmlDate)
	c.add(view)
	return &parsed, nil
}

// Number implements widget.Controls.
func (c *Controls) Number(_ context.Context, spec widget.NumberSpec) (int, error) {
	view := FieldView{Kind: "number", Key: spec.Key, Label: spec.Label, ReadOnly: spec.ReadOnly, Min: strconv.Itoa(spec.Min)}
	if spec.ReadOnly {
		view.Value = strconv.Itoa(spec.Value)
		c.add(view)
		return spec.Value, nil
	}
	n := spec.Value
	if raw := c.value(spec.Key); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			n = parsed
		}
	}
	if n < spec.Min {
		n = spec.Min
	}
	view.Value = strconv.Itoa(n)
	c.add(view)
	return n, nil
}

func parseDate(raw string, loc *time.Location) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{htmlDate, widget.DateLayout} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
