package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/widget"
)

// Theme captures optional message prefixes.
type Theme struct {
	SectionPrefix string
	InfoPrefix    string
	ErrorPrefix   string
}

// DefaultTheme mirrors the markers used by the web page.
func DefaultTheme() Theme {
	return Theme{SectionPrefix: "== ", InfoPrefix: "✅ ", ErrorPrefix: "⚠️ "}
}

// Controls implements widget.Controls on a PromptDriver. Raw widget values
// are remembered in the session under each stable key and offered as
// defaults on the next pass.
type Controls struct {
	driver  PromptDriver
	session *answers.Session
	theme   Theme
}

var _ widget.Controls = (*Controls)(nil)

// NewControls binds driver to session.
func NewControls(driver PromptDriver, session *answers.Session, theme Theme) *Controls {
	return &Controls{driver: driver, session: session, theme: theme}
}

// Section implements widget.Controls.
func (c *Controls) Section(ctx context.Context, title string) error {
	return c.driver.Info(ctx, c.theme.SectionPrefix+title)
}

// Text implements widget.Controls.
func (c *Controls) Text(ctx context.Context, spec widget.TextSpec) (string, error) {
	value, err := c.driver.Input(ctx, InputConfig{Message: spec.Label, Default: c.rememberedText(spec.Key)})
	if err != nil {
		return "", err
	}
	c.session.SetWidget(spec.Key, value)
	return value, nil
}

// TextArea implements widget.Controls.
func (c *Controls) TextArea(ctx context.Context, spec widget.TextSpec) (string, error) {
	value, err := c.driver.TextArea(ctx, TextAreaConfig{Message: spec.Label, Default: c.rememberedText(spec.Key)})
	if err != nil {
		return "", err
	}
	c.session.SetWidget(spec.Key, value)
	return value, nil
}

// Select implements widget.Controls. The first entry is the placeholder; a
// disabled select is announced and not prompted.
func (c *Controls) Select(ctx context.Context, spec widget.SelectSpec) (string, bool, error) {
	if spec.Disabled {
		c.session.SetWidget(spec.Key, "")
		return "", false, c.driver.Info(ctx, fmt.Sprintf("%s: %s", spec.Label, placeholder(spec)))
	}

	options := append([]string{placeholder(spec)}, spec.Options...)
	def := 0
	if remembered := c.rememberedText(spec.Key); remembered != "" {
		if idx := indexOf(spec.Options, remembered); idx >= 0 {
			def = idx + 1
		}
	}

	idx, err := c.driver.Select(ctx, SelectConfig{Message: spec.Label, Options: options, DefaultIndex: def})
	if err != nil {
		return "", false, err
	}
	if idx <= 0 || idx >= len(options) {
		c.session.SetWidget(spec.Key, "")
		return "", false, nil
	}
	value := options[idx]
	c.session.SetWidget(spec.Key, value)
	return value, true, nil
}

// MultiSelect implements widget.Controls.
func (c *Controls) MultiSelect(ctx context.Context, spec widget.SelectSpec) ([]string, error) {
	var defaults []int
	if remembered, ok := c.session.Widget(spec.Key); ok {
		if chosen, ok := remembered.([]string); ok {
			defaults = indicesOf(spec.Options, chosen)
		}
	}
	indices, err := c.driver.MultiSelect(ctx, SelectConfig{Message: spec.Label, Options: spec.Options, Defaults: defaults})
	if err != nil {
		return nil, err
	}
	chosen := defaultsFromIndices(spec.Options, indices)
	c.session.SetWidget(spec.Key, chosen)
	return chosen, nil
}

// Date implements widget.Controls. Input is DD/MM/YYYY; blank leaves the
// date unset.
func (c *Controls) Date(ctx context.Context, spec widget.DateSpec) (*time.Time, error) {
	raw, err := c.driver.Input(ctx, InputConfig{
		Message:   spec.Label,
		Default:   c.rememberedText(spec.Key),
		Help:      fmt.Sprintf("DD/MM/AAAA entre %s y %s", spec.Min.Format(widget.DateLayout), spec.Max.Format(widget.DateLayout)),
		Validator: dateValidator(spec),
	})
	if err != nil {
		return nil, err
	}
	raw = strings.TrimSpace(raw)
	c.session.SetWidget(spec.Key, raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw, spec)
	if err != nil {
		return nil, nil
	}
	return &parsed, nil
}

// Number implements widget.Controls. Read-only numbers are printed, not
// prompted.
func (c *Controls) Number(ctx context.Context, spec widget.NumberSpec) (int, error) {
	if spec.ReadOnly {
		return spec.Value, c.driver.Info(ctx, fmt.Sprintf("%s: %d", spec.Label, spec.Value))
	}
	def := c.rememberedText(spec.Key)
	if def == "" {
		def = strconv.Itoa(spec.Value)
	}
	raw, err := c.driver.Input(ctx, InputConfig{
		Message: spec.Label,
		Default: def,
		Validator: func(s string) error {
			_, err := parseNumber(s, spec.Min)
			return err
		},
	})
	if err != nil {
		return 0, err
	}
	c.session.SetWidget(spec.Key, strings.TrimSpace(raw))
	n, err := parseNumber(raw, spec.Min)
	if err != nil {
		return spec.Min, nil
	}
	return n, nil
}

func (c *Controls) rememberedText(key string) string {
	v, ok := c.session.Widget(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func placeholder(spec widget.SelectSpec) string {
	if spec.Placeholder != "" {
		return spec.Placeholder
	}
	return widget.DefaultPlaceholder
}

func dateValidator(spec widget.DateSpec) func(string) error {
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			return nil
		}
		_, err := parseDate(strings.TrimSpace(raw), spec)
		return err
	}
}

func parseDate(raw string, spec widget.DateSpec) (time.Time, error) {
	parsed, err := time.ParseInLocation(widget.DateLayout, raw, spec.Max.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha inválida, use DD/MM/AAAA")
	}
	if spec.BeforeMin(parsed) {
		return time.Time{}, fmt.Errorf("la fecha no puede ser anterior a %s", spec.Min.Format(widget.DateLayout))
	}
	if spec.AfterMax(parsed) {
		return time.Time{}, fmt.Errorf("la fecha no puede ser posterior a %s", spec.Max.Format(widget.DateLayout))
	}
	return parsed, nil
}

func parseNumber(raw string, min int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return min, nil
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("ingrese un número entero")
	}
	if n < min {
		return 0, fmt.Errorf("el valor mínimo es %d", min)
	}
	return n, nil
}
