package render

import (
	"strings"

	"github.com/goliatone/go-formsheet/pkg/validation"
)

// ErrorMapping splits violations into messages attached to a control
// (keyed by widget key) and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// For returns the messages attached to a widget key.
func (m ErrorMapping) For(key string) []string {
	return m.Fields[key]
}

// MapViolations attaches each violation to the control that produced its
// answer. Violations naming an answer no control writes stay form-level so
// messages are not lost.
func MapViolations(pass Pass, violations []validation.Violation) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}

	keys := make(map[string]string, len(pass.Schema.Fields)+3)
	for _, field := range pass.Schema.Fields {
		if field.Renderable() {
			keys[field.Question] = WidgetKey(field)
		}
	}
	if pass.HasCascade() {
		labels := pass.CascadeKeys()
		keys[labels.Region] = KeyRegion
		keys[labels.Province] = KeyProvince
		keys[labels.District] = KeyDistrict
	}

	for _, v := range violations {
		msg := strings.TrimSpace(v.Message)
		if msg == "" {
			continue
		}
		key, ok := keys[v.Field]
		if !ok {
			mapping.Form = appendUnique(mapping.Form, msg)
			continue
		}
		mapping.Fields[key] = appendUnique(mapping.Fields[key], msg)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

func appendUnique(messages []string, msg string) []string {
	for _, existing := range messages {
		if existing == msg {
			return messages
		}
	}
	return append(messages, msg)
}
