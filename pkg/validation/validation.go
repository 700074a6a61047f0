// Package validation checks a filled answer set against the cross-field rules
// of a form before anything is written.
package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/model"
)

// Violation is one failed rule, addressed to the label the user sees.
type Violation struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Rule inspects an answer set. It returns nil when satisfied.
type Rule interface {
	Check(schema model.Schema, set *answers.Set) []Violation
}

// RuleFunc adapts a function to Rule.
type RuleFunc func(schema model.Schema, set *answers.Set) []Violation

// Check implements Rule.
func (f RuleFunc) Check(schema model.Schema, set *answers.Set) []Violation {
	return f(schema, set)
}

// Error wraps a non-empty violation list.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "validation: no violations"
	}
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Message)
	}
	return fmt.Sprintf("validation: %s", strings.Join(messages, " "))
}

// Messages returns the violation messages in rule order.
func (e *Error) Messages() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Validator runs an ordered rule list.
type Validator struct {
	rules []Rule
}

// New constructs a validator from rules; nil rules are ignored.
func New(rules ...Rule) *Validator {
	v := &Validator{}
	for _, rule := range rules {
		if rule != nil {
			v.rules = append(v.rules, rule)
		}
	}
	return v
}

// Rules returns the number of configured rules.
func (v *Validator) Rules() int {
	if v == nil {
		return 0
	}
	return len(v.rules)
}

// Check runs every rule and returns all violations in rule order.
func (v *Validator) Check(schema model.Schema, set *answers.Set) []Violation {
	if v == nil {
		return nil
	}
	var out []Violation
	for _, rule := range v.rules {
		out = append(out, rule.Check(schema, set)...)
	}
	return out
}

// Validate returns a *Error when any rule fails.
func (v *Validator) Validate(schema model.Schema, set *answers.Set) error {
	violations := v.Check(schema, set)
	if len(violations) == 0 {
		return nil
	}
	return &Error{Violations: violations}
}
