package validation

import (
	"strings"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/model"
)

// Cascade names the answer keys the region cascade writes. Enabled is false
// for forms without a cascade.
type Cascade struct {
	Enabled  bool
	Region   string
	Province string
	District string
}

// CascadeRequired demands a region and a province. The district is optional.
func CascadeRequired(c Cascade) Rule {
	return RuleFunc(func(_ model.Schema, set *answers.Set) []Violation {
		if !c.Enabled {
			return nil
		}
		var out []Violation
		for _, key := range []string{c.Region, c.Province} {
			if key == "" {
				continue
			}
			if value, ok := set.Get(key); !ok || value.Empty() {
				out = append(out, Violation{
					Field:   key,
					Message: "Falta seleccionar " + displayLabel(key) + ".",
				})
			}
		}
		return out
	})
}

// AnyNonEmpty demands at least one non-empty answer among the fields carrying
// role. Forms without such fields pass.
func AnyNonEmpty(role model.Role) Rule {
	return RuleFunc(func(schema model.Schema, set *answers.Set) []Violation {
		fields := schema.FieldsWithRole(role)
		if len(fields) == 0 {
			return nil
		}
		for _, field := range fields {
			if value, ok := set.Get(field.Question); ok && strings.TrimSpace(value.String()) != "" {
				return nil
			}
		}
		return []Violation{{Field: fields[0].Question, Message: missingMessage(role, fields[0].Question)}}
	})
}

// SelectionRequired demands a real selection on every field carrying role.
func SelectionRequired(role model.Role) Rule {
	return RuleFunc(func(schema model.Schema, set *answers.Set) []Violation {
		var out []Violation
		for _, field := range schema.FieldsWithRole(role) {
			if value, ok := set.Get(field.Question); ok && value.Selected() && !value.Empty() {
				continue
			}
			out = append(out, Violation{Field: field.Question, Message: missingMessage(role, field.Question)})
		}
		return out
	})
}

// ForSchema assembles the default rules that apply to schema.
func ForSchema(schema model.Schema, cascade Cascade) *Validator {
	rules := []Rule{CascadeRequired(cascade)}
	if schema.HasRole(model.RoleName) {
		rules = append(rules, AnyNonEmpty(model.RoleName))
	}
	if schema.HasRole(model.RoleSurname) {
		rules = append(rules, AnyNonEmpty(model.RoleSurname))
	}
	if schema.HasRole(model.RoleSubjectSelector) {
		rules = append(rules, SelectionRequired(model.RoleSubjectSelector))
	}
	return New(rules...)
}

func missingMessage(role model.Role, question string) string {
	switch role {
	case model.RoleName:
		return "Falta completar el Nombre."
	case model.RoleSurname:
		return "Falta completar el Apellido Paterno."
	case model.RoleSubjectSelector:
		return "Debe seleccionar un Stakeholder."
	}
	return "Falta completar " + displayLabel(question) + "."
}

func displayLabel(key string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(key), ":"))
}
