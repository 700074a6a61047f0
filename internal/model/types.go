package model

import (
	"fmt"
	"strings"
)

// FieldKind is the closed set of input kinds a schema row can declare.
type FieldKind string

const (
	FieldKindText         FieldKind = "text"
	FieldKindLongText     FieldKind = "long_text"
	FieldKindSingleSelect FieldKind = "single_select"
	FieldKindMultiSelect  FieldKind = "multi_select"
	FieldKindDate         FieldKind = "date"
	FieldKindNumber       FieldKind = "number"
)

// FieldKinds lists every supported kind in declaration order.
var FieldKinds = []FieldKind{
	FieldKindText,
	FieldKindLongText,
	FieldKindSingleSelect,
	FieldKindMultiSelect,
	FieldKindDate,
	FieldKindNumber,
}

// kindAliases maps widget names found in existing schema sheets onto the
// canonical kinds.
var kindAliases = map[string]FieldKind{
	"text":          FieldKindText,
	"text_input":    FieldKindText,
	"long_text":     FieldKindLongText,
	"text_area":     FieldKindLongText,
	"textarea":      FieldKindLongText,
	"single_select": FieldKindSingleSelect,
	"selectbox":     FieldKindSingleSelect,
	"select":        FieldKindSingleSelect,
	"multi_select":  FieldKindMultiSelect,
	"multiselect":   FieldKindMultiSelect,
	"date":          FieldKindDate,
	"date_input":    FieldKindDate,
	"number":        FieldKindNumber,
	"number_input":  FieldKindNumber,
}

// ParseFieldKind resolves a raw kind cell. Matching is case-insensitive and
// ignores surrounding whitespace. Unknown kinds return an error.
func ParseFieldKind(raw string) (FieldKind, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return "", fmt.Errorf("model: empty field kind")
	}
	kind, ok := kindAliases[key]
	if !ok {
		return "", fmt.Errorf("model: unknown field kind %q", raw)
	}
	return kind, nil
}

// Selectable reports whether the kind carries an option list.
func (k FieldKind) Selectable() bool {
	return k == FieldKindSingleSelect || k == FieldKindMultiSelect
}

// Role tags fields that take part in cross-field behaviour (cascade, derived
// values, validation rules).
type Role string

const (
	RoleNone            Role = ""
	RoleName            Role = "name"
	RoleSurname         Role = "surname"
	RoleSubjectSelector Role = "subject"
	RoleBirthDate       Role = "birth_date"
	RoleAge             Role = "age"
	RoleRegion          Role = "region"
	RoleProvince        Role = "province"
	RoleDistrict        Role = "district"
)

var roleAliases = map[string]Role{
	"":              RoleNone,
	"none":          RoleNone,
	"name":          RoleName,
	"nombre":        RoleName,
	"surname":       RoleSurname,
	"apellido":      RoleSurname,
	"subject":       RoleSubjectSelector,
	"stakeholder":   RoleSubjectSelector,
	"birth_date":    RoleBirthDate,
	"nacimiento":    RoleBirthDate,
	"age":           RoleAge,
	"edad":          RoleAge,
	"region":        RoleRegion,
	"departamento":  RoleRegion,
	"province":      RoleProvince,
	"provincia":     RoleProvince,
	"district":      RoleDistrict,
	"distrito":      RoleDistrict,
}

// ParseRole resolves an explicit role cell.
func ParseRole(raw string) (Role, error) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return RoleNone, fmt.Errorf("model: unknown field role %q", raw)
	}
	return role, nil
}

// Geographic reports whether the role belongs to the region cascade.
func (r Role) Geographic() bool {
	return r == RoleRegion || r == RoleProvince || r == RoleDistrict
}

// FieldSpec is one declarative schema row.
type FieldSpec struct {
	Category string    `json:"category"`
	Question string    `json:"question"`
	Kind     FieldKind `json:"kind"`
	Options  []string  `json:"options,omitempty"`
	Role     Role      `json:"role,omitempty"`
	// Row is the 1-based source row (header = 1).
	Row int `json:"row,omitempty"`
}

// Renderable reports whether the field carries the minimum needed to render.
func (f FieldSpec) Renderable() bool {
	return strings.TrimSpace(f.Question) != "" && f.Kind != ""
}

// Schema is the ordered field list of one form.
type Schema struct {
	Fields     []FieldSpec `json:"fields"`
	Categories []string    `json:"categories"`
	// Skipped holds source rows dropped for a blank question or kind.
	Skipped []int `json:"skipped,omitempty"`
}

// ByCategory returns the fields of a category in source order.
func (s Schema) ByCategory(category string) []FieldSpec {
	var out []FieldSpec
	for _, field := range s.Fields {
		if field.Category == category {
			out = append(out, field)
		}
	}
	return out
}

// HasRole reports whether any field carries the role.
func (s Schema) HasRole(role Role) bool {
	for _, field := range s.Fields {
		if field.Role == role {
			return true
		}
	}
	return false
}

// FieldsWithRole returns the fields carrying the role in source order.
func (s Schema) FieldsWithRole(role Role) []FieldSpec {
	var out []FieldSpec
	for _, field := range s.Fields {
		if field.Role == role {
			out = append(out, field)
		}
	}
	return out
}

// Lookup returns the field keyed by question.
func (s Schema) Lookup(question string) (FieldSpec, bool) {
	for _, field := range s.Fields {
		if field.Question == question {
			return field, true
		}
	}
	return FieldSpec{}, false
}

// GeoRecord is one administrative unit of the reference table.
type GeoRecord struct {
	Region   string `json:"region"`
	Province string `json:"province"`
	District string `json:"district"`
}
