package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// FoldLabel trims, case-folds and strips diacritics so "Categoría",
// " CATEGORIA " and "categoria" compare equal.
func FoldLabel(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, trimmed)
	if err != nil {
		stripped = trimmed
	}
	return folder.String(stripped)
}

// ClassifyRole infers a role from a question label. It is only consulted
// while loading a schema whose rows carry no explicit role.
func ClassifyRole(question string) Role {
	folded := FoldLabel(question)
	if folded == "" {
		return RoleNone
	}
	bare := strings.TrimSpace(strings.TrimRight(folded, ":"))

	switch bare {
	case "departamento", "region":
		return RoleRegion
	case "provincia":
		return RoleProvince
	case "distrito":
		return RoleDistrict
	}

	switch {
	case strings.Contains(folded, "nombre y apellido del stk"), strings.Contains(folded, "stakeholder"):
		return RoleSubjectSelector
	case strings.Contains(folded, "fecha de nacimiento"):
		return RoleBirthDate
	case hasWord(folded, "edad"):
		return RoleAge
	case strings.Contains(folded, "apellido"), strings.Contains(folded, "paterno"):
		return RoleSurname
	case strings.Contains(folded, "nombre"):
		return RoleName
	}
	return RoleNone
}

func hasWord(text, word string) bool {
	for _, token := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if token == word {
			return true
		}
	}
	return false
}
