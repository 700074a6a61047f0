package model

import internalmodel "github.com/goliatone/go-formsheet/internal/model"

// FieldKind re-exports the internal FieldKind enumeration.
type FieldKind = internalmodel.FieldKind

const (
	FieldKindText         = internalmodel.FieldKindText
	FieldKindLongText     = internalmodel.FieldKindLongText
	FieldKindSingleSelect = internalmodel.FieldKindSingleSelect
	FieldKindMultiSelect  = internalmodel.FieldKindMultiSelect
	FieldKindDate         = internalmodel.FieldKindDate
	FieldKindNumber       = internalmodel.FieldKindNumber
)

// Role re-exports the internal Role tags.
type Role = internalmodel.Role

const (
	RoleNone            = internalmodel.RoleNone
	RoleName            = internalmodel.RoleName
	RoleSurname         = internalmodel.RoleSurname
	RoleSubjectSelector = internalmodel.RoleSubjectSelector
	RoleBirthDate       = internalmodel.RoleBirthDate
	RoleAge             = internalmodel.RoleAge
	RoleRegion          = internalmodel.RoleRegion
	RoleProvince        = internalmodel.RoleProvince
	RoleDistrict        = internalmodel.RoleDistrict
)

type FieldSpec = internalmodel.FieldSpec
type Schema = internalmodel.Schema
type GeoRecord = internalmodel.GeoRecord

// FieldKinds lists every supported kind.
var FieldKinds = internalmodel.FieldKinds

// ParseFieldKind resolves a raw kind cell, accepting canonical names and the
// widget aliases used by existing schema sheets.
func ParseFieldKind(raw string) (FieldKind, error) {
	return internalmodel.ParseFieldKind(raw)
}

// ParseRole resolves an explicit role cell.
func ParseRole(raw string) (Role, error) {
	return internalmodel.ParseRole(raw)
}

// ClassifyRole infers a role from a question label.
func ClassifyRole(question string) Role {
	return internalmodel.ClassifyRole(question)
}

// FoldLabel normalises a header or label for comparisons.
func FoldLabel(label string) string {
	return internalmodel.FoldLabel(label)
}
