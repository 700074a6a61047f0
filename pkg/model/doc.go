// Package model defines the field schema consumed by renderers: one FieldSpec
// per schema row, a closed FieldKind enumeration and Role tags assigned at
// load time. Role tags drive the region cascade, the derived age field and
// the validation rules, so nothing downstream inspects question wording.
// Types live in internal/model and are re-exported here.
package model
