package schema

import (
	"context"
	"fmt"
	"io/fs"
	"strings"

	"github.com/goliatone/go-formsheet/pkg/model"
)

// Recognised schema headers. Matching folds case, whitespace and accents, so
// "Categoría" and "categoria" both resolve.
const (
	ColumnCategory = "categoría"
	ColumnQuestion = "pregunta"
	ColumnKind     = "tipo"
	ColumnOptions  = "opciones"
	ColumnRole     = "rol"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFS supplies the filesystem used by SourceFromFS sources.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// Loader reads field schemas and other reference tables.
type Loader struct {
	fs fs.FS
}

// NewLoader constructs a Loader applying the provided options.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load reads a field-definition table into an ordered schema. Rows with a
// blank question or kind are dropped and reported through Schema.Skipped;
// unknown kinds, unknown roles and duplicate questions fail the load.
func (l *Loader) Load(ctx context.Context, src Source) (model.Schema, error) {
	table, err := l.ReadTable(ctx, src)
	if err != nil {
		return model.Schema{}, err
	}
	return Parse(table)
}

// Parse converts a decoded table into a schema.
func Parse(table Table) (model.Schema, error) {
	cols, err := table.RequireColumns(ColumnQuestion, ColumnKind)
	if err != nil {
		return model.Schema{}, err
	}
	questionCol, kindCol := cols[0], cols[1]
	categoryCol := table.Column(ColumnCategory)
	optionsCol := table.Column(ColumnOptions)
	roleCol := table.Column(ColumnRole)

	var schema model.Schema
	seenCategory := make(map[string]struct{})
	seenQuestion := make(map[string]int)

	for idx, row := range table.Rows {
		rowNum := idx + 2
		if blankRow(row) {
			continue
		}

		question := table.Cell(row, questionCol)
		rawKind := table.Cell(row, kindCol)
		if question == "" || rawKind == "" {
			schema.Skipped = append(schema.Skipped, rowNum)
			continue
		}

		kind, err := model.ParseFieldKind(rawKind)
		if err != nil {
			return model.Schema{}, fmt.Errorf("schema: row %d: %w", rowNum, err)
		}

		role := model.ClassifyRole(question)
		if rawRole := table.Cell(row, roleCol); rawRole != "" {
			role, err = model.ParseRole(rawRole)
			if err != nil {
				return model.Schema{}, fmt.Errorf("schema: row %d: %w", rowNum, err)
			}
		}

		if prev, dup := seenQuestion[question]; dup {
			return model.Schema{}, fmt.Errorf("schema: duplicate question %q (rows %d and %d)", question, prev, rowNum)
		}
		seenQuestion[question] = rowNum

		spec := model.FieldSpec{
			Category: table.Cell(row, categoryCol),
			Question: question,
			Kind:     kind,
			Role:     role,
			Row:      rowNum,
		}
		if kind.Selectable() {
			spec.Options = SplitOptions(table.Cell(row, optionsCol))
		}

		if _, ok := seenCategory[spec.Category]; !ok {
			seenCategory[spec.Category] = struct{}{}
			schema.Categories = append(schema.Categories, spec.Category)
		}
		schema.Fields = append(schema.Fields, spec)
	}

	return schema, nil
}

// SplitOptions splits a comma-delimited options cell, trimming entries and
// dropping empties while preserving order.
func SplitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
