// Package store defines the remote spreadsheet contract that submissions are
// appended to, plus the submission sink and a memoising reader built on it.
//
// A store is a named collection of tables. A table is an append-only list of
// rows addressed from 1, where row 1 is the header row. Backends live in the
// memstore, xlsxstore and sqlitestore subpackages.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-formsheet/pkg/model"
)

// ErrTableNotFound is returned by Store.Table for tables never created.
var ErrTableNotFound = errors.New("store: table not found")

// Record is one table row. Cells are plain strings.
type Record []string

// Connector opens stores by name.
type Connector interface {
	Connect(ctx context.Context, storeName string) (Store, error)
}

// Store is a named spreadsheet.
type Store interface {
	Name() string
	// Tables lists table names in creation order.
	Tables(ctx context.Context) ([]string, error)
	// Table opens an existing table or returns ErrTableNotFound.
	Table(ctx context.Context, name string) (Table, error)
	// EnsureTable opens the table, creating it empty when missing.
	EnsureTable(ctx context.Context, name string) (Table, error)
}

// Table is an append-only row list.
type Table interface {
	Name() string
	// Row returns the 1-based row n, or nil when the table is shorter.
	Row(ctx context.Context, n int) (Record, error)
	// ReadAll returns every row, header first.
	ReadAll(ctx context.Context) ([]Record, error)
	AppendRows(ctx context.Context, rows []Record) error
}

// Blank reports whether the record carries no non-empty cell.
func (r Record) Blank() bool {
	for _, cell := range r {
		if cell != "" {
			return false
		}
	}
	return true
}

// Cell returns column col or "" when the row is shorter.
func (r Record) Cell(col int) string {
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Column finds name in header using the same folding as schema headers.
// It returns -1 when absent.
func Column(header Record, name string) int {
	want := model.FoldLabel(name)
	for idx, cell := range header {
		if model.FoldLabel(cell) == want {
			return idx
		}
	}
	return -1
}

// ColumnContaining finds the first header whose folded text contains part.
func ColumnContaining(header Record, part string) int {
	want := model.FoldLabel(part)
	if want == "" {
		return -1
	}
	for idx, cell := range header {
		if strings.Contains(model.FoldLabel(cell), want) {
			return idx
		}
	}
	return -1
}
