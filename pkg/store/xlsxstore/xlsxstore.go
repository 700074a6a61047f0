// Package xlsxstore keeps each store as an .xlsx workbook with one sheet per
// table.
package xlsxstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/store"
)

const defaultSheet = "Sheet1"

// Option configures a Connector.
type Option func(*Connector)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Connector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Connector maps store names onto workbooks under a directory.
type Connector struct {
	dir    string
	logger *zap.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

var _ store.Connector = (*Connector)(nil)

// New returns a connector writing workbooks into dir.
func New(dir string, options ...Option) *Connector {
	c := &Connector{dir: dir, logger: zap.NewNop(), stores: make(map[string]*Store)}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Connect implements store.Connector. The workbook is created lazily by the
// first EnsureTable.
func (c *Connector) Connect(ctx context.Context, storeName string) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(storeName)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("xlsxstore: invalid store name %q", storeName)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("xlsxstore: mkdir %s: %w", c.dir, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st, ok := c.stores[name]
	if !ok {
		st = &Store{name: name, path: filepath.Join(c.dir, name+".xlsx"), logger: c.logger}
		c.stores[name] = st
	}
	return st, nil
}

// Store is one workbook. Every operation opens the file, so external edits
// between calls are picked up.
type Store struct {
	name   string
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// Name implements store.Store.
func (s *Store) Name() string { return s.name }

// Path returns the workbook location.
func (s *Store) Path() string { return s.path }

// open returns the workbook and whether it already existed on disk.
func (s *Store) open() (*excelize.File, bool, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return excelize.NewFile(), false, nil
	}
	return nil, false, fmt.Errorf("xlsxstore: open %s: %w", s.path, err)
}

func (s *Store) read(fn func(f *excelize.File, exists bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, exists, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f, exists)
}

func (s *Store) write(fn func(f *excelize.File, exists bool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, exists, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := fn(f, exists); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("xlsxstore: save %s: %w", s.path, err)
	}
	return nil
}

// Tables implements store.Store.
func (s *Store) Tables(context.Context) ([]string, error) {
	var out []string
	err := s.read(func(f *excelize.File, exists bool) error {
		if exists {
			out = f.GetSheetList()
		}
		return nil
	})
	return out, err
}

// Table implements store.Store.
func (s *Store) Table(_ context.Context, name string) (store.Table, error) {
	err := s.read(func(f *excelize.File, exists bool) error {
		if !exists {
			return store.ErrTableNotFound
		}
		idx, err := f.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("xlsxstore: sheet %q: %w", name, err)
		}
		if idx < 0 {
			return store.ErrTableNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrTableNotFound) {
			return nil, fmt.Errorf("xlsxstore: %s/%s: %w", s.name, name, err)
		}
		return nil, err
	}
	return &Table{store: s, name: name}, nil
}

// EnsureTable implements store.Store. A new workbook drops its default empty
// sheet once the first real sheet exists.
func (s *Store) EnsureTable(_ context.Context, name string) (store.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("xlsxstore: table name is required")
	}
	err := s.write(func(f *excelize.File, exists bool) error {
		idx, err := f.GetSheetIndex(name)
		if err != nil {
			return fmt.Errorf("xlsxstore: sheet %q: %w", name, err)
		}
		if idx >= 0 && exists {
			return nil
		}
		if idx < 0 {
			if idx, err = f.NewSheet(name); err != nil {
				return fmt.Errorf("xlsxstore: create sheet %q: %w", name, err)
			}
			s.logger.Debug("sheet created", zap.String("store", s.name), zap.String("sheet", name))
		}
		if !exists && name != defaultSheet {
			f.SetActiveSheet(idx)
			if err := f.DeleteSheet(defaultSheet); err != nil {
				return fmt.Errorf("xlsxstore: drop default sheet: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &Table{store: s, name: name}, nil
}

// Table is one sheet.
type Table struct {
	store *Store
	name  string
}

// Name implements store.Table.
func (t *Table) Name() string { return t.name }

func (t *Table) rows(f *excelize.File) ([]store.Record, error) {
	raw, err := f.GetRows(t.name)
	if err != nil {
		return nil, fmt.Errorf("xlsxstore: read %s/%s: %w", t.store.name, t.name, err)
	}
	out := make([]store.Record, len(raw))
	for i, row := range raw {
		out[i] = store.Record(row)
	}
	return out, nil
}

// Row implements store.Table.
func (t *Table) Row(_ context.Context, n int) (store.Record, error) {
	if n < 1 {
		return nil, fmt.Errorf("xlsxstore: invalid row %d", n)
	}
	var out store.Record
	err := t.store.read(func(f *excelize.File, _ bool) error {
		rows, err := f.Rows(t.name)
		if err != nil {
			return fmt.Errorf("xlsxstore: read %s/%s: %w", t.store.name, t.name, err)
		}
		defer rows.Close()
		for i := 1; rows.Next(); i++ {
			if i < n {
				continue
			}
			cols, err := rows.Columns()
			if err != nil {
				return fmt.Errorf("xlsxstore: read %s/%s row %d: %w", t.store.name, t.name, n, err)
			}
			out = store.Record(cols)
			break
		}
		return rows.Error()
	})
	return out, err
}

// ReadAll implements store.Table.
func (t *Table) ReadAll(context.Context) ([]store.Record, error) {
	var out []store.Record
	err := t.store.read(func(f *excelize.File, _ bool) error {
		rows, err := t.rows(f)
		out = rows
		return err
	})
	return out, err
}

// AppendRows implements store.Table.
func (t *Table) AppendRows(ctx context.Context, rows []store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.store.write(func(f *excelize.File, _ bool) error {
		existing, err := t.rows(f)
		if err != nil {
			return err
		}
		next := len(existing) + 1
		for _, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, next)
			if err != nil {
				return fmt.Errorf("xlsxstore: cell for row %d: %w", next, err)
			}
			values := []string(row)
			if err := f.SetSheetRow(t.name, cell, &values); err != nil {
				return fmt.Errorf("xlsxstore: write %s/%s row %d: %w", t.store.name, t.name, next, err)
			}
			next++
		}
		return nil
	})
}
