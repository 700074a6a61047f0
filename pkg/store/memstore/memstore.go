// Package memstore keeps stores in process memory. It backs tests and
// dry runs.
package memstore

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-formsheet/pkg/store"
)

// Connector hands out in-memory stores, creating them on first use.
type Connector struct {
	mu     sync.Mutex
	stores map[string]*Store
}

var _ store.Connector = (*Connector)(nil)

// New returns an empty connector.
func New() *Connector {
	return &Connector{stores: make(map[string]*Store)}
}

// Connect implements store.Connector.
func (c *Connector) Connect(ctx context.Context, storeName string) (store.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(storeName)
	if name == "" {
		return nil, fmt.Errorf("memstore: store name is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.stores[name]
	if !ok {
		st = &Store{name: name, tables: make(map[string]*Table)}
		c.stores[name] = st
	}
	return st, nil
}

// Store is one in-memory spreadsheet.
type Store struct {
	name   string
	mu     sync.Mutex
	tables map[string]*Table
	order  []string
}

// Name implements store.Store.
func (s *Store) Name() string { return s.name }

// Tables implements store.Store.
func (s *Store) Tables(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...), nil
}

// Table implements store.Store.
func (s *Store) Table(_ context.Context, name string) (store.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("memstore: %s/%s: %w", s.name, name, store.ErrTableNotFound)
	}
	return t, nil
}

// EnsureTable implements store.Store.
func (s *Store) EnsureTable(_ context.Context, name string) (store.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("memstore: table name is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	if !ok {
		t = &Table{name: name}
		s.tables[name] = t
		s.order = append(s.order, name)
	}
	return t, nil
}

// Table is an in-memory row list.
type Table struct {
	name string
	mu   sync.RWMutex
	rows []store.Record
}

// Name implements store.Table.
func (t *Table) Name() string { return t.name }

// Row implements store.Table.
func (t *Table) Row(_ context.Context, n int) (store.Record, error) {
	if n < 1 {
		return nil, fmt.Errorf("memstore: invalid row %d", n)
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n > len(t.rows) {
		return nil, nil
	}
	return append(store.Record(nil), t.rows[n-1]...), nil
}

// ReadAll implements store.Table.
func (t *Table) ReadAll(context.Context) ([]store.Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]store.Record, len(t.rows))
	for i, row := range t.rows {
		out[i] = append(store.Record(nil), row...)
	}
	return out, nil
}

// AppendRows implements store.Table.
func (t *Table) AppendRows(ctx context.Context, rows []store.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range rows {
		t.rows = append(t.rows, append(store.Record(nil), row...))
	}
	return nil
}
