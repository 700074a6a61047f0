// Package sqlitestore emulates spreadsheets on SQLite: one database per
// store, rows kept as JSON cell arrays in a generic sheet_rows table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-formsheet/pkg/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sheets (
	name       TEXT PRIMARY KEY,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sheet_rows (
	sheet TEXT    NOT NULL REFERENCES sheets(name),
	idx   INTEGER NOT NULL,
	cells TEXT    NOT NULL,
	PRIMARY KEY (sheet, idx)
);`

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 10000",
	"PRAGMA synchronous = NORMAL",
}

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

// Connector opens <dir>/<store>.db databases and keeps them open until Close.
type Connector struct {
	dir    string
	logger *zap.Logger

	mu  sync.Mutex
	dbs map[string]*Store
}

var _ store.Connector = (*Connector)(nil)

// New returns a connector rooted at dir.
func New(dir string, options ...Option) *Connector {
	c := &Connector{dir: dir, logger: zap.NewNop(), dbs: make(map[string]*Store)}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Connect implements store.Connector.
func (c *Connector) Connect(ctx context.Context, storeName string) (store.Store, error) {
	name := strings.TrimSpace(storeName)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("sqlitestore: invalid store name %q", storeName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.dbs[name]; ok {
		return st, nil
	}

	db, err := open(ctx, filepath.Join(c.dir, name+".db"))
	if err != nil {
		return nil, err
	}
	st := &Store{name: name, db: db}
	c.dbs[name] = st
	c.logger.Debug("sqlite store opened", zap.String("store", name))
	return st, nil
}

// Close closes every open database.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for name, st := range c.dbs {
		if err := st.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("sqlitestore: close %s: %w", name, err))
		}
		delete(c.dbs, name)
	}
	return errors.Join(errs...)
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlitestore: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %s: %w", path, err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: schema: %w", err)
	}
	return db, nil
}

// Store is one database.
type Store struct {
	name string
	db   *sql.DB
}

// Name implements store.Store.
func (s *Store) Name() string { return s.name }

// Tables implements store.Store.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sheets ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list sheets: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan sheet: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Table implements store.Store.
func (s *Store) Table(ctx context.Context, name string) (store.Table, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sheets WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("sqlitestore: %s/%s: %w", s.name, name, store.ErrTableNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: lookup %s: %w", name, err)
	}
	return &Table{store: s, name: name}, nil
}

// EnsureTable implements store.Store.
func (s *Store) EnsureTable(ctx context.Context, name string) (store.Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("sqlitestore: table name is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sheets (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: create sheet %s: %w", name, err)
	}
	return &Table{store: s, name: name}, nil
}

// Table is one emulated sheet.
type Table struct {
	store *Store
	name  string
}

// Name implements store.Table.
func (t *Table) Name() string { return t.name }

// Row implements store.Table.
func (t *Table) Row(ctx context.Context, n int) (store.Record, error) {
	if n < 1 {
		return nil, fmt.Errorf("sqlitestore: invalid row %d", n)
	}
	var cells string
	err := t.store.db.QueryRowContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = ? AND idx = ?`, t.name, n).Scan(&cells)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: row %d of %s: %w", n, t.name, err)
	}
	return decode(cells)
}

// ReadAll implements store.Table.
func (t *Table) ReadAll(ctx context.Context) ([]store.Record, error) {
	rows, err := t.store.db.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY idx`, t.name)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: read %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []store.Record
	for rows.Next() {
		var cells string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan %s: %w", t.name, err)
		}
		record, err := decode(cells)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// AppendRows implements store.Table. The batch is written in one transaction.
func (t *Table) AppendRows(ctx context.Context, rows []store.Record) error {
	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlitestore: begin: %w", err)
	}
	defer tx.Rollback()

	var last int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(idx), 0) FROM sheet_rows WHERE sheet = ?`, t.name).Scan(&last); err != nil {
		return fmt.Errorf("sqlitestore: next row of %s: %w", t.name, err)
	}

	for i, row := range rows {
		payload, err := json.Marshal([]string(row))
		if err != nil {
			return fmt.Errorf("sqlitestore: encode row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, idx, cells) VALUES (?, ?, ?)`,
			t.name, last+i+1, string(payload)); err != nil {
			return fmt.Errorf("sqlitestore: insert row into %s: %w", t.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlitestore: commit: %w", err)
	}
	return nil
}

func decode(cells string) (store.Record, error) {
	var out []string
	if err := json.Unmarshal([]byte(cells), &out); err != nil {
		return nil, fmt.Errorf("sqlitestore: decode cells: %w", err)
	}
	return store.Record(out), nil
}
