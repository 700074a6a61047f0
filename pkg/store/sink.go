package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/answers"
)

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithSinkLogger attaches a logger.
func WithSinkLogger(logger *zap.Logger) SinkOption {
	return func(s *Sink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Sink appends submission rows to remote tables.
type Sink struct {
	connector Connector
	logger    *zap.Logger
}

// NewSink builds a sink over connector.
func NewSink(connector Connector, options ...SinkOption) *Sink {
	s := &Sink{connector: connector, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Append connects to storeName, ensures tableName exists, writes the header
// row when row 1 is empty and appends row. Only row 1 is probed. The write is
// not transactional: a retried call after a partial failure may duplicate the
// data row, never the header.
func (s *Sink) Append(ctx context.Context, storeName, tableName string, row answers.Row) error {
	if s.connector == nil {
		return fmt.Errorf("store: sink has no connector")
	}
	if len(row.Columns) != len(row.Values) {
		return fmt.Errorf("store: row has %d columns and %d values", len(row.Columns), len(row.Values))
	}

	st, err := s.connector.Connect(ctx, storeName)
	if err != nil {
		return fmt.Errorf("store: connect %s: %w", storeName, err)
	}
	table, err := st.EnsureTable(ctx, tableName)
	if err != nil {
		return fmt.Errorf("store: ensure table %s/%s: %w", storeName, tableName, err)
	}

	first, err := table.Row(ctx, 1)
	if err != nil {
		return fmt.Errorf("store: probe %s/%s: %w", storeName, tableName, err)
	}

	var rows []Record
	if first.Blank() {
		rows = append(rows, Record(append([]string(nil), row.Columns...)))
		s.logger.Debug("writing header row",
			zap.String("store", storeName),
			zap.String("table", tableName),
			zap.Int("columns", len(row.Columns)))
	}
	rows = append(rows, Record(append([]string(nil), row.Values...)))

	if err := table.AppendRows(ctx, rows); err != nil {
		return fmt.Errorf("store: append %s/%s: %w", storeName, tableName, err)
	}
	return nil
}
