// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/store"
)

// Run exercises connector against the store contract.
func Run(t *testing.T, connector store.Connector) {
	t.Helper()

	t.Run("missing table", func(t *testing.T) {
		st := connect(t, connector, "contract")
		_, err := st.Table(context.Background(), "Nunca")
		if !errors.Is(err, store.ErrTableNotFound) {
			t.Fatalf("expected ErrTableNotFound, got %v", err)
		}
	})

	t.Run("ensure table is idempotent", func(t *testing.T) {
		ctx := context.Background()
		st := connect(t, connector, "contract")
		first, err := st.EnsureTable(ctx, "Idempotente")
		if err != nil {
			t.Fatalf("ensure table: %v", err)
		}
		if err := first.AppendRows(ctx, []store.Record{{"a"}}); err != nil {
			t.Fatalf("append: %v", err)
		}
		second, err := st.EnsureTable(ctx, "Idempotente")
		if err != nil {
			t.Fatalf("ensure table again: %v", err)
		}
		rows, err := second.ReadAll(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if diff := cmp.Diff([]store.Record{{"a"}}, rows); diff != "" {
			t.Fatalf("rows mismatch (-want +got):\n%s", diff)
		}

		tables, err := st.Tables(ctx)
		if err != nil {
			t.Fatalf("tables: %v", err)
		}
		count := 0
		for _, name := range tables {
			if name == "Idempotente" {
				count++
			}
		}
		if count != 1 {
			t.Fatalf("expected a single Idempotente table, got %v", tables)
		}
	})

	t.Run("row probe", func(t *testing.T) {
		ctx := context.Background()
		st := connect(t, connector, "contract")
		table, err := st.EnsureTable(ctx, "Sonda")
		if err != nil {
			t.Fatalf("ensure table: %v", err)
		}
		row, err := table.Row(ctx, 1)
		if err != nil {
			t.Fatalf("row: %v", err)
		}
		if !row.Blank() {
			t.Fatalf("expected blank first row, got %v", row)
		}
	})

	t.Run("sink round trip", func(t *testing.T) {
		ctx := context.Background()
		sink := store.NewSink(connector)
		at := time.Date(2024, time.June, 14, 9, 30, 0, 0, time.UTC)

		for _, name := range [][2]string{{"Ana", "Diaz"}, {"Luis", "Rojas"}} {
			set := answers.NewSet()
			set.Put("Nombres", answers.Text(name[0]))
			set.Put("Apellido Paterno", answers.Text(name[1]))
			set.Put("Departamento:", answers.NoSelection())
			if err := sink.Append(ctx, "registro", "Identificacion", set.Row(at)); err != nil {
				t.Fatalf("append: %v", err)
			}
		}

		st := connect(t, connector, "registro")
		table, err := st.Table(ctx, "Identificacion")
		if err != nil {
			t.Fatalf("open table: %v", err)
		}
		rows, err := table.ReadAll(ctx)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		want := []store.Record{
			{"Nombres", "Apellido Paterno", "Departamento:", answers.ColumnRegisteredAt},
			{"Ana", "Diaz", "", "2024-06-14 09:30:00"},
			{"Luis", "Rojas", "", "2024-06-14 09:30:00"},
		}
		if diff := cmp.Diff(want, padded(rows)); diff != "" {
			t.Fatalf("rows mismatch (-want +got):\n%s", diff)
		}
	})
}

func connect(t *testing.T, connector store.Connector, name string) store.Store {
	t.Helper()
	st, err := connector.Connect(context.Background(), name)
	if err != nil {
		t.Fatalf("connect %s: %v", name, err)
	}
	return st
}

// padded pads rows to the header width so backends that drop trailing empty
// cells compare equal.
func padded(rows []store.Record) []store.Record {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	out := make([]store.Record, len(rows))
	for i, row := range rows {
		r := make(store.Record, width)
		copy(r, row)
		out[i] = r
	}
	return out
}
