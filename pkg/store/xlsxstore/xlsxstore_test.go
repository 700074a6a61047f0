package xlsxstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-formsheet/pkg/store"
	"github.com/goliatone/go-formsheet/pkg/store/storetest"
)

func TestConnector_Contract(t *testing.T) {
	storetest.Run(t, New(t.TempDir()))
}

func TestEnsureTable_DropsDefaultSheet(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	st, err := New(dir).Connect(ctx, "registro")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := st.EnsureTable(ctx, "Interacciones"); err != nil {
		t.Fatalf("ensure table: %v", err)
	}

	f, err := excelize.OpenFile(filepath.Join(dir, "registro.xlsx"))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if diff := cmp.Diff([]string{"Interacciones"}, f.GetSheetList()); diff != "" {
		t.Fatalf("sheets mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendRows_PersistAcrossConnectors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, _ := New(dir).Connect(ctx, "registro")
	table, err := st.EnsureTable(ctx, "Identificacion")
	if err != nil {
		t.Fatalf("ensure table: %v", err)
	}
	if err := table.AppendRows(ctx, []store.Record{{"Nombres", "Edad"}, {"Ana", "23"}}); err != nil {
		t.Fatalf("append: %v", err)
	}

	reopened, _ := New(dir).Connect(ctx, "registro")
	again, err := reopened.Table(ctx, "Identificacion")
	if err != nil {
		t.Fatalf("open table: %v", err)
	}
	row, err := again.Row(ctx, 2)
	if err != nil {
		t.Fatalf("row: %v", err)
	}
	if diff := cmp.Diff(store.Record{"Ana", "23"}, row); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	missing, err := again.Row(ctx, 9)
	if err != nil || missing != nil {
		t.Fatalf("row past the end = %v, %v", missing, err)
	}
}

func TestRow_StreamsToRequestedRow(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	f := excelize.NewFile()
	for _, cell := range []struct{ at, value string }{
		{"A1", "Nombres"}, {"B1", "Edad"},
		{"A3", "Ana"}, {"B3", "23"},
		{"A4", "Luis"}, {"B4", "41"},
	} {
		if err := f.SetCellValue(defaultSheet, cell.at, cell.value); err != nil {
			t.Fatalf("set %s: %v", cell.at, err)
		}
	}
	if err := f.SaveAs(filepath.Join(dir, "registro.xlsx")); err != nil {
		t.Fatalf("save: %v", err)
	}
	f.Close()

	st, _ := New(dir).Connect(ctx, "registro")
	table, err := st.Table(ctx, defaultSheet)
	if err != nil {
		t.Fatalf("open table: %v", err)
	}

	tests := []struct {
		n    int
		want store.Record
	}{
		{1, store.Record{"Nombres", "Edad"}},
		{3, store.Record{"Ana", "23"}},
		{4, store.Record{"Luis", "41"}},
	}
	for _, tt := range tests {
		row, err := table.Row(ctx, tt.n)
		if err != nil {
			t.Fatalf("row %d: %v", tt.n, err)
		}
		if diff := cmp.Diff(tt.want, row); diff != "" {
			t.Fatalf("row %d mismatch (-want +got):\n%s", tt.n, diff)
		}
	}

	if blank, err := table.Row(ctx, 2); err != nil || len(blank) != 0 {
		t.Fatalf("blank row = %v, %v", blank, err)
	}
	if past, err := table.Row(ctx, 5); err != nil || past != nil {
		t.Fatalf("row past the end = %v, %v", past, err)
	}
	if _, err := table.Row(ctx, 0); err == nil {
		t.Fatalf("row 0 must be rejected")
	}
}

func TestConnect_RejectsPathNames(t *testing.T) {
	if _, err := New(t.TempDir()).Connect(context.Background(), "../escape"); err == nil {
		t.Fatalf("expected invalid store name error")
	}
}
