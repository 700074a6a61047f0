package schema

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/goliatone/go-formsheet/pkg/model"
)

// ErrMissingColumn reports a required header absent from a table.
var ErrMissingColumn = errors.New("schema: missing column")

// Table is a decoded tabular document: a header row plus data rows. Data rows
// are padded to the header width.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the header matching name after folding case,
// whitespace and diacritics, or -1.
func (t Table) Column(name string) int {
	want := model.FoldLabel(name)
	for idx, header := range t.Header {
		if model.FoldLabel(header) == want {
			return idx
		}
	}
	return -1
}

// RequireColumns resolves every name or fails with ErrMissingColumn.
func (t Table) RequireColumns(names ...string) ([]int, error) {
	out := make([]int, len(names))
	var missing []string
	for i, name := range names {
		out[i] = t.Column(name)
		if out[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return out, nil
}

// Cell returns the trimmed value at row/col, or "" when col is out of range.
func (t Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// ReadTable fetches and decodes the source. CSV is the default; workbook
// sources read the sheet named in the location fragment or the first sheet.
func (l *Loader) ReadTable(ctx context.Context, src Source) (Table, error) {
	if src == nil {
		return Table{}, errors.New("schema: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}

	data, err := l.readBytes(src)
	if err != nil {
		return Table{}, fmt.Errorf("schema: read %s: %w", src.Location(), err)
	}

	var records [][]string
	switch FormatOf(src) {
	case FormatXLSX:
		_, sheet := splitSheet(src.Location())
		records, err = decodeWorkbook(data, sheet)
	default:
		records, err = decodeCSV(data)
	}
	if err != nil {
		return Table{}, fmt.Errorf("schema: decode %s: %w", src.Location(), err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("schema: %s has no header row", src.Location())
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	table := Table{Header: header}
	for _, record := range records[1:] {
		row := make([]string, len(header))
		copy(row, record)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func (l *Loader) readBytes(src Source) ([]byte, error) {
	name, _ := splitSheet(src.Location())
	switch src.Kind() {
	case SourceKindFile:
		if name == "" {
			return nil, errors.New("file path is required")
		}
		abs, err := filepath.Abs(name)
		if err != nil {
			return nil, err
		}
		return os.ReadFile(abs)
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("no fs.FS configured")
		}
		return fs.ReadFile(l.fs, name)
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind())
	}
}

func decodeCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var out [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

func decodeWorkbook(data []byte, sheet string) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if sheet == "" {
		sheets := file.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return file.GetRows(sheet)
}
