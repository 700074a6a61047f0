package schema

import (
	"path/filepath"
	"strings"
)

// Source identifies where a tabular document lives so loaders can operate on
// files or fs.FS entries without leaking implementation details.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
)

// Format is the tabular encoding of a source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// fileSource identifies on-disk documents.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path. Workbook paths may
// select a sheet with a fragment, e.g. "forms.xlsx#Identificacion".
func SourceFromFile(path string) Source {
	name, sheet := splitSheet(path)
	if sheet != "" {
		return fileSource{path: filepath.Clean(name) + "#" + sheet}
	}
	return fileSource{path: filepath.Clean(name)}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

// FormatOf infers the encoding from the source extension. Anything that is
// not a workbook is read as CSV.
func FormatOf(src Source) Format {
	name, _ := splitSheet(src.Location())
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// CacheKey identifies a source for memoisation.
func CacheKey(src Source) string {
	if src == nil {
		return ""
	}
	return string(src.Kind()) + ":" + src.Location()
}

func splitSheet(location string) (string, string) {
	idx := strings.LastIndex(location, "#")
	if idx < 0 {
		return location, ""
	}
	return location[:idx], strings.TrimSpace(location[idx+1:])
}
