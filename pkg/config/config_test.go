package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formsheet/pkg/testsupport"
)

const sample = `
store:
  backend: sqlite
  cache_ttl: 30s
forms:
  - id: identificacion
    title: Registro de Stakeholders
    schema: forms/identificacion.csv
    geo: forms/ubigeo.csv
    store: Clima_Social_Database
    table: Identificacion
  - id: interacciones
    schema: forms/interacciones.xlsx#Interacciones
    store: Clima_Social_Database
    table: Interacciones
    subjects:
      table: Identificacion
`

func TestLoad_DefaultsAndPaths(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteFile(t, dir, "formsheet.yaml", sample)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != BackendSQLite || cfg.Store.ReadTTL() != 30*time.Second {
		t.Fatalf("store config = %+v", cfg.Store)
	}
	if cfg.StoreDir() != filepath.Join(dir, DefaultStoreDir) {
		t.Fatalf("store dir = %q", cfg.StoreDir())
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}

	ident, ok := cfg.Form("identificacion")
	if !ok {
		t.Fatalf("identificacion form missing")
	}
	if ident.CascadeCategory != DefaultCascadeCategory || ident.CascadeLabels.Province != "Provincia:" {
		t.Fatalf("cascade defaults not applied: %+v", ident)
	}

	defs := cfg.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if got := defs[0].Schema.Location(); got != filepath.Join(dir, "forms", "identificacion.csv") {
		t.Fatalf("schema path = %q", got)
	}
	if defs[1].Geo != nil {
		t.Fatalf("interactions form has no geo source")
	}
	if defs[1].Title != "interacciones" {
		t.Fatalf("title should default to the id, got %q", defs[1].Title)
	}
	if defs[1].Subjects == nil || defs[1].Subjects.Store != "Clima_Social_Database" {
		t.Fatalf("subject store should default to the form store: %+v", defs[1].Subjects)
	}
}

func TestParse_CollectsErrors(t *testing.T) {
	_, err := Parse(strings.NewReader(`
store:
  backend: mongo
forms:
  - id: Bad Id
    table: X
  - id: ok
    schema: a.csv
    store: s
    table: t
  - id: ok
    schema: b.csv
    store: s
    table: t
`))
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	for _, want := range []string{"store.backend", "forms[0].id", "forms[0].schema", "forms[0].store", "declared twice"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	if _, err := Parse(strings.NewReader("stroe:\n  backend: xlsx\n")); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	ttl := DefaultCacheTTL
	want := StoreConfig{Backend: DefaultBackend, Dir: DefaultStoreDir, CacheTTL: &ttl}
	if diff := cmp.Diff(want, cfg.Store); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("a config without forms must not validate")
	}
}

func TestParse_CacheTTL(t *testing.T) {
	const form = `
forms:
  - id: f
    schema: f.csv
    store: s
    table: t
`
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"unset uses default", form, DefaultCacheTTL},
		{"zero keeps reads forever", "store:\n  cache_ttl: 0s\n" + form, 0},
		{"explicit window", "store:\n  cache_ttl: 5m\n" + form, 5 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse(strings.NewReader(tt.yaml))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := cfg.Store.ReadTTL(); got != tt.want {
				t.Fatalf("ttl = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := Parse(strings.NewReader("store:\n  cache_ttl: -1s\n" + form)); err == nil {
		t.Fatalf("negative ttl must not validate")
	}
}

func TestParse_InputStripMarkup(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
input:
  strip_markup: true
forms:
  - id: f
    schema: f.csv
    store: s
    table: t
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cfg.Input.StripMarkup {
		t.Fatalf("strip_markup not decoded")
	}
	if Default().Input.StripMarkup {
		t.Fatalf("markup stripping must be opt-in")
	}
}
