// Package config reads the formsheet.yaml file that declares the store
// backend and the forms to serve.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formsheet/pkg/form"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/schema"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// Defaults applied by Load.
const (
	DefaultBackend         = BackendXLSX
	DefaultStoreDir        = "data"
	DefaultCacheTTL        = 60 * time.Second
	DefaultAddr            = ":8080"
	DefaultCascadeCategory = "Domicilio"
)

var formID = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Config is the decoded configuration file.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Input  InputConfig  `yaml:"input"`
	Forms  []FormConfig `yaml:"forms"`

	// base resolves relative paths. It is the directory of the loaded file.
	base string
}

// StoreConfig selects the remote store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
	// CacheTTL is how long remote reads are reused. Unset means
	// DefaultCacheTTL; an explicit 0 keeps reads for the process lifetime.
	CacheTTL *time.Duration `yaml:"cache_ttl"`
}

// ReadTTL returns the effective read cache window.
func (s StoreConfig) ReadTTL() time.Duration {
	if s.CacheTTL == nil {
		return DefaultCacheTTL
	}
	return *s.CacheTTL
}

// InputConfig controls how free-text answers are stored.
type InputConfig struct {
	// StripMarkup removes HTML from text answers before they are stored.
	// Off by default: answers are kept as typed.
	StripMarkup bool `yaml:"strip_markup"`
}

// ServerConfig configures the web front-end.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SubjectConfig points the subject selector at a remote table.
type SubjectConfig struct {
	Store         string `yaml:"store"`
	Table         string `yaml:"table"`
	NameColumn    string `yaml:"name_column"`
	SurnameColumn string `yaml:"surname_column"`
}

// FormConfig declares one form.
type FormConfig struct {
	ID              string               `yaml:"id"`
	Title           string               `yaml:"title"`
	Schema          string               `yaml:"schema"`
	Geo             string               `yaml:"geo"`
	CascadeCategory string               `yaml:"cascade_category"`
	CascadeLabels   render.CascadeLabels `yaml:"cascade_labels"`
	Store           string               `yaml:"store"`
	Table           string               `yaml:"table"`
	Subjects        *SubjectConfig       `yaml:"subjects"`
	SuccessMessage  string               `yaml:"success_message"`
}

// Default returns a configuration with every default applied and no forms.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.base = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes YAML from r, applies defaults and validates. Unknown keys
// are rejected.
func Parse(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.Dir == "" {
		c.Store.Dir = DefaultStoreDir
	}
	if c.Store.CacheTTL == nil {
		ttl := DefaultCacheTTL
		c.Store.CacheTTL = &ttl
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	defaults := render.DefaultCascadeLabels()
	for i := range c.Forms {
		f := &c.Forms[i]
		f.ID = strings.TrimSpace(f.ID)
		if f.Title == "" {
			f.Title = f.ID
		}
		if f.Geo != "" && f.CascadeCategory == "" {
			f.CascadeCategory = DefaultCascadeCategory
		}
		if f.CascadeLabels.Region == "" {
			f.CascadeLabels.Region = defaults.Region
		}
		if f.CascadeLabels.Province == "" {
			f.CascadeLabels.Province = defaults.Province
		}
		if f.CascadeLabels.District == "" {
			f.CascadeLabels.District = defaults.District
		}
		if f.Subjects != nil && f.Subjects.Store == "" {
			f.Subjects.Store = f.Store
		}
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendMemory, BackendXLSX, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not one of memory, xlsx, sqlite", c.Store.Backend))
	}
	if c.Store.ReadTTL() < 0 {
		errs = append(errs, fmt.Errorf("store.cache_ttl must not be negative"))
	}
	if len(c.Forms) == 0 {
		errs = append(errs, fmt.Errorf("at least one form is required"))
	}

	seen := make(map[string]struct{}, len(c.Forms))
	for i, f := range c.Forms {
		where := fmt.Sprintf("forms[%d]", i)
		if !formID.MatchString(f.ID) {
			errs = append(errs, fmt.Errorf("%s.id %q must be lower-case letters, digits, '-' or '_'", where, f.ID))
		}
		if _, dup := seen[f.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id %q is declared twice", where, f.ID))
		}
		seen[f.ID] = struct{}{}
		if strings.TrimSpace(f.Schema) == "" {
			errs = append(errs, fmt.Errorf("%s.schema is required", where))
		}
		if strings.TrimSpace(f.Store) == "" {
			errs = append(errs, fmt.Errorf("%s.store is required", where))
		}
		if strings.TrimSpace(f.Table) == "" {
			errs = append(errs, fmt.Errorf("%s.table is required", where))
		}
		if f.Subjects != nil && strings.TrimSpace(f.Subjects.Table) == "" {
			errs = append(errs, fmt.Errorf("%s.subjects.table is required", where))
		}
	}
	return errors.Join(errs...)
}

// Path resolves p against the directory of the loaded file.
func (c Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.base == "" {
		return p
	}
	return filepath.Join(c.base, p)
}

// StoreDir returns the resolved backend directory.
func (c Config) StoreDir() string {
	return c.Path(c.Store.Dir)
}

// Form looks up a form by id.
func (c Config) Form(id string) (FormConfig, bool) {
	for _, f := range c.Forms {
		if f.ID == id {
			return f, true
		}
	}
	return FormConfig{}, false
}

// Definition converts a form entry into a form definition with resolved
// source paths.
func (c Config) Definition(f FormConfig) form.Definition {
	def := form.Definition{
		ID:              f.ID,
		Title:           f.Title,
		Schema:          schema.SourceFromFile(c.Path(f.Schema)),
		CascadeCategory: f.CascadeCategory,
		Labels:          f.CascadeLabels,
		Store:           f.Store,
		Table:           f.Table,
		SuccessMessage:  f.SuccessMessage,
	}
	if f.Geo != "" {
		def.Geo = schema.SourceFromFile(c.Path(f.Geo))
	}
	if f.Subjects != nil {
		def.Subjects = &form.SubjectSource{
			Store:         f.Subjects.Store,
			Table:         f.Subjects.Table,
			NameColumn:    f.Subjects.NameColumn,
			SurnameColumn: f.Subjects.SurnameColumn,
		}
	}
	return def
}

// Definitions converts every form in declaration order.
func (c Config) Definitions() []form.Definition {
	out := make([]form.Definition, 0, len(c.Forms))
	for _, f := range c.Forms {
		out = append(out, c.Definition(f))
	}
	return out
}
