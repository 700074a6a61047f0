package web

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

// StylesheetName is the stylesheet served under /assets/.
const StylesheetName = "formsheet.css"

// TemplatesFS exposes the embedded page templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// AssetsFS exposes the embedded static assets.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

// pages renders named pongo2 templates, compiling each once.
type pages struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

func newPages(files fs.FS, globals pongo2.Context) *pages {
	set := pongo2.NewSet("formsheet", pongo2.NewFSLoader(files))
	if set.Globals == nil {
		set.Globals = make(pongo2.Context)
	}
	set.Globals.Update(globals)
	return &pages{set: set, cache: make(map[string]*pongo2.Template)}
}

func (p *pages) template(name string) (*pongo2.Template, error) {
	p.mu.RLock()
	tpl, ok := p.cache[name]
	p.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tpl, ok := p.cache[name]; ok {
		return tpl, nil
	}
	tpl, err := p.set.FromFile(name + ".tpl")
	if err != nil {
		return nil, fmt.Errorf("web: load template %q: %w", name, err)
	}
	p.cache[name] = tpl
	return tpl, nil
}

// render executes name into a buffer first so a failing template never
// leaves a half-written response.
func (p *pages) render(w io.Writer, name string, data pongo2.Context) error {
	tpl, err := p.template(name)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(data, &buf); err != nil {
		return fmt.Errorf("web: execute template %q: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}
