// Package web serves forms as HTML pages. Every POST re-runs the form pass
// over the posted values, so cascade invalidation and derived values are
// computed on the server.
package web

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/flosch/pongo2/v6"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/cache"
	"github.com/goliatone/go-formsheet/pkg/form"
	"github.com/goliatone/go-formsheet/pkg/render"
	"github.com/goliatone/go-formsheet/pkg/validation"
)

// ActionField carries the submit button that was pressed.
const (
	ActionField   = "_action"
	ActionRefresh = "refresh"
)

// TechnicalErrorMessage is shown when the remote write fails.
const TechnicalErrorMessage = "Ocurrió un error técnico al guardar. Sus respuestas se conservan, intente nuevamente."

// Option configures a Server.
type Option func(*config)

type config struct {
	templates fs.FS
	logger    *zap.Logger
	clock     cache.Clock
	idle      time.Duration
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templates = os.DirFS(path)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock injects the clock used for session expiry.
func WithClock(clock cache.Clock) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithSessionIdle sets how long idle visitor state is kept.
func WithSessionIdle(d time.Duration) Option {
	return func(cfg *config) {
		cfg.idle = d
	}
}

// Server is the web front-end.
type Server struct {
	engine   *form.Engine
	defs     []form.Definition
	byID     map[string]form.Definition
	pages    *pages
	sessions *sessionStore
	logger   *zap.Logger
	router   chi.Router
}

// New builds a server for defs.
func New(engine *form.Engine, defs []form.Definition, options ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("web: form engine is required")
	}
	cfg := config{
		templates: TemplatesFS(),
		logger:    zap.NewNop(),
		clock:     cache.SystemClock,
		idle:      DefaultSessionIdle,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	s := &Server{
		engine:   engine,
		defs:     append([]form.Definition(nil), defs...),
		byID:     make(map[string]form.Definition, len(defs)),
		pages:    newPages(cfg.templates, pongo2.Context{"stylesheet": "/assets/" + StylesheetName}),
		sessions: newSessionStore(cfg.clock, cfg.idle),
		logger:   cfg.logger,
	}
	for _, def := range defs {
		if _, dup := s.byID[def.ID]; dup {
			return nil, errors.New("web: duplicate form id " + def.ID)
		}
		s.byID[def.ID] = def
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(AssetsFS()))))
	r.Route("/forms/{id}", func(r chi.Router) {
		r.Get("/", s.handleForm)
		r.Post("/", s.handleSubmit)
		r.Get("/geo/provinces", s.handleProvinces)
		r.Get("/geo/districts", s.handleDistricts)
	})
	return r
}

type formLink struct {
	ID    string
	Title string
	URL   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	links := make([]formLink, 0, len(s.defs))
	for _, def := range s.defs {
		links = append(links, formLink{ID: def.ID, Title: def.Title, URL: "/forms/" + def.ID})
	}
	s.render(w, r, http.StatusOK, "index", pongo2.Context{"forms": links})
}

func (s *Server) definition(w http.ResponseWriter, r *http.Request) (form.Definition, bool) {
	def, ok := s.byID[chi.URLParam(r, "id")]
	if !ok {
		http.NotFound(w, r)
	}
	return def, ok
}

// open loads the form or renders the unavailable page for it.
func (s *Server) open(w http.ResponseWriter, r *http.Request, def form.Definition) (*form.Form, bool) {
	f, err := s.engine.Open(r.Context(), def)
	if err != nil {
		s.logger.Error("form unavailable", zap.String("form", def.ID), zap.Error(err))
		s.render(w, r, http.StatusServiceUnavailable, "error", pongo2.Context{
			"title":   def.Title,
			"message": "El formulario no está disponible en este momento.",
			"detail":  err.Error(),
		})
		return nil, false
	}
	return f, true
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	visitor := s.sessions.visitorID(w, r)
	f, ok := s.open(w, r, def)
	if !ok {
		return
	}
	session := s.sessions.session(visitor, def.ID)
	session.Lock()
	defer session.Unlock()
	controls := NewControls(session, nil)
	if _, err := f.Render(r.Context(), controls, session); err != nil {
		s.fail(w, r, def, err)
		return
	}
	s.render(w, r, http.StatusOK, "form", s.formContext(f, controls, pongo2.Context{
		"flash": s.sessions.takeFlash(visitor, def.ID),
	}))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	visitor := s.sessions.visitorID(w, r)
	f, ok := s.open(w, r, def)
	if !ok {
		return
	}
	session := s.sessions.session(visitor, def.ID)
	session.Lock()
	defer session.Unlock()
	controls := NewControls(session, r.PostForm)
	if _, err := f.Render(r.Context(), controls, session); err != nil {
		s.fail(w, r, def, err)
		return
	}

	if r.PostForm.Get(ActionField) == ActionRefresh {
		s.render(w, r, http.StatusOK, "form", s.formContext(f, controls, nil))
		return
	}

	result, err := s.engine.Submit(r.Context(), f, session)
	var verr *validation.Error
	switch {
	case err == nil:
		s.sessions.setFlash(visitor, def.ID, result.Message)
		http.Redirect(w, r, "/forms/"+def.ID, http.StatusSeeOther)
	case errors.As(err, &verr):
		controls.Annotate(render.MapViolations(f.Pass(), verr.Violations))
		s.render(w, r, http.StatusUnprocessableEntity, "form", s.formContext(f, controls, pongo2.Context{
			"violations": verr.Violations,
		}))
	case errors.Is(err, form.ErrRemote):
		s.render(w, r, http.StatusBadGateway, "form", s.formContext(f, controls, pongo2.Context{
			"technical_error": TechnicalErrorMessage,
		}))
	default:
		s.fail(w, r, def, err)
	}
}

func (s *Server) formContext(f *form.Form, controls *Controls, extra pongo2.Context) pongo2.Context {
	def := f.Definition()
	ctx := pongo2.Context{
		"form":     def,
		"action":   "/forms/" + def.ID,
		"sections": controls.Sections(),
		"cascade":  f.Pass().HasCascade(),
	}
	ctx.Update(extra)
	return ctx
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	s.geoOptions(w, r, func(f *form.Form) []string {
		return f.Geo().Provinces(r.URL.Query().Get("region"))
	})
}

func (s *Server) handleDistricts(w http.ResponseWriter, r *http.Request) {
	s.geoOptions(w, r, func(f *form.Form) []string {
		q := r.URL.Query()
		return f.Geo().Districts(q.Get("region"), q.Get("province"))
	})
}

func (s *Server) geoOptions(w http.ResponseWriter, r *http.Request, pick func(*form.Form) []string) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	f, err := s.engine.Open(r.Context(), def)
	if err != nil {
		http.Error(w, "form unavailable", http.StatusServiceUnavailable)
		return
	}
	if f.Geo() == nil {
		http.NotFound(w, r)
		return
	}
	options := pick(f)
	if options == nil {
		options = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(options); err != nil {
		s.logger.Warn("encode geo options", zap.Error(err))
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, def form.Definition, err error) {
	s.logger.Error("form request failed", zap.String("form", def.ID), zap.Error(err))
	s.render(w, r, http.StatusInternalServerError, "error", pongo2.Context{
		"title":   def.Title,
		"message": "Ocurrió un error inesperado.",
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pongo2.Context) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.render(w, name, data); err != nil {
		s.logger.Error("render page",
			zap.String("page", name),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}
}

// Sessions reports the number of tracked visitors.
func (s *Server) Sessions() int {
	return s.sessions.len()
}
