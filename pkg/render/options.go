package render

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsheet/pkg/derive"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithRegistry overrides the kind registry.
func WithRegistry(registry *Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.registry = registry
		}
	}
}

// WithDeriveEngine injects the engine used for derived fields and "today".
func WithDeriveEngine(engine *derive.Engine) Option {
	return func(r *Renderer) {
		if engine != nil {
			r.derive = engine
		}
	}
}

// WithSanitizer overrides how free-text answers are cleaned.
func WithSanitizer(fn func(string) string) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.sanitize = fn
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Verbatim keeps free text exactly as typed.
func Verbatim(s string) string { return s }

// StripMarkup removes any markup from free text with a strict bluemonday
// policy. Entities produced by the policy are decoded back so "a & b" is
// stored verbatim.
func StripMarkup() func(string) string {
	policy := bluemonday.StrictPolicy()
	return func(s string) string {
		if s == "" {
			return s
		}
		return html.UnescapeString(policy.Sanitize(s))
	}
}
