// Package derive computes answers that depend on other answers rather than on
// user input.
package derive

import (
	"time"

	"github.com/goliatone/go-formsheet/pkg/cache"
)

// Age returns completed years between birth and today. A nil birth date
// yields 0; a birth date in the future yields 0 rather than a negative age.
func Age(birth *time.Time, today time.Time) int {
	if birth == nil {
		return 0
	}
	years := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// Engine evaluates derived fields against an injected clock.
type Engine struct {
	clock cache.Clock
}

// NewEngine returns an engine reading the provided clock, or the wall clock
// when nil.
func NewEngine(clock cache.Clock) *Engine {
	if clock == nil {
		clock = cache.SystemClock
	}
	return &Engine{clock: clock}
}

// Today returns the current calendar date in the clock's location.
func (e *Engine) Today() time.Time {
	now := e.clock.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// Age derives the age for birth as of today.
func (e *Engine) Age(birth *time.Time) int {
	return Age(birth, e.Today())
}
