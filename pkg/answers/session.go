package answers

import "sync"

// Session is the request-scoped state of one form fill. Answers hold the
// normalised AnswerSet; Widgets hold raw control state keyed by stable widget
// keys so a re-render after a failed submit shows what the user entered.
type Session struct {
	ID string

	pass    sync.Mutex
	mu      sync.Mutex
	answers *Set
	widgets map[string]any
	cleared int
}

// NewSession returns an empty session.
func NewSession(id string) *Session {
	return &Session{
		ID:      id,
		answers: NewSet(),
		widgets: make(map[string]any),
	}
}

// Lock reserves the session for one render and submit pass. Overlapping
// requests for the same session wait instead of swapping the answer set
// under each other. Other Session methods stay usable while it is held.
func (s *Session) Lock() { s.pass.Lock() }

// Unlock releases the pass reserved by Lock.
func (s *Session) Unlock() { s.pass.Unlock() }

// Answers returns the live answer set.
func (s *Session) Answers() *Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers
}

// BeginRender swaps in a fresh answer set for a new render pass. Widget state
// is kept.
func (s *Session) BeginRender() *Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = NewSet()
	return s.answers
}

// Widget returns the remembered raw state for a widget key.
func (s *Session) Widget(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.widgets[key]
	return v, ok
}

// SetWidget remembers raw state for a widget key.
func (s *Session) SetWidget(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widgets[key] = value
}

// Clear drops answers and widget state after a successful submission.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers = NewSet()
	s.widgets = make(map[string]any)
	s.cleared++
}

// Cleared reports how many times Clear ran.
func (s *Session) Cleared() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}
