package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formsheet/pkg/answers"
	"github.com/goliatone/go-formsheet/pkg/cache"
)

// SessionCookie names the cookie carrying the visitor id.
const SessionCookie = "formsheet_session"

// DefaultSessionIdle is how long an untouched visitor keeps its state.
const DefaultSessionIdle = 2 * time.Hour

type visitor struct {
	forms    map[string]*answers.Session
	flash    map[string]string
	lastSeen time.Time
}

// sessionStore keeps per-visitor, per-form sessions in memory.
type sessionStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	clock    cache.Clock
	idle     time.Duration
}

func newSessionStore(clock cache.Clock, idle time.Duration) *sessionStore {
	return &sessionStore{visitors: make(map[string]*visitor), clock: clock, idle: idle}
}

// visitorID returns the request's visitor id, issuing a cookie when absent.
func (s *sessionStore) visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *sessionStore) touch(id string) *visitor {
	now := s.clock.Now()
	for key, v := range s.visitors {
		if s.idle > 0 && now.Sub(v.lastSeen) > s.idle {
			delete(s.visitors, key)
		}
	}
	v, ok := s.visitors[id]
	if !ok {
		v = &visitor{forms: make(map[string]*answers.Session), flash: make(map[string]string)}
		s.visitors[id] = v
	}
	v.lastSeen = now
	return v
}

// session returns the visitor's session for formID.
func (s *sessionStore) session(visitorID, formID string) *answers.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.touch(visitorID)
	sess, ok := v.forms[formID]
	if !ok {
		sess = answers.NewSession(visitorID + "/" + formID)
		v.forms[formID] = sess
	}
	return sess
}

// setFlash stores a one-shot message for the next page view.
func (s *sessionStore) setFlash(visitorID, formID, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(visitorID).flash[formID] = msg
}

// takeFlash returns and clears the pending message.
func (s *sessionStore) takeFlash(visitorID, formID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.touch(visitorID)
	msg := v.flash[formID]
	delete(v.flash, formID)
	return msg
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visitors)
}
