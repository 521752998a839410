package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ozodf/news-verifier/internal/models"
)

const sessionCookie = "nv_session"

// SessionStore keeps per-user transient state (current text, last
// prediction, feedback-given flag) keyed by a session cookie. State is
// explicit and threaded through handlers; nothing lives in globals.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]models.Session)}
}

// FromRequest returns a copy of the request's session, creating a new
// session (and setting the cookie) when none exists. Handlers mutate
// the copy and write it back with Save.
func (s *SessionStore) FromRequest(w http.ResponseWriter, r *http.Request) models.Session {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		s.mu.RLock()
		sess, ok := s.sessions[cookie.Value]
		s.mu.RUnlock()
		if ok {
			return sess
		}
	}

	sess := models.Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// Save writes the session back to the store.
func (s *SessionStore) Save(sess models.Session) {
	sess.LastSeenAt = time.Now()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}
