package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/attendance/internal/core"
	"github.com/google/uuid"
)

// sessionCookie carries the visitor's session id.
const sessionCookie = "attendance_session"

// SessionStore keeps one core.Session per visitor, all attached to the same
// read-only Dataset. Sessions idle longer than ttl are swept; when the store
// is full the least recently used session is evicted.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*core.Session
	dataset  core.Dataset
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewSessionStore creates an empty store. max <= 0 means unbounded.
func NewSessionStore(ds core.Dataset, ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*core.Session),
		dataset:  ds,
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// Get returns the live session for id.
func (st *SessionStore) Get(id uuid.UUID) (*core.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok || st.expired(sess) {
		return nil, false
	}
	sess.Touch()
	return sess, true
}

// Create starts a new Ready session on the shared dataset.
func (st *SessionStore) Create() (uuid.UUID, *core.Session) {
	sess := core.NewSession()
	sess.Attach(st.dataset)
	id := uuid.New()

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		st.evictOldest()
	}
	st.sessions[id] = sess
	return id, sess
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) expired(sess *core.Session) bool {
	return st.ttl > 0 && st.now().Sub(sess.LastUsed()) > st.ttl
}

// evictOldest removes the least recently used session. Callers hold st.mu.
func (st *SessionStore) evictOldest() {
	var (
		oldestID uuid.UUID
		oldest   time.Time
		found    bool
	)
	for id, sess := range st.sessions {
		if used := sess.LastUsed(); !found || used.Before(oldest) {
			oldestID, oldest, found = id, used, true
		}
	}
	if found {
		delete(st.sessions, oldestID)
	}
}

// session returns the caller's session, creating one and setting the
// cookie when the request has none or an unknown id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *core.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if sess, ok := s.sessions.Get(id); ok {
				return sess
			}
		}
	}

	id, sess := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Session.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.cfg.Session.IdleTTL.Seconds()),
	})
	return sess
}
