package core

// session.go replaces a process-wide "current table" with explicit sessions.
//
// A Session owns at most one Table. It is created on first upload, its table
// is replaced wholesale by later uploads, and it is evicted by the store once
// idle for longer than the configured TTL. Every operation on a session holds
// its mutex for the whole read-modify-write, so concurrent requests against
// the same session are serialized and cannot lose updates.

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/JonMunkholm/tabclean/internal/logging"
	"github.com/google/uuid"
)

// Session is one user's working copy of a dataset.
type Session struct {
	ID string

	mu       sync.Mutex
	table    *Table
	source   string
	created  time.Time
	lastUsed time.Time
}

// Source returns the file name the current table was loaded from.
func (s *Session) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source
}

// Load replaces the session's table and normalizes its column names. The
// returned row count is read under the lock; once Load returns, t belongs to
// the session and may only be touched through Do.
func (s *Session) Load(source string, t *Table) (cols []string, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cols = NormalizeColumns(t)
	s.table = t
	s.source = source
	return cols, t.Len()
}

// Do runs fn with exclusive access to the session's table.
// It returns ErrNoDataLoaded when nothing has been uploaded yet.
func (s *Session) Do(fn func(t *Table) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table == nil {
		return ErrNoDataLoaded
	}
	return fn(s.table)
}

// SessionStore holds live sessions and evicts idle ones.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewSessionStore creates a store. ttl <= 0 disables idle eviction;
// max <= 0 means unbounded.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
	}
}

// Create mints a new empty session. When the store is full the least
// recently used session is evicted first.
func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.max > 0 && len(st.sessions) >= st.max {
		st.evictOldestLocked(len(st.sessions) - st.max + 1)
	}

	now := st.now()
	s := &Session{
		ID:       uuid.NewString(),
		created:  now,
		lastUsed: now,
	}
	st.sessions[s.ID] = s
	return s
}

// Get returns a live session and marks it used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := st.now()
	if st.expiredLocked(s, now) {
		delete(st.sessions, id)
		return nil, ErrSessionNotFound
	}
	s.lastUsed = now
	return s, nil
}

// Delete ends a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts every session idle for longer than the TTL and returns how
// many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if st.expiredLocked(s, now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps on every tick until ctx is cancelled.
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				logging.FromContext(ctx).Info("idle sessions evicted", "removed", n, "live", st.Len())
			}
		}
	}
}

func (st *SessionStore) expiredLocked(s *Session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastUsed) > st.ttl
}

func (st *SessionStore) evictOldestLocked(n int) {
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lastUsed.Before(all[j].lastUsed) })
	for i := 0; i < n && i < len(all); i++ {
		delete(st.sessions, all[i].ID)
	}
}
