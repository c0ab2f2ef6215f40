// Package quiz implements the movie trivia game: the per-user session store
// and the engine producing questions and judging answers.
package quiz

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cinema-bot/internal/model"
)

// DefaultSessionTTL is how long an abandoned session survives before the
// cleaner removes it. Active sessions are touched on every access.
const DefaultSessionTTL = time.Hour

// Session tracks one user's progress through a trivia game. A session is
// keyed per user, not per chat, so concurrent games by the same user in two
// chats share it.
type Session struct {
	Score int
	Total int

	// Pending is the correct answer of the currently shown question.
	// It is set when a question is emitted and cleared the instant an
	// answer is judged, so a replayed selection cannot be double-scored.
	Pending     *model.MovieInfo
	Distractors []model.MovieInfo

	touchedAt time.Time
}

// Store is the process-wide mapping from user id to in-progress session.
// It is not persisted; per-key independence is all the concurrency it
// guarantees.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
}

// NewStore creates a session store. A non-positive ttl falls back to
// DefaultSessionTTL.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Store{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
	}
}

// CreateOrReset allocates a fresh session for the user, discarding any
// in-progress one.
func (s *Store) CreateOrReset(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{touchedAt: time.Now()}
	s.sessions[userID] = sess
	return sess
}

// Get returns the user's session, if any, and marks it as recently used.
func (s *Store) Get(userID int64) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if ok {
		sess.touchedAt = time.Now()
	}
	return sess, ok
}

// Delete removes the user's session.
func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartCleaner launches a background sweep removing sessions idle longer
// than the store TTL, bounding memory for abandoned games.
func (s *Store) StartCleaner(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if n := s.sweep(time.Now()); n > 0 {
				log.Debug().Int("evicted", n).Msg("Swept idle quiz sessions")
			}
		}
	}()
}

// sweep removes sessions idle since before now-ttl and reports how many.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for userID, sess := range s.sessions {
		if now.Sub(sess.touchedAt) >= s.ttl {
			delete(s.sessions, userID)
			evicted++
		}
	}
	return evicted
}
