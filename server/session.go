package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"weatherdash/logger"
	"weatherdash/manager"
	"weatherdash/metrics"
)

const sessionCookie = "weatherdash_session"

type session struct {
	dashboard *manager.Dashboard
	lastSeen  time.Time
}

// sessions maps a browser cookie to its own Dashboard. Nothing outlives the
// process.
type sessions struct {
	mu      sync.Mutex
	items   map[string]*session
	ttl     time.Duration
	now     func() time.Time
	factory func() *manager.Dashboard
}

func newSessions(ttl time.Duration, factory func() *manager.Dashboard) *sessions {
	return &sessions{
		items:   make(map[string]*session),
		ttl:     ttl,
		now:     time.Now,
		factory: factory,
	}
}

// get returns the caller's session, creating one and setting the cookie when
// the request carries no known id.
func (s *sessions) get(w http.ResponseWriter, r *http.Request) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.find(r); ok {
		return sess, false
	}

	id := uuid.NewString()
	sess := &session{dashboard: s.factory(), lastSeen: s.now()}
	s.items[id] = sess
	metrics.Sessions.Set(float64(len(s.items)))

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, true
}

// lookup returns the caller's session without creating one.
func (s *sessions) lookup(r *http.Request) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.find(r)
}

func (s *sessions) find(r *http.Request) (*session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	sess, ok := s.items[cookie.Value]
	if ok {
		sess.lastSeen = s.now()
	}
	return sess, ok
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.items)
}

// evict drops sessions idle for longer than the TTL.
func (s *sessions) evict() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			delete(s.items, id)
			evicted++
		}
	}
	metrics.Sessions.Set(float64(len(s.items)))

	return evicted
}

func (s *sessions) janitor(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}

	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evict(); n > 0 {
				logger.Debugw("evicted idle sessions", "count", n)
			}
		}
	}
}
