package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL bounds how long an idle page session is kept.
const DefaultSessionTTL = 30 * time.Minute

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("dashboard: session not found")
	errInvalidSession  = errors.New("dashboard: session id is required")
)

// Session is the state of one dashboard page load.
type Session struct {
	ID            string
	Viewer        ViewerContext
	UI            UIState
	Notifications *NotificationCenter
	OpenedAt      time.Time
	TouchedAt     time.Time
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID            string             `json:"id"`
	Viewer        ViewerContext      `json:"viewer"`
	UI            UIState            `json:"ui"`
	Classes       map[string]string  `json:"classes"`
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int                `json:"unread_count"`
	OpenedAt      time.Time          `json:"opened_at"`
}

// Snapshot renders the session for transports.
func (s Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:       s.ID,
		Viewer:   s.Viewer,
		UI:       s.UI,
		Classes:  s.UI.Classes(),
		OpenedAt: s.OpenedAt,
	}
	if s.Notifications != nil {
		snap.Notifications = s.Notifications.Views()
		snap.UnreadCount = s.Notifications.UnreadCount()
	}
	return snap
}

// OwnedBy reports whether viewer opened the session.
func (s Session) OwnedBy(viewer ViewerContext) bool {
	return s.Viewer.UserID == viewer.UserID
}

func (s Session) clone() Session {
	out := s
	if s.Notifications != nil {
		out.Notifications = s.Notifications.Clone()
	}
	return out
}

// SessionStore keeps page sessions.
type SessionStore interface {
	Open(ctx context.Context, viewer ViewerContext, notifications []Notification) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Update(ctx context.Context, id string, fn func(*Session) error) (Session, error)
}

// InMemorySessionStore keeps sessions in memory and evicts idle ones.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// SessionStoreOption customizes the in-memory store.
type SessionStoreOption func(*InMemorySessionStore)

// WithSessionClock overrides the store clock.
func WithSessionClock(now func() time.Time) SessionStoreOption {
	return func(s *InMemorySessionStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewInMemorySessionStore builds a store; ttl <= 0 uses DefaultSessionTTL.
func NewInMemorySessionStore(ttl time.Duration, opts ...SessionStoreOption) *InMemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	store := &InMemorySessionStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Open starts a fresh session with its own copy of notifications.
func (s *InMemorySessionStore) Open(_ context.Context, viewer ViewerContext, notifications []Notification) (Session, error) {
	now := s.now()
	session := &Session{
		ID:            uuid.NewString(),
		Viewer:        viewer,
		UI:            NewUIState(),
		Notifications: NewNotificationCenter(notifications),
		OpenedAt:      now,
		TouchedAt:     now,
	}
	s.mu.Lock()
	s.evictLocked(now)
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session.clone(), nil
}

// Get returns a copy of the session.
func (s *InMemorySessionStore) Get(_ context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, errInvalidSession
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session, now) {
		delete(s.sessions, id)
		return Session{}, ErrSessionNotFound
	}
	session.TouchedAt = now
	return session.clone(), nil
}

// Update applies fn to the stored session under the store lock. A failing
// fn leaves the session untouched.
func (s *InMemorySessionStore) Update(_ context.Context, id string, fn func(*Session) error) (Session, error) {
	if id == "" {
		return Session{}, errInvalidSession
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok || s.expired(session, now) {
		delete(s.sessions, id)
		return Session{}, ErrSessionNotFound
	}
	working := session.clone()
	if err := fn(&working); err != nil {
		return Session{}, err
	}
	working.ID = session.ID
	working.TouchedAt = now
	s.sessions[id] = &working
	return working.clone(), nil
}

// Len reports the number of live sessions.
func (s *InMemorySessionStore) Len() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked(now)
	return len(s.sessions)
}

func (s *InMemorySessionStore) expired(session *Session, now time.Time) bool {
	return now.Sub(session.TouchedAt) > s.ttl
}

func (s *InMemorySessionStore) evictLocked(now time.Time) {
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
		}
	}
}
