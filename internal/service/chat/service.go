package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/w3wg/crypto-sage/internal/model/chat"
	"github.com/w3wg/crypto-sage/pkg/log"
)

var (
	ErrPersonaRequired = errors.New("persona id is required")
	ErrSessionNotFound = errors.New("session not found")
)

// sessionState holds everything a browser page owns. mu serializes the chat
// loop so a transcript never has two writers.
type sessionState struct {
	mu         sync.Mutex
	session    chat.Session
	credential string
	transcript []chat.Message
	lastSeen   time.Time
}

// Service encapsulates in-memory conversation state. Nothing is persisted.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*sessionState
	ttl      time.Duration
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithTTL evicts sessions idle for longer than ttl. Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService bootstraps the in-memory session store.
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[string]*sessionState),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions an anonymous session bound to a persona.
func (s *Service) CreateSession(_ context.Context, personaID string) (chat.Session, error) {
	if personaID == "" {
		return chat.Session{}, ErrPersonaRequired
	}

	now := s.now()
	session := chat.Session{
		ID:        uuid.NewString(),
		PersonaID: personaID,
		CreatedAt: now.UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &sessionState{
		session:    session,
		transcript: make([]chat.Message, 0, 16),
		lastSeen:   now,
	}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	state, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return state.session, nil
}

// LoadTranscript returns a copy of the full transcript, system entry included.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	var copied []chat.Message
	err := s.withSession(sessionID, func(state *sessionState) error {
		copied = make([]chat.Message, len(state.transcript))
		copy(copied, state.transcript)
		return nil
	})
	return copied, err
}

// SetCredential replaces the credential held for the session.
func (s *Service) SetCredential(_ context.Context, sessionID, credential string) error {
	return s.withSession(sessionID, func(state *sessionState) error {
		state.credential = credential
		return nil
	})
}

// Credential returns the credential held for the session, possibly empty.
func (s *Service) Credential(_ context.Context, sessionID string) (string, error) {
	var credential string
	err := s.withSession(sessionID, func(state *sessionState) error {
		credential = state.credential
		return nil
	})
	return credential, err
}

// DeleteSession drops a session and everything it holds.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Len reports how many sessions are live.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle longer than the TTL and returns how many it removed.
func (s *Service) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, state := range s.sessions {
		// A session whose loop is busy is in use and skipped.
		if !state.mu.TryLock() {
			continue
		}
		if state.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
		state.mu.Unlock()
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				log.Infow("evicted idle sessions", "count", removed, "remaining", s.Len())
			}
		}
	}
}

func (s *Service) lookup(sessionID string) (*sessionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return state, nil
}

// withSession runs fn while holding the session lock and marks the session as seen.
func (s *Service) withSession(sessionID string, fn func(*sessionState) error) error {
	state, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	return s.withState(sessionID, state, fn)
}

// withState locks state and runs fn only if state is still the live entry for
// sessionID. A session deleted or swept between lookup and lock reports
// ErrSessionNotFound.
func (s *Service) withState(sessionID string, state *sessionState, fn func(*sessionState) error) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	s.mu.RLock()
	live := s.sessions[sessionID] == state
	s.mu.RUnlock()
	if !live {
		return ErrSessionNotFound
	}

	state.lastSeen = s.now()
	err := fn(state)
	state.lastSeen = s.now()
	return err
}
