package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenweave/greenweave/modules/taxonomy/domain/wizard"
)

// WizardService is the in-memory registry of wizard sessions, keyed by an
// opaque token the client carries between requests. Session state is only
// reachable through View and Mutate, which run their callback under the
// registry lock so concurrent requests on the same token serialize. Sessions
// expire after the configured TTL; expired entries are dropped on access and
// swept whenever a new session is created.
type WizardService struct {
	mu       sync.Mutex
	sessions map[string]*wizardEntry
	ttl      time.Duration
	now      func() time.Time
}

type wizardEntry struct {
	session  *wizard.Session
	deadline time.Time
}

func NewWizardService(ttl time.Duration) *WizardService {
	return &WizardService{
		sessions: make(map[string]*wizardEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a fresh session and returns its token.
func (s *WizardService) Create() string {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[token] = &wizardEntry{
		session:  wizard.NewSession(),
		deadline: s.now().Add(s.ttl),
	}
	return token
}

func (s *WizardService) withSession(token string, fn func(*wizard.Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return false
	}
	if s.now().After(entry.deadline) {
		delete(s.sessions, token)
		return false
	}
	entry.deadline = s.now().Add(s.ttl)
	fn(entry.session)
	return true
}

// View runs fn against the session for reading, refreshing its deadline.
// Expired and unknown tokens both report false and fn is not invoked.
func (s *WizardService) View(token string, fn func(*wizard.Session)) bool {
	return s.withSession(token, fn)
}

// Mutate runs fn against the session under the registry lock.
func (s *WizardService) Mutate(token string, fn func(*wizard.Session)) bool {
	return s.withSession(token, fn)
}

// Reset wipes the session state for a token, keeping the token alive.
func (s *WizardService) Reset(token string) bool {
	return s.Mutate(token, func(session *wizard.Session) {
		session.Reset()
	})
}

// Delete removes a session outright.
func (s *WizardService) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// Sweep drops all expired sessions and reports how many were removed.
func (s *WizardService) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *WizardService) sweepLocked() int {
	now := s.now()
	removed := 0
	for token, entry := range s.sessions {
		if now.After(entry.deadline) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
