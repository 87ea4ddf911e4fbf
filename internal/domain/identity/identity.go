// internal/domain/identity/identity.go
package identity

import (
	"context"
	"sync"
)

// Principal is the authenticated shopper.
type Principal struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// EventKind describes an auth state transition
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is delivered to auth change listeners
type Event struct {
	Kind      EventKind
	Principal Principal
}

// Provider exposes the current principal and auth state changes.
type Provider interface {
	CurrentPrincipal(ctx context.Context) (Principal, bool)
	// OnAuthChange registers a listener and returns a function that removes it.
	OnAuthChange(listener func(Event)) (unsubscribe func())
}

type subscription struct {
	id int
	fn func(Event)
}

// Session is an in-process Provider for a single shopper session.
// Listeners run synchronously, in subscription order, on the goroutine
// that calls SignIn or SignOut.
type Session struct {
	mu        sync.Mutex
	principal *Principal
	listeners []subscription
	nextID    int
}

// NewSession creates a signed out session
func NewSession() *Session {
	return &Session{}
}

// NewSignedInSession creates a session already holding p. No event is fired.
func NewSignedInSession(p Principal) *Session {
	return &Session{principal: &p}
}

func (s *Session) CurrentPrincipal(_ context.Context) (Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.principal == nil {
		return Principal{}, false
	}
	return *s.principal, true
}

func (s *Session) OnAuthChange(listener func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: listener})

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

// SignIn sets the principal and notifies listeners.
func (s *Session) SignIn(p Principal) {
	s.mu.Lock()
	s.principal = &p
	listeners := s.snapshot()
	s.mu.Unlock()

	notify(listeners, Event{Kind: SignedIn, Principal: p})
}

// SignOut clears the principal and notifies listeners. No-op when signed out.
func (s *Session) SignOut() {
	s.mu.Lock()
	if s.principal == nil {
		s.mu.Unlock()
		return
	}
	p := *s.principal
	s.principal = nil
	listeners := s.snapshot()
	s.mu.Unlock()

	notify(listeners, Event{Kind: SignedOut, Principal: p})
}

func (s *Session) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Session) snapshot() []subscription {
	out := make([]subscription, len(s.listeners))
	copy(out, s.listeners)
	return out
}

func notify(listeners []subscription, e Event) {
	for _, l := range listeners {
		l.fn(e)
	}
}
