package session

import "sync"

// CountrySource supplies the country context. The filter controller only reads it.
type CountrySource interface {
	CountryID() string
}

// Session holds the selection context chosen outside the tours screen
type Session struct {
	mu        sync.RWMutex
	countryID string
}

// New creates a session with the given country
func New(countryID string) *Session {
	return &Session{countryID: countryID}
}

// CountryID returns the current country, "" when none is selected
func (s *Session) CountryID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countryID
}

// SetCountryID replaces the country context
func (s *Session) SetCountryID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countryID = id
}
