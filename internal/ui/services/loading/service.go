package loading

import (
	"sync"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

// Service tracks outstanding requests so the UI can show a single spinner.
// Requests are keyed by the token the query synchronizer hands out.
type Service struct {
	mu      sync.Mutex
	pending map[uint64]string
	bus     eventbus.EventBus
}

// NewService creates a new loading service
func NewService(bus eventbus.EventBus) *Service {
	return &Service{
		pending: make(map[uint64]string),
		bus:     bus,
	}
}

// Begin marks token as loading
func (s *Service) Begin(token uint64, label string) {
	s.mu.Lock()
	wasIdle := len(s.pending) == 0
	s.pending[token] = label
	s.mu.Unlock()

	if wasIdle {
		s.bus.Publish(domain.LoadingChangedEvent{Active: true, Label: label})
	}
}

// End marks token as done. Unknown tokens are ignored.
func (s *Service) End(token uint64) {
	s.mu.Lock()
	if _, ok := s.pending[token]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.pending, token)
	idle := len(s.pending) == 0
	s.mu.Unlock()

	if idle {
		s.bus.Publish(domain.LoadingChangedEvent{Active: false})
	}
}

// Active reports whether anything is loading
func (s *Service) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending) > 0
}

// Count returns the number of outstanding requests
func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Label returns the label of the most recent outstanding request
func (s *Service) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest uint64
	label := ""
	for token, l := range s.pending {
		if token >= newest {
			newest = token
			label = l
		}
	}
	return label
}
