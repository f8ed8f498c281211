package results

import (
	"log"
	"sync"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

// Service holds the current page of tours and its pagination
type Service struct {
	mu    sync.RWMutex
	state *State
	limit int
	bus   eventbus.EventBus
}

// NewService creates a results store that requests limit items per page
func NewService(bus eventbus.EventBus, limit int) *Service {
	if limit < 1 {
		limit = 10
	}
	s := &Service{bus: bus, limit: limit, state: &State{}}
	s.resetLocked()
	return s
}

// Limit returns the page size
func (s *Service) Limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Pagination.Limit
}

// Snapshot returns a copy of the store
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.Tour, len(s.state.Items))
	copy(items, s.state.Items)
	return Snapshot{
		Items:      items,
		Pagination: s.state.Pagination,
		Loaded:     s.state.Loaded,
		Err:        s.state.LastErr,
	}
}

// Loaded reports whether a page from a successful fetch is displayed
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loaded
}

// CanSetPage reports whether n is a valid target for the loaded page
func (s *Service) CanSetPage(n int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Loaded && n >= 1 && n <= s.state.Pagination.TotalPages
}

// SetPage validates a page change. Pagination moves when the fetch for the
// new page resolves, not here.
func (s *Service) SetPage(n int) bool {
	if !s.CanSetPage(n) {
		log.Printf("results: ignoring page %d", n)
		return false
	}
	return true
}

// OnFetchSuccess replaces the page wholesale
func (s *Service) OnFetchSuccess(page domain.ResultPage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Tour, len(page.Items))
	copy(items, page.Items)
	p := page.Pagination
	if p.Limit < 1 {
		p.Limit = s.limit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}

	s.state.Items = items
	s.state.Pagination = p
	s.state.Loaded = true
	s.state.LastErr = nil
}

// OnFetchFailure empties the page and remembers the error for display
func (s *Service) OnFetchFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("results: fetch failed: %v", err)
	s.resetLocked()
	s.state.LastErr = err
}

// Invalidate empties the page after a filter change
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()

	s.bus.Publish(domain.ResultsInvalidatedEvent{})
}

func (s *Service) resetLocked() {
	s.state.Items = []domain.Tour{}
	s.state.Pagination = domain.Pagination{
		Page:       1,
		Limit:      s.limit,
		Total:      0,
		TotalPages: 1,
	}
	s.state.Loaded = false
	s.state.LastErr = nil
}
