package results

import (
	"tourdeck/internal/domain"
)

// State holds the currently displayed page of tours
type State struct {
	Items      []domain.Tour
	Pagination domain.Pagination
	Loaded     bool  // a successful fetch populated the page
	LastErr    error // failure of the most recent fetch, cleared on invalidation
}

// Snapshot is a read-only copy of the store for rendering
type Snapshot struct {
	Items      []domain.Tour
	Pagination domain.Pagination
	Loaded     bool
	Err        error
}

// IsEmpty reports whether a loaded page came back without tours
func (s Snapshot) IsEmpty() bool {
	return s.Loaded && len(s.Items) == 0
}

// HasNext reports whether a following page exists
func (s Snapshot) HasNext() bool {
	return s.Loaded && s.Pagination.Page < s.Pagination.TotalPages
}

// HasPrev reports whether a preceding page exists
func (s Snapshot) HasPrev() bool {
	return s.Loaded && s.Pagination.Page > 1
}
