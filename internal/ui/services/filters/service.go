package filters

import (
	"log"
	"sync"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
)

// Service owns the filter selection, its capability gates and the dirty flag.
// Every mutation goes through it so dependent filters and results are
// invalidated the same way each time.
type Service struct {
	mu           sync.Mutex
	state        *State
	bus          eventbus.EventBus
	country      session.CountrySource
	invalidateFn func() // clears results and voids in-flight fetches
}

// NewService creates a new filter service
func NewService(bus eventbus.EventBus, country session.CountrySource) *Service {
	return &Service{
		state:   &State{},
		bus:     bus,
		country: country,
	}
}

// SetInvalidateFunction sets the function called on every filter mutation
func (s *Service) SetInvalidateFunction(fn func()) {
	s.invalidateFn = fn
}

// Selection returns the current selection with the session's country
func (s *Service) Selection() domain.FilterSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectionLocked()
}

// PriceRange returns a copy of the known price range
func (s *Service) PriceRange() (domain.PriceRange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.PriceRange == nil {
		return domain.PriceRange{}, false
	}
	return *s.state.PriceRange, true
}

// Applied returns the last applied query
func (s *Service) Applied() (domain.AppliedQuery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Applied == nil {
		return domain.AppliedQuery{}, false
	}
	return *s.state.Applied, true
}

// IsDirty reports whether there are unapplied edits
func (s *Service) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Dirty
}

// HasSearched reports whether the displayed results belong to the current selection
func (s *Service) HasSearched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Searched
}

// PriceRangeFilter returns the key a price range should be requested for
func (s *Service) PriceRangeFilter() domain.PriceRangeFilter {
	return s.Selection().PriceRangeFilter()
}

// IsCityEnabled reports whether a city can be chosen
func (s *Service) IsCityEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narrowingEnabledLocked()
}

// IsCategoryEnabled reports whether a category can be chosen
func (s *Service) IsCategoryEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.narrowingEnabledLocked()
}

// IsPriceEnabled reports whether the price slider can be used
func (s *Service) IsPriceEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceEnabledLocked()
}

// SetProvider changes the root filter and resets everything derived from it
func (s *Service) SetProvider(id string) {
	s.mu.Lock()
	s.state.Selection.ProviderID = id
	s.state.Selection.CityID = ""
	s.state.Selection.CategoryID = ""
	s.resetPricesLocked()
	s.markDirtyLocked()
	sel := s.selectionLocked()
	s.mu.Unlock()

	log.Printf("filters: provider set to %q", id)
	s.invalidate()
	s.bus.Publish(domain.FiltersChangedEvent{Field: FieldProvider, Selection: sel})
}

// SetCity narrows by city. Rejected while no provider or country is set.
func (s *Service) SetCity(id string) bool {
	return s.setNarrowing(FieldCity, id)
}

// SetCategory narrows by category. Rejected while no provider or country is set.
func (s *Service) SetCategory(id string) bool {
	return s.setNarrowing(FieldCategory, id)
}

func (s *Service) setNarrowing(field, id string) bool {
	s.mu.Lock()
	if !s.narrowingEnabledLocked() {
		s.mu.Unlock()
		log.Printf("filters: ignoring %s %q, filter disabled", field, id)
		return false
	}
	if field == FieldCity {
		s.state.Selection.CityID = id
	} else {
		s.state.Selection.CategoryID = id
	}
	s.resetPricesLocked()
	s.markDirtyLocked()
	sel := s.selectionLocked()
	s.mu.Unlock()

	s.invalidate()
	s.bus.Publish(domain.FiltersChangedEvent{Field: field, Selection: sel})
	return true
}

// SetPriceRange sets the price window. Out-of-order or out-of-bounds values
// are ignored rather than clamped.
func (s *Service) SetPriceRange(min, max float64) bool {
	s.mu.Lock()
	if !s.priceEnabledLocked() {
		s.mu.Unlock()
		return false
	}
	pr := s.state.PriceRange
	if min >= max || !pr.Contains(min) || !pr.Contains(max) {
		s.mu.Unlock()
		log.Printf("filters: ignoring price window %.2f-%.2f outside %.2f-%.2f", min, max, pr.MinPrice, pr.MaxPrice)
		return false
	}
	s.state.Selection.MinPrice = min
	s.state.Selection.MaxPrice = max
	s.markDirtyLocked()
	sel := s.selectionLocked()
	s.mu.Unlock()

	s.invalidate()
	s.bus.Publish(domain.FiltersChangedEvent{Field: FieldPrice, Selection: sel})
	return true
}

// Apply validates the selection and turns it into the applied query, page 1.
// changed is false when the same query was already applied with no edits since.
func (s *Service) Apply() (query domain.AppliedQuery, changed bool, err error) {
	s.mu.Lock()
	sel := s.selectionLocked()
	switch {
	case sel.ProviderID == "":
		err = domain.ErrProviderRequired
	case sel.CountryID == "":
		err = domain.ErrCountryRequired
	}
	if err != nil {
		s.mu.Unlock()
		verr := err.(*domain.ValidationError)
		log.Printf("filters: apply rejected: %s", verr.Code)
		s.bus.Publish(domain.ValidationFailedEvent{Code: verr.Code})
		return domain.AppliedQuery{}, false, err
	}

	query = domain.AppliedQuery{FilterSelection: sel, Page: 1}
	changed = s.state.Dirty || s.state.Applied == nil || *s.state.Applied != query
	s.state.Applied = &query
	s.state.Dirty = false
	s.state.Searched = true
	s.mu.Unlock()

	s.bus.Publish(domain.FiltersAppliedEvent{Query: query})
	return query, changed, nil
}

// SetAppliedPage moves the applied query to page n
func (s *Service) SetAppliedPage(n int) (domain.AppliedQuery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Applied == nil || n < 1 {
		return domain.AppliedQuery{}, false
	}
	s.state.Applied.Page = n
	return *s.state.Applied, true
}

// Clear resets the selection to defaults without fetching
func (s *Service) Clear() {
	s.mu.Lock()
	s.state.Selection = domain.FilterSelection{}
	s.resetPricesLocked()
	s.state.Applied = nil
	s.state.Dirty = false
	s.state.Searched = false
	s.mu.Unlock()

	s.invalidate()
	s.bus.Publish(domain.FiltersClearedEvent{})
}

// Restore installs a selection decoded from a shareable query. The country
// always comes from the session, never from the query. Prices are left unset
// until RestorePrices checks them against a loaded range.
func (s *Service) Restore(q domain.AppliedQuery) {
	s.mu.Lock()
	s.state.Selection = q.FilterSelection
	s.state.Selection.CountryID = ""
	s.state.Selection.MinPrice = 0
	s.state.Selection.MaxPrice = 0
	s.state.Applied = nil
	s.state.Searched = false
	s.state.Dirty = q.ProviderID != ""
	sel := s.selectionLocked()
	s.mu.Unlock()

	if q.CountryID != "" && q.CountryID != sel.CountryID {
		log.Printf("filters: ignoring query country %q, session country is %q", q.CountryID, sel.CountryID)
	}
	s.invalidate()
}

// ApplyPriceRange installs a freshly loaded price range. Unless keepSelection
// is set the price window snaps to the new bounds.
func (s *Service) ApplyPriceRange(pr *domain.PriceRange, keepSelection bool) {
	s.mu.Lock()
	if pr != nil && !pr.Valid() {
		log.Printf("filters: discarding inverted price range %.2f-%.2f", pr.MinPrice, pr.MaxPrice)
		pr = nil
	}
	if pr == nil {
		s.state.PriceRange = nil
	} else {
		cp := *pr
		s.state.PriceRange = &cp
	}

	before := s.state.Selection
	if !keepSelection {
		s.resetPricesLocked()
	}
	// A window that moves under an applied query makes the results stale
	stale := before != s.state.Selection && s.state.Applied != nil
	if stale {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if stale {
		s.invalidate()
	}
}

// RestorePrices installs a price window taken from a shareable query. It
// follows the SetPriceRange rules; a window the loaded range cannot hold
// falls back to the bounds and false is returned.
func (s *Service) RestorePrices(min, max float64) bool {
	s.mu.Lock()
	before := s.state.Selection
	pr := s.state.PriceRange
	ok := pr != nil && min < max && pr.Contains(min) && pr.Contains(max)
	if ok {
		s.state.Selection.MinPrice = min
		s.state.Selection.MaxPrice = max
	} else {
		s.resetPricesLocked()
	}
	stale := before != s.state.Selection && s.state.Applied != nil
	if stale {
		s.markDirtyLocked()
	}
	s.mu.Unlock()

	if !ok {
		if pr == nil {
			log.Printf("filters: discarding shared price window %.2f-%.2f, no price range", min, max)
		} else {
			log.Printf("filters: discarding shared price window %.2f-%.2f outside %.2f-%.2f", min, max, pr.MinPrice, pr.MaxPrice)
		}
	}
	if stale {
		s.invalidate()
	}
	return ok
}

// HasApplied reports whether an applied query exists
func (s *Service) HasApplied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Applied != nil
}

func (s *Service) selectionLocked() domain.FilterSelection {
	sel := s.state.Selection
	if s.country != nil {
		sel.CountryID = s.country.CountryID()
	}
	return sel
}

func (s *Service) narrowingEnabledLocked() bool {
	sel := s.selectionLocked()
	return sel.ProviderID != "" && sel.CountryID != ""
}

func (s *Service) priceEnabledLocked() bool {
	return s.narrowingEnabledLocked() && s.state.PriceRange != nil && s.state.PriceRange.Count > 0
}

// resetPricesLocked snaps the price window to the known bounds. With no
// range the window is cleared, which the backend reads as no price filter.
func (s *Service) resetPricesLocked() {
	if pr := s.state.PriceRange; pr != nil {
		s.state.Selection.MinPrice = pr.MinPrice
		s.state.Selection.MaxPrice = pr.MaxPrice
		return
	}
	s.state.Selection.MinPrice = 0
	s.state.Selection.MaxPrice = 0
}

func (s *Service) markDirtyLocked() {
	s.state.Dirty = true
	s.state.Searched = false
}

func (s *Service) invalidate() {
	if s.invalidateFn != nil {
		s.invalidateFn()
	}
}
