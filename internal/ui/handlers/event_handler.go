package handlers

import (
	"fmt"
	"sync"
	"time"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

// maxActivity is how many activity lines are kept
const maxActivity = 50

// EventHandler turns domain events forwarded from the bus into the
// activity log shown by the UI
type EventHandler struct {
	mu       sync.Mutex
	lines    []string
	stale    int
	failures int
	now      func() time.Time
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{now: time.Now}
}

// HandleEvent records an event. It reports whether the event changed
// anything worth re-rendering.
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) bool {
	var line string

	switch e := event.(type) {
	case domain.FetchStartedEvent:
		line = fmt.Sprintf("request %d: tours page %d for provider %s", e.Token, e.Query.Page, e.Query.ProviderID)

	case domain.ResultsLoadedEvent:
		line = fmt.Sprintf("request %d: %d tours, page %d of %d", e.Token, e.Count, e.Pagination.Page, e.Pagination.TotalPages)

	case domain.FetchFailedEvent:
		h.mu.Lock()
		h.failures++
		h.mu.Unlock()
		line = fmt.Sprintf("request %d: %v", e.Token, e.Err)

	case domain.StaleResponseEvent:
		h.mu.Lock()
		h.stale++
		h.mu.Unlock()
		line = fmt.Sprintf("request %d: %s response discarded, latest is %d", e.Token, e.Op, e.Latest)

	case domain.PriceRangeLoadedEvent:
		if e.Range == nil {
			line = fmt.Sprintf("price range: none for provider %s", e.Filter.ProviderID)
		} else {
			line = fmt.Sprintf("price range: %g-%g %s over %d tours", e.Range.MinPrice, e.Range.MaxPrice, e.Range.Currency, e.Range.Count)
		}

	case domain.FiltersAppliedEvent:
		line = fmt.Sprintf("filters applied for provider %s", e.Query.ProviderID)

	case domain.FiltersClearedEvent:
		line = "filters cleared"

	case domain.ValidationFailedEvent:
		line = fmt.Sprintf("apply rejected: %s", e.Code)

	default:
		return false
	}

	h.append(line)
	return true
}

func (h *EventHandler) append(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines = append(h.lines, fmt.Sprintf("%s  %s", h.now().Format("15:04:05"), line))
	if len(h.lines) > maxActivity {
		h.lines = h.lines[len(h.lines)-maxActivity:]
	}
}

// Lines returns the recorded activity, oldest first
func (h *EventHandler) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}

// StaleCount returns how many responses lost a last-request-wins race
func (h *EventHandler) StaleCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stale
}

// FailureCount returns how many latest requests failed
func (h *EventHandler) FailureCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failures
}
