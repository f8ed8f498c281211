package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventFiltersChanged     EventType = "FiltersChanged"
	EventFiltersApplied     EventType = "FiltersApplied"
	EventFiltersCleared     EventType = "FiltersCleared"
	EventResultsInvalidated EventType = "ResultsInvalidated"
	EventResultsLoaded      EventType = "ResultsLoaded"
	EventFetchStarted       EventType = "FetchStarted"
	EventFetchFailed        EventType = "FetchFailed"
	EventStaleResponse      EventType = "StaleResponseDiscarded"
	EventPriceRangeLoaded   EventType = "PriceRangeLoaded"
	EventLoadingChanged     EventType = "LoadingChanged"
	EventValidationFailed   EventType = "ValidationFailed"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// FiltersChangedEvent is emitted after any filter setter changed the selection
type FiltersChangedEvent struct {
	Field     string // "provider", "city", "category" or "price"
	Selection FilterSelection
}

func (e FiltersChangedEvent) Type() EventType { return EventFiltersChanged }

// FiltersAppliedEvent is emitted when apply succeeded
type FiltersAppliedEvent struct {
	Query AppliedQuery
}

func (e FiltersAppliedEvent) Type() EventType { return EventFiltersApplied }

// FiltersClearedEvent is emitted when the selection is reset to defaults
type FiltersClearedEvent struct{}

func (e FiltersClearedEvent) Type() EventType { return EventFiltersCleared }

// ValidationFailedEvent is emitted when apply was rejected
type ValidationFailedEvent struct {
	Code ValidationCode
}

func (e ValidationFailedEvent) Type() EventType { return EventValidationFailed }

// ResultsInvalidatedEvent is emitted when the displayed results were cleared
type ResultsInvalidatedEvent struct{}

func (e ResultsInvalidatedEvent) Type() EventType { return EventResultsInvalidated }

// ResultsLoadedEvent is emitted when a fetched page replaced the stored one
type ResultsLoadedEvent struct {
	Token      uint64
	Count      int
	Pagination Pagination
}

func (e ResultsLoadedEvent) Type() EventType { return EventResultsLoaded }

// FetchStartedEvent is emitted when a tours request is dispatched
type FetchStartedEvent struct {
	Token uint64
	Query AppliedQuery
}

func (e FetchStartedEvent) Type() EventType { return EventFetchStarted }

// FetchFailedEvent is emitted when the latest request failed
type FetchFailedEvent struct {
	Token uint64
	Op    string
	Err   error
}

func (e FetchFailedEvent) Type() EventType { return EventFetchFailed }

// StaleResponseEvent is emitted when a response lost the last-request-wins race
type StaleResponseEvent struct {
	Token  uint64
	Latest uint64
	Op     string
}

func (e StaleResponseEvent) Type() EventType { return EventStaleResponse }

// PriceRangeLoadedEvent is emitted when a fresh price range was installed
type PriceRangeLoadedEvent struct {
	Filter PriceRangeFilter
	Range  *PriceRange // nil when the backend has no range for the filter
}

func (e PriceRangeLoadedEvent) Type() EventType { return EventPriceRangeLoaded }

// LoadingChangedEvent is emitted when the loading indicator turns on or off
type LoadingChangedEvent struct {
	Active bool
	Label  string
}

func (e LoadingChangedEvent) Type() EventType { return EventLoadingChanged }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
