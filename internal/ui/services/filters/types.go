package filters

import (
	"tourdeck/internal/domain"
)

// Field names reported in FiltersChangedEvent
const (
	FieldProvider = "provider"
	FieldCity     = "city"
	FieldCategory = "category"
	FieldPrice    = "price"
)

// State holds the filter controller state
type State struct {
	Selection  domain.FilterSelection
	PriceRange *domain.PriceRange   // nil until the backend supplied one
	Applied    *domain.AppliedQuery // nil until the first successful apply
	Dirty      bool                 // edits not yet applied
	Searched   bool                 // results reflect the current selection
}
