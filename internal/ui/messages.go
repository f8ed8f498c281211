package ui

import (
	"tourdeck/internal/eventbus"
	"tourdeck/internal/ui/services/querysync"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// toursLoadedMsg carries a finished tours request back to the update loop
type toursLoadedMsg struct {
	out querysync.Outcome
}

// priceRangeMsg carries a finished price range request back to the update loop
type priceRangeMsg struct {
	out querysync.PriceRangeOutcome
}
