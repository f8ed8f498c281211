package input

import (
	"tourdeck/internal/ui/coordinator"
)

// ModelContext implements the Context interface over the coordinator
type ModelContext struct {
	Coordinator *coordinator.Coordinator
}

func (c *ModelContext) IsCityEnabled() bool {
	return c.Coordinator.Filters.IsCityEnabled()
}

func (c *ModelContext) IsCategoryEnabled() bool {
	return c.Coordinator.Filters.IsCategoryEnabled()
}

func (c *ModelContext) IsPriceEnabled() bool {
	return c.Coordinator.Filters.IsPriceEnabled()
}

func (c *ModelContext) HasApplied() bool {
	return c.Coordinator.Filters.HasApplied()
}

func (c *ModelContext) HasNextPage() bool {
	return c.Coordinator.Results.Snapshot().HasNext()
}

func (c *ModelContext) HasPrevPage() bool {
	return c.Coordinator.Results.Snapshot().HasPrev()
}

// ResultCount returns the number of tours on the loaded page
func (c *ModelContext) ResultCount() int {
	return len(c.Coordinator.Results.Snapshot().Items)
}

func (c *ModelContext) ShareQuery() string {
	return c.Coordinator.ShareQuery()
}
