package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
	"tourdeck/internal/ui/services/filters"
	"tourdeck/internal/ui/services/loading"
	"tourdeck/internal/ui/services/querysync"
	"tourdeck/internal/ui/services/results"
)

// ErrPageOutOfRange is returned by SetPageAndWait for a page the loaded results do not have
var ErrPageOutOfRange = errors.New("page out of range")

// Coordinator manages the tours screen services and their interactions
type Coordinator struct {
	// Services
	Filters *filters.Service
	Results *results.Service
	Sync    *querysync.Service
	Loading *loading.Service

	// Dependencies
	bus     eventbus.EventBus
	country session.CountrySource

	mu       sync.Mutex
	restored map[string]string // mount query waiting for its price range
	share    string            // shareable query of the last dispatched request
}

// NewCoordinator creates a new coordinator with all services
func NewCoordinator(bus eventbus.EventBus, country session.CountrySource, tours querysync.ToursFetcher, prices querysync.PriceRangeFetcher, pageLimit int) *Coordinator {
	c := &Coordinator{
		Filters: filters.NewService(bus, country),
		Results: results.NewService(bus, pageLimit),
		Loading: loading.NewService(bus),
		bus:     bus,
		country: country,
	}
	c.Sync = querysync.NewService(bus, tours, prices, c.Results, c.Loading)

	// Wire up service dependencies
	c.wireServices()

	return c
}

// wireServices connects services with their dependencies
func (c *Coordinator) wireServices() {
	// Any filter mutation voids in-flight fetches before clearing results,
	// so a response racing the change cannot repopulate the store.
	c.Filters.SetInvalidateFunction(func() {
		c.Sync.Supersede()
		c.Results.Invalidate()
	})
}

// SetProvider changes the provider and requests the price range for it
func (c *Coordinator) SetProvider(id string) *querysync.PriceRangeRequest {
	c.dropRestored()
	c.Filters.SetProvider(id)
	return c.requestPriceRange()
}

// SetCity narrows by city
func (c *Coordinator) SetCity(id string) bool {
	if !c.Filters.SetCity(id) {
		return false
	}
	c.dropRestored()
	return true
}

// SetCategory narrows by category and requests the price range for it
func (c *Coordinator) SetCategory(id string) (bool, *querysync.PriceRangeRequest) {
	if !c.Filters.SetCategory(id) {
		return false, nil
	}
	c.dropRestored()
	return true, c.requestPriceRange()
}

// SetPriceRange sets the price window
func (c *Coordinator) SetPriceRange(min, max float64) bool {
	if !c.Filters.SetPriceRange(min, max) {
		return false
	}
	c.dropRestored()
	return true
}

// Apply applies the selection. The returned request is nil when the same
// query is already loaded or in flight.
func (c *Coordinator) Apply() (*querysync.Request, error) {
	q, changed, err := c.Filters.Apply()
	if err != nil {
		return nil, err
	}
	if !changed && c.Sync.Covers(q) {
		log.Printf("coordinator: query unchanged, not refetching")
		return nil, nil
	}
	return c.dispatch(q), nil
}

// SetPage requests page n of the applied query. Out of range pages are ignored.
func (c *Coordinator) SetPage(n int) *querysync.Request {
	if !c.Results.SetPage(n) {
		return nil
	}
	q, ok := c.Filters.SetAppliedPage(n)
	if !ok {
		return nil
	}
	return c.dispatch(q)
}

// NextPage requests the page after the loaded one
func (c *Coordinator) NextPage() *querysync.Request {
	return c.SetPage(c.Results.Snapshot().Pagination.Page + 1)
}

// PrevPage requests the page before the loaded one
func (c *Coordinator) PrevPage() *querysync.Request {
	return c.SetPage(c.Results.Snapshot().Pagination.Page - 1)
}

// Clear resets the filters without fetching
func (c *Coordinator) Clear() {
	c.dropRestored()
	c.Filters.Clear()
	c.Sync.SupersedePriceRange()

	c.mu.Lock()
	c.share = ""
	c.mu.Unlock()
}

// Mount restores filters from a shareable query. Prices are settled once the
// returned price range request resolves. The decoded page is returned so the
// caller can move there after its first apply.
func (c *Coordinator) Mount(raw string) (*querysync.PriceRangeRequest, int, error) {
	values, err := querysync.ParseQueryString(raw)
	if err != nil {
		return nil, 1, fmt.Errorf("failed to parse query: %w", err)
	}

	q := querysync.Decode(values, nil)
	c.Filters.Restore(q)

	c.mu.Lock()
	if querysync.Explicit(values) {
		c.restored = values
	} else {
		c.restored = nil
	}
	c.mu.Unlock()

	log.Printf("coordinator: restored filters for provider %q, page %d", q.ProviderID, q.Page)
	return c.requestPriceRange(), q.Page, nil
}

// RunTours performs a tours request off the update loop
func (c *Coordinator) RunTours(ctx context.Context, req querysync.Request) querysync.Outcome {
	return c.Sync.Run(ctx, req)
}

// ResolveTours applies a tours outcome if it is still the latest
func (c *Coordinator) ResolveTours(out querysync.Outcome) bool {
	return c.Sync.Resolve(out)
}

// RunPriceRange performs a price range request off the update loop
func (c *Coordinator) RunPriceRange(ctx context.Context, req querysync.PriceRangeRequest) querysync.PriceRangeOutcome {
	return c.Sync.RunPriceRange(ctx, req)
}

// ResolvePriceRange installs a price range if it is the latest and still
// matches the selection. Failed requests keep the previous range. When the
// new bounds move the window under a query applied while the range was in
// flight, that query is applied again and the returned request must be run.
func (c *Coordinator) ResolvePriceRange(out querysync.PriceRangeOutcome) (bool, *querysync.Request) {
	if !c.Sync.ResolvePriceRange(out) {
		return false, nil
	}
	if out.Err != nil {
		return false, nil
	}
	if current := c.Filters.PriceRangeFilter(); current != out.Filter {
		log.Printf("coordinator: price range for %+v no longer matches %+v", out.Filter, current)
		return false, nil
	}

	c.mu.Lock()
	restored := c.restored
	c.restored = nil
	c.mu.Unlock()

	_, applied := c.Filters.Applied()
	pendingApply := applied && !c.Filters.IsDirty()

	if restored != nil {
		q := querysync.Decode(restored, out.Range)
		c.Filters.ApplyPriceRange(out.Range, true)
		c.Filters.RestorePrices(q.MinPrice, q.MaxPrice)
	} else {
		c.Filters.ApplyPriceRange(out.Range, false)
	}
	c.bus.Publish(domain.PriceRangeLoadedEvent{Filter: out.Filter, Range: out.Range})

	if !pendingApply || !c.Filters.IsDirty() {
		return true, nil
	}
	req, err := c.Apply()
	if err != nil {
		log.Printf("coordinator: failed to reapply after price range: %v", err)
		return true, nil
	}
	log.Printf("coordinator: price window moved under the applied query, refetching")
	return true, req
}

// ShareQuery returns the shareable query of the last dispatched request
func (c *Coordinator) ShareQuery() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.share
}

// ApplyAndWait applies the selection and waits for the fetch
func (c *Coordinator) ApplyAndWait(ctx context.Context) error {
	req, err := c.Apply()
	if err != nil || req == nil {
		return err
	}
	return c.wait(ctx, *req)
}

// SetPageAndWait moves to page n and waits for the fetch
func (c *Coordinator) SetPageAndWait(ctx context.Context, n int) error {
	req := c.SetPage(n)
	if req == nil {
		return fmt.Errorf("%w: %d", ErrPageOutOfRange, n)
	}
	return c.wait(ctx, *req)
}

// MountAndWait restores filters from a query and waits for the price range
func (c *Coordinator) MountAndWait(ctx context.Context, raw string) (int, error) {
	req, page, err := c.Mount(raw)
	if err != nil {
		return page, err
	}
	if req != nil {
		if _, reapply := c.ResolvePriceRange(c.RunPriceRange(ctx, *req)); reapply != nil {
			return page, c.wait(ctx, *reapply)
		}
	}
	return page, nil
}

func (c *Coordinator) wait(ctx context.Context, req querysync.Request) error {
	out := c.RunTours(ctx, req)
	if !c.ResolveTours(out) {
		return domain.ErrStaleResponse
	}
	return out.Err
}

// dispatch starts a fetch for q and records its shareable form
func (c *Coordinator) dispatch(q domain.AppliedQuery) *querysync.Request {
	var pr *domain.PriceRange
	if r, ok := c.Filters.PriceRange(); ok {
		pr = &r
	}
	share := querysync.QueryString(querysync.Encode(q, pr))

	c.mu.Lock()
	c.share = share
	c.mu.Unlock()

	req := c.Sync.Begin(q)
	return &req
}

// requestPriceRange starts a price range request for the current selection,
// or drops the known range when the gate is closed.
func (c *Coordinator) requestPriceRange() *querysync.PriceRangeRequest {
	f := c.Filters.PriceRangeFilter()
	if f.ProviderID == "" || f.CountryID == "" {
		c.Sync.SupersedePriceRange()
		c.Filters.ApplyPriceRange(nil, true)
		return nil
	}
	req := c.Sync.BeginPriceRange(f)
	return &req
}

func (c *Coordinator) dropRestored() {
	c.mu.Lock()
	c.restored = nil
	c.mu.Unlock()
}
