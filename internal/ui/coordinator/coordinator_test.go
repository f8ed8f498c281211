package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
	"tourdeck/internal/session"
)

type fakeBackend struct {
	mu     sync.Mutex
	calls  []domain.AppliedQuery
	pages  map[int]domain.ResultPage
	ranges map[domain.PriceRangeFilter]*domain.PriceRange
	err    error
}

func (b *fakeBackend) FetchTours(ctx context.Context, q domain.AppliedQuery, limit int) (domain.ResultPage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, q)
	if b.err != nil {
		return domain.ResultPage{}, b.err
	}
	if p, ok := b.pages[q.Page]; ok {
		return p, nil
	}
	return domain.ResultPage{Items: []domain.Tour{}, Pagination: domain.Pagination{Page: q.Page, Limit: limit, TotalPages: 1}}, nil
}

func (b *fakeBackend) FetchPriceRange(ctx context.Context, f domain.PriceRangeFilter) (*domain.PriceRange, error) {
	return b.ranges[f], nil
}

func (b *fakeBackend) lastCall() domain.AppliedQuery {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[len(b.calls)-1]
}

var mxnRange = &domain.PriceRange{MinPrice: 100, MaxPrice: 5000, Currency: "MXN", Count: 42}

func newBackend() *fakeBackend {
	return &fakeBackend{
		pages: map[int]domain.ResultPage{
			1: {
				Items:      []domain.Tour{{ID: "t1"}, {ID: "t2"}},
				Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 2, TotalPages: 1},
			},
		},
		ranges: map[domain.PriceRangeFilter]*domain.PriceRange{
			{ProviderID: "P1", CountryID: "MX"}: mxnRange,
			{ProviderID: "P1", CountryID: "MX", CategoryID: "food"}: {MinPrice: 300, MaxPrice: 900, Currency: "MXN", Count: 5},
		},
	}
}

func newTestCoordinator(country string) (*Coordinator, *fakeBackend) {
	backend := newBackend()
	return NewCoordinator(eventbus.NullBus{}, session.New(country), backend, backend, 10), backend
}

func selectProvider(t *testing.T, c *Coordinator, id string) {
	t.Helper()
	req := c.SetProvider(id)
	require.NotNil(t, req)
	installed, _ := c.ResolvePriceRange(c.RunPriceRange(context.Background(), *req))
	require.True(t, installed)
}

func TestApplyDispatchesExactPayload(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	require.NoError(t, c.ApplyAndWait(context.Background()))

	want := domain.AppliedQuery{
		FilterSelection: domain.FilterSelection{ProviderID: "P1", CountryID: "MX", MinPrice: 100, MaxPrice: 5000},
		Page:            1,
	}
	applied, ok := c.Filters.Applied()
	require.True(t, ok)
	assert.Equal(t, want, applied)
	assert.Equal(t, want, backend.lastCall())
	assert.Equal(t, "countryId=MX&page=1&userId=P1", c.ShareQuery())
}

func TestFilterChangeClearsLoadedResults(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	selectProvider(t, c, "P1")
	require.NoError(t, c.ApplyAndWait(context.Background()))
	require.Len(t, c.Results.Snapshot().Items, 2)

	require.True(t, c.SetCity("C9"))

	snap := c.Results.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, 0, snap.Pagination.Total)
	assert.True(t, c.Filters.IsDirty())
}

func TestEverySetterInvalidates(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	steps := []func(){
		func() { c.SetCity("C1") },
		func() { c.SetCategory("food") },
		func() { c.SetPriceRange(300, 400) },
		func() { c.SetProvider("P1") },
	}
	for i, step := range steps {
		require.NoError(t, c.ApplyAndWait(context.Background()))
		require.NotEmpty(t, c.Results.Snapshot().Items, "step %d", i)

		step()
		assert.Empty(t, c.Results.Snapshot().Items, "step %d", i)
		assert.True(t, c.Filters.IsDirty(), "step %d", i)
	}
}

func TestApplyWithoutProvider(t *testing.T) {
	c, backend := newTestCoordinator("MX")

	req, err := c.Apply()
	assert.Nil(t, req)
	assert.ErrorIs(t, err, domain.ErrProviderRequired)
	assert.Empty(t, backend.calls)
}

func TestApplyWithoutCountry(t *testing.T) {
	c, backend := newTestCoordinator("")
	assert.Nil(t, c.SetProvider("P1"), "no price range without country")

	_, err := c.Apply()
	assert.ErrorIs(t, err, domain.ErrCountryRequired)
	assert.Empty(t, backend.calls)
}

func TestApplyTwiceDoesNotRefetch(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	first, err := c.Apply()
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := c.Apply()
	require.NoError(t, err)
	assert.Nil(t, second, "same query already in flight")

	require.True(t, c.ResolveTours(c.RunTours(context.Background(), *first)))
	third, err := c.Apply()
	require.NoError(t, err)
	assert.Nil(t, third, "same query already loaded")
	assert.Len(t, backend.calls, 1)
}

func TestApplyRefetchesAfterFailure(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")
	backend.err = errors.New("boom")

	err := c.ApplyAndWait(context.Background())
	var fe *domain.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Empty(t, c.Results.Snapshot().Items)

	backend.err = nil
	require.NoError(t, c.ApplyAndWait(context.Background()))
	assert.Len(t, c.Results.Snapshot().Items, 2)
}

func TestSlowResponseAfterFilterChangeIsDiscarded(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	req, err := c.Apply()
	require.NoError(t, err)
	out := c.RunTours(context.Background(), *req)

	c.SetCity("C9")
	assert.False(t, c.ResolveTours(out))
	assert.Empty(t, c.Results.Snapshot().Items)
	assert.False(t, c.Loading.Active())
}

func TestSetPageBounds(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	backend.pages[1] = domain.ResultPage{
		Items:      []domain.Tour{{ID: "t1"}},
		Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3},
	}
	backend.pages[3] = domain.ResultPage{
		Items:      []domain.Tour{{ID: "t21"}},
		Pagination: domain.Pagination{Page: 3, Limit: 10, Total: 25, TotalPages: 3},
	}
	selectProvider(t, c, "P1")
	require.NoError(t, c.ApplyAndWait(context.Background()))

	before, _ := c.Filters.Applied()
	for _, n := range []int{0, -1, 4} {
		assert.Nil(t, c.SetPage(n))
		err := c.SetPageAndWait(context.Background(), n)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	}
	after, _ := c.Filters.Applied()
	assert.Equal(t, before, after)
	assert.Len(t, backend.calls, 1)

	require.NoError(t, c.SetPageAndWait(context.Background(), 3))
	assert.Equal(t, 3, c.Results.Snapshot().Pagination.Page)
	assert.Equal(t, "t21", c.Results.Snapshot().Items[0].ID)
	assert.Contains(t, c.ShareQuery(), "page=3")
	assert.Nil(t, c.NextPage())
	assert.NotNil(t, c.PrevPage())
}

func TestPageLastRequestWins(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	backend.pages[1] = domain.ResultPage{Items: []domain.Tour{{ID: "p1"}}, Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 30, TotalPages: 3}}
	backend.pages[2] = domain.ResultPage{Items: []domain.Tour{{ID: "p2"}}, Pagination: domain.Pagination{Page: 2, Limit: 10, Total: 30, TotalPages: 3}}
	backend.pages[3] = domain.ResultPage{Items: []domain.Tour{{ID: "p3"}}, Pagination: domain.Pagination{Page: 3, Limit: 10, Total: 30, TotalPages: 3}}
	selectProvider(t, c, "P1")
	require.NoError(t, c.ApplyAndWait(context.Background()))

	reqA := c.SetPage(2)
	reqB := c.SetPage(3)
	require.NotNil(t, reqA)
	require.NotNil(t, reqB)

	outA := c.RunTours(context.Background(), *reqA)
	outB := c.RunTours(context.Background(), *reqB)
	assert.True(t, c.ResolveTours(outB))
	assert.False(t, c.ResolveTours(outA))
	assert.Equal(t, "p3", c.Results.Snapshot().Items[0].ID)
}

func TestCategoryChangeReloadsPriceRange(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	ok, req := c.SetCategory("food")
	require.True(t, ok)
	require.NotNil(t, req)
	installed, _ := c.ResolvePriceRange(c.RunPriceRange(context.Background(), *req))
	require.True(t, installed)

	pr, known := c.Filters.PriceRange()
	require.True(t, known)
	assert.Equal(t, 300.0, pr.MinPrice)
	sel := c.Filters.Selection()
	assert.Equal(t, 300.0, sel.MinPrice)
	assert.Equal(t, 900.0, sel.MaxPrice)
}

func TestPriceRangeForOldSelectionIsIgnored(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	reqP1 := c.SetProvider("P1")
	require.NotNil(t, reqP1)
	outP1 := c.RunPriceRange(context.Background(), *reqP1)

	c.Clear()
	installed, reapply := c.ResolvePriceRange(outP1)
	assert.False(t, installed)
	assert.Nil(t, reapply)
	_, known := c.Filters.PriceRange()
	assert.False(t, known)
}

func TestClearResetsWithoutFetching(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")
	require.NoError(t, c.ApplyAndWait(context.Background()))

	c.Clear()
	assert.Empty(t, c.Results.Snapshot().Items)
	assert.Empty(t, c.Filters.Selection().ProviderID)
	assert.False(t, c.Filters.IsDirty())
	assert.Empty(t, c.ShareQuery())
	assert.Len(t, backend.calls, 1)
}

func TestMountRestoresDefaultWindow(t *testing.T) {
	c, _ := newTestCoordinator("MX")

	page, err := c.MountAndWait(context.Background(), "?userId=P1&countryId=MX&cityId=C9&page=2")
	require.NoError(t, err)
	assert.Equal(t, 2, page)

	sel := c.Filters.Selection()
	assert.Equal(t, "P1", sel.ProviderID)
	assert.Equal(t, "C9", sel.CityID)
	assert.Equal(t, 100.0, sel.MinPrice)
	assert.Equal(t, 5000.0, sel.MaxPrice)
	assert.True(t, c.Filters.IsDirty())
	assert.True(t, c.Filters.IsPriceEnabled())
}

func TestMountKeepsExplicitWindow(t *testing.T) {
	c, _ := newTestCoordinator("MX")

	_, err := c.MountAndWait(context.Background(), "userId=P1&countryId=MX&minPrice=250")
	require.NoError(t, err)

	sel := c.Filters.Selection()
	assert.Equal(t, 250.0, sel.MinPrice)
	assert.Equal(t, 5000.0, sel.MaxPrice, "missing side takes the range bound")

	require.NoError(t, c.ApplyAndWait(context.Background()))
	assert.Equal(t, "countryId=MX&minPrice=250&page=1&userId=P1", c.ShareQuery())
}

func TestMountDiscardsWindowOutsideRange(t *testing.T) {
	c, backend := newTestCoordinator("MX")

	_, err := c.MountAndWait(context.Background(), "userId=P1&countryId=MX&minPrice=9999")
	require.NoError(t, err)

	sel := c.Filters.Selection()
	assert.Equal(t, 100.0, sel.MinPrice)
	assert.Equal(t, 5000.0, sel.MaxPrice)

	require.NoError(t, c.ApplyAndWait(context.Background()))
	sent := backend.lastCall()
	assert.Equal(t, 100.0, sent.MinPrice)
	assert.Equal(t, 5000.0, sent.MaxPrice)
	assert.Equal(t, "countryId=MX&page=1&userId=P1", c.ShareQuery())
}

func TestMountWithoutPriceRangeDropsWindow(t *testing.T) {
	c, backend := newTestCoordinator("MX")

	_, err := c.MountAndWait(context.Background(), "userId=P2&countryId=MX&minPrice=200")
	require.NoError(t, err)
	assert.False(t, c.Filters.IsPriceEnabled())

	require.NoError(t, c.ApplyAndWait(context.Background()))
	sent := backend.lastCall()
	assert.Zero(t, sent.MinPrice)
	assert.Zero(t, sent.MaxPrice)
	assert.LessOrEqual(t, sent.MinPrice, sent.MaxPrice)
	assert.Equal(t, "countryId=MX&page=1&userId=P2", c.ShareQuery())
}

func TestApplyBeforePriceRangeIsRefetched(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	ok, rangeReq := c.SetCategory("food")
	require.True(t, ok)
	require.NotNil(t, rangeReq)

	first, err := c.Apply()
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 100.0, first.Query.MinPrice, "window still on the old bounds")

	installed, reapply := c.ResolvePriceRange(c.RunPriceRange(context.Background(), *rangeReq))
	require.True(t, installed)
	require.NotNil(t, reapply, "applied query moved under the new bounds")
	assert.Equal(t, 300.0, reapply.Query.MinPrice)
	assert.Equal(t, 900.0, reapply.Query.MaxPrice)

	assert.False(t, c.ResolveTours(c.RunTours(context.Background(), *first)), "old window is superseded")
	require.True(t, c.ResolveTours(c.RunTours(context.Background(), *reapply)))

	assert.False(t, c.Filters.IsDirty())
	assert.Len(t, c.Results.Snapshot().Items, 2)
	assert.Equal(t, 900.0, backend.lastCall().MaxPrice)
}

func TestPriceRangeWithoutPendingApplyDoesNotFetch(t *testing.T) {
	c, backend := newTestCoordinator("MX")
	selectProvider(t, c, "P1")

	ok, rangeReq := c.SetCategory("food")
	require.True(t, ok)
	installed, reapply := c.ResolvePriceRange(c.RunPriceRange(context.Background(), *rangeReq))
	assert.True(t, installed)
	assert.Nil(t, reapply)
	assert.Empty(t, backend.calls)
}

func TestMountRejectsMalformedQuery(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	_, _, err := c.Mount("userId=%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse query")
}

func TestShareQueryRoundTrip(t *testing.T) {
	c, _ := newTestCoordinator("MX")
	selectProvider(t, c, "P1")
	require.True(t, c.SetCity("C9"))
	require.True(t, c.SetPriceRange(200, 800))
	require.NoError(t, c.ApplyAndWait(context.Background()))
	applied, _ := c.Filters.Applied()

	other, _ := newTestCoordinator("MX")
	_, err := other.MountAndWait(context.Background(), c.ShareQuery())
	require.NoError(t, err)
	require.NoError(t, other.ApplyAndWait(context.Background()))

	restored, ok := other.Filters.Applied()
	require.True(t, ok)
	assert.Equal(t, applied, restored)
}
