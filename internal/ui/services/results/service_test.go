package results

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

func loadedPage(page, totalPages int) domain.ResultPage {
	return domain.ResultPage{
		Items: []domain.Tour{{ID: "t1", Title: "Canyon walk"}, {ID: "t2", Title: "Taco crawl"}},
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      2,
			Total:      totalPages * 2,
			TotalPages: totalPages,
		},
	}
}

func TestInitialStateIsCleared(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 10)
	snap := svc.Snapshot()

	assert.Empty(t, snap.Items)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 10, Total: 0, TotalPages: 1}, snap.Pagination)
	assert.False(t, snap.Loaded)
	assert.False(t, snap.IsEmpty(), "nothing fetched is not an empty result")
}

func TestOnFetchSuccessReplacesPage(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 2)
	svc.OnFetchSuccess(loadedPage(2, 5))

	snap := svc.Snapshot()
	assert.Len(t, snap.Items, 2)
	assert.Equal(t, 2, snap.Pagination.Page)
	assert.Equal(t, 5, snap.Pagination.TotalPages)
	assert.True(t, snap.HasNext())
	assert.True(t, snap.HasPrev())
}

func TestOnFetchSuccessEmptyResult(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 10)
	svc.OnFetchSuccess(domain.ResultPage{Pagination: domain.Pagination{Page: 1, Limit: 10, Total: 0, TotalPages: 0}})

	snap := svc.Snapshot()
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, 1, snap.Pagination.TotalPages)
	assert.False(t, snap.HasNext())
}

func TestSetPageBounds(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 2)
	assert.False(t, svc.SetPage(1), "nothing loaded")

	svc.OnFetchSuccess(loadedPage(1, 3))
	assert.False(t, svc.SetPage(0))
	assert.False(t, svc.SetPage(4))
	assert.True(t, svc.SetPage(3))
	assert.Equal(t, 1, svc.Snapshot().Pagination.Page, "page moves only when the fetch lands")
}

func TestOnFetchFailureClearsPage(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 2)
	svc.OnFetchSuccess(loadedPage(2, 3))

	boom := errors.New("boom")
	svc.OnFetchFailure(boom)

	snap := svc.Snapshot()
	assert.Empty(t, snap.Items)
	assert.Equal(t, domain.Pagination{Page: 1, Limit: 2, Total: 0, TotalPages: 1}, snap.Pagination)
	assert.ErrorIs(t, snap.Err, boom)
	assert.False(t, svc.SetPage(1))
}

func TestInvalidateClearsPageAndError(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 2)
	svc.OnFetchFailure(errors.New("boom"))
	svc.OnFetchSuccess(loadedPage(3, 3))

	svc.Invalidate()

	snap := svc.Snapshot()
	assert.Empty(t, snap.Items)
	assert.NoError(t, snap.Err)
	assert.Equal(t, 1, snap.Pagination.Page)
	assert.Equal(t, 2, snap.Pagination.Limit)
	assert.False(t, snap.Loaded)
}

func TestSnapshotIsACopy(t *testing.T) {
	svc := NewService(eventbus.NullBus{}, 2)
	svc.OnFetchSuccess(loadedPage(1, 1))

	snap := svc.Snapshot()
	snap.Items[0].Title = "changed"
	assert.Equal(t, "Canyon walk", svc.Snapshot().Items[0].Title)
}
