package querysync

import (
	"context"

	"tourdeck/internal/domain"
)

// ToursFetcher is the tours-query collaborator
type ToursFetcher interface {
	FetchTours(ctx context.Context, query domain.AppliedQuery, limit int) (domain.ResultPage, error)
}

// PriceRangeFetcher is the price-range collaborator. A nil range means the
// backend has no eligible tours for the filter.
type PriceRangeFetcher interface {
	FetchPriceRange(ctx context.Context, filter domain.PriceRangeFilter) (*domain.PriceRange, error)
}

// ResultSink receives the outcome of the latest tours request
type ResultSink interface {
	OnFetchSuccess(page domain.ResultPage)
	OnFetchFailure(err error)
	Limit() int
}

// LoadingTracker is told when a request starts and stops
type LoadingTracker interface {
	Begin(token uint64, label string)
	End(token uint64)
}

// Operation names used in events and errors
const (
	OpTours      = "tours"
	OpPriceRange = "price-range"
)

// Loading labels
const (
	LabelTours      = "Loading tours"
	LabelPriceRange = "Loading price range"
)

// Request is a dispatched tours fetch
type Request struct {
	Token uint64
	Query domain.AppliedQuery
	Limit int
}

// Outcome is the resolution of a tours fetch
type Outcome struct {
	Token uint64
	Page  domain.ResultPage
	Err   error
}

// PriceRangeRequest is a dispatched price range fetch
type PriceRangeRequest struct {
	Token  uint64
	Filter domain.PriceRangeFilter
}

// PriceRangeOutcome is the resolution of a price range fetch
type PriceRangeOutcome struct {
	Token  uint64
	Filter domain.PriceRangeFilter
	Range  *domain.PriceRange
	Err    error
}
