package querysync

import (
	"context"
	"errors"
	"log"
	"sync"

	"tourdeck/internal/domain"
	"tourdeck/internal/eventbus"
)

// Service dispatches fetches and enforces last-request-wins. Every request
// gets a token from one increasing sequence; only the latest token of its
// kind may write back.
type Service struct {
	mu      sync.Mutex
	bus     eventbus.EventBus
	tours   ToursFetcher
	prices  PriceRangeFetcher
	sink    ResultSink
	loading LoadingTracker

	seq uint64

	toursLatest  uint64
	toursQuery   domain.AppliedQuery
	toursPending bool
	toursOK      bool // the latest tours request resolved successfully

	priceLatest  uint64
	pricePending bool
}

// NewService creates a new query synchronizer
func NewService(bus eventbus.EventBus, tours ToursFetcher, prices PriceRangeFetcher, sink ResultSink, loading LoadingTracker) *Service {
	return &Service{
		bus:     bus,
		tours:   tours,
		prices:  prices,
		sink:    sink,
		loading: loading,
	}
}

// Begin assigns a token to a tours request and makes it the only one allowed
// to write to the result store.
func (s *Service) Begin(q domain.AppliedQuery) Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toursPending {
		s.loading.End(s.toursLatest)
	}
	s.seq++
	s.toursLatest = s.seq
	s.toursQuery = q
	s.toursPending = true
	s.toursOK = false
	s.loading.Begin(s.seq, LabelTours)

	req := Request{Token: s.seq, Query: q, Limit: s.sink.Limit()}
	log.Printf("querysync: dispatching tours request %d (page %d)", req.Token, q.Page)
	s.bus.Publish(domain.FetchStartedEvent{Token: req.Token, Query: q})
	return req
}

// Run performs the request. It touches no shared state and may run on any goroutine.
func (s *Service) Run(ctx context.Context, req Request) Outcome {
	page, err := s.tours.FetchTours(ctx, req.Query, req.Limit)
	if err != nil {
		return Outcome{Token: req.Token, Err: asFetchError(OpTours, err)}
	}
	return Outcome{Token: req.Token, Page: page}
}

// Resolve writes an outcome to the result store if its token is still the
// latest. It reports whether the outcome was accepted.
func (s *Service) Resolve(out Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading.End(out.Token)
	if out.Token != s.toursLatest || !s.toursPending {
		log.Printf("querysync: discarding tours response %d, latest is %d", out.Token, s.toursLatest)
		s.bus.Publish(domain.StaleResponseEvent{Token: out.Token, Latest: s.toursLatest, Op: OpTours})
		return false
	}
	s.toursPending = false

	if out.Err != nil {
		s.toursOK = false
		s.sink.OnFetchFailure(out.Err)
		s.bus.Publish(domain.FetchFailedEvent{Token: out.Token, Op: OpTours, Err: out.Err})
		return true
	}

	s.toursOK = true
	s.sink.OnFetchSuccess(out.Page)
	s.bus.Publish(domain.ResultsLoadedEvent{
		Token:      out.Token,
		Count:      len(out.Page.Items),
		Pagination: out.Page.Pagination,
	})
	return true
}

// Fetch runs a tours request to completion on the calling goroutine
func (s *Service) Fetch(ctx context.Context, q domain.AppliedQuery) bool {
	return s.Resolve(s.Run(ctx, s.Begin(q)))
}

// Supersede voids any in-flight tours request without dispatching a new one
func (s *Service) Supersede() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toursPending {
		s.loading.End(s.toursLatest)
		log.Printf("querysync: tours request %d superseded", s.toursLatest)
	}
	s.seq++
	s.toursLatest = s.seq
	s.toursQuery = domain.AppliedQuery{}
	s.toursPending = false
	s.toursOK = false
}

// InFlight reports whether the latest tours request is still outstanding
func (s *Service) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toursPending
}

// Covers reports whether q is already loaded or being loaded
func (s *Service) Covers(q domain.AppliedQuery) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toursQuery == q && (s.toursPending || s.toursOK)
}

// LatestToken returns the token of the latest tours request
func (s *Service) LatestToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toursLatest
}

// LatestPriceRangeToken returns the token of the latest price range request
func (s *Service) LatestPriceRangeToken() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.priceLatest
}

// BeginPriceRange assigns a token to a price range request
func (s *Service) BeginPriceRange(filter domain.PriceRangeFilter) PriceRangeRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pricePending {
		s.loading.End(s.priceLatest)
	}
	s.seq++
	s.priceLatest = s.seq
	s.pricePending = true
	s.loading.Begin(s.seq, LabelPriceRange)

	log.Printf("querysync: dispatching price range request %d", s.seq)
	return PriceRangeRequest{Token: s.seq, Filter: filter}
}

// RunPriceRange performs the request
func (s *Service) RunPriceRange(ctx context.Context, req PriceRangeRequest) PriceRangeOutcome {
	pr, err := s.prices.FetchPriceRange(ctx, req.Filter)
	if err != nil {
		return PriceRangeOutcome{Token: req.Token, Filter: req.Filter, Err: asFetchError(OpPriceRange, err)}
	}
	return PriceRangeOutcome{Token: req.Token, Filter: req.Filter, Range: pr}
}

// ResolvePriceRange reports whether the outcome belongs to the latest price
// range request. Failures are logged; the caller keeps its previous range.
func (s *Service) ResolvePriceRange(out PriceRangeOutcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading.End(out.Token)
	if out.Token != s.priceLatest || !s.pricePending {
		log.Printf("querysync: discarding price range response %d, latest is %d", out.Token, s.priceLatest)
		s.bus.Publish(domain.StaleResponseEvent{Token: out.Token, Latest: s.priceLatest, Op: OpPriceRange})
		return false
	}
	s.pricePending = false

	if out.Err != nil {
		log.Printf("querysync: %v", out.Err)
		s.bus.Publish(domain.FetchFailedEvent{Token: out.Token, Op: OpPriceRange, Err: out.Err})
	}
	return true
}

// FetchPriceRange runs a price range request to completion on the calling goroutine
func (s *Service) FetchPriceRange(ctx context.Context, filter domain.PriceRangeFilter) (PriceRangeOutcome, bool) {
	out := s.RunPriceRange(ctx, s.BeginPriceRange(filter))
	return out, s.ResolvePriceRange(out)
}

// SupersedePriceRange voids any in-flight price range request
func (s *Service) SupersedePriceRange() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pricePending {
		s.loading.End(s.priceLatest)
	}
	s.seq++
	s.priceLatest = s.seq
	s.pricePending = false
}

func asFetchError(op string, err error) error {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &domain.FetchError{Op: op, Err: err}
}
