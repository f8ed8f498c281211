package domain

// Tour represents a single tour as returned by the tours backend
type Tour struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	ProviderID string  `json:"userId"`
	CountryID  string  `json:"countryId"`
	CityID     string  `json:"cityId"`
	CategoryID string  `json:"category"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	Active     bool    `json:"active"`
}

// FilterSelection holds the user's current, possibly unapplied, filter choices
type FilterSelection struct {
	ProviderID string
	CountryID  string // supplied by the session, never edited here
	CityID     string
	CategoryID string
	MinPrice   float64
	MaxPrice   float64
}

// HasProvider reports whether the root gate is set
func (s FilterSelection) HasProvider() bool {
	return s.ProviderID != ""
}

// PriceRange represents the server supplied price bounds of the eligible tours
type PriceRange struct {
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	Currency string  `json:"currency"`
	Count    int     `json:"count"` // number of tours the range was computed over
}

// Valid reports whether the bounds are ordered
func (p PriceRange) Valid() bool {
	return p.MinPrice <= p.MaxPrice
}

// Contains reports whether v lies within the bounds (inclusive)
func (p PriceRange) Contains(v float64) bool {
	return v >= p.MinPrice && v <= p.MaxPrice
}

// PriceRangeFilter is the key a price range is requested for
type PriceRangeFilter struct {
	ProviderID string
	CountryID  string
	CategoryID string
}

// AppliedQuery is the last filter combination actually submitted for fetching
type AppliedQuery struct {
	FilterSelection
	Page int
}

// PriceRangeFilter returns the price range key for the query's filters
func (s FilterSelection) PriceRangeFilter() PriceRangeFilter {
	return PriceRangeFilter{
		ProviderID: s.ProviderID,
		CountryID:  s.CountryID,
		CategoryID: s.CategoryID,
	}
}

// Pagination describes the position of a result page
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ResultPage is one fetched page of tours
type ResultPage struct {
	Items      []Tour
	Pagination Pagination
}
