package querysync

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"tourdeck/internal/domain"
)

// Shareable query keys. The names are part of bookmarked links and must not change.
const (
	KeyProvider = "userId"
	KeyCountry  = "countryId"
	KeyCity     = "cityId"
	KeyCategory = "category"
	KeyMinPrice = "minPrice"
	KeyMaxPrice = "maxPrice"
	KeyPage     = "page"
)

// Encode flattens an applied query into shareable key/value pairs. Prices
// equal to the price range bounds are left out; with no known range the
// bounds are taken as zero.
func Encode(q domain.AppliedQuery, pr *domain.PriceRange) map[string]string {
	lo, hi := bounds(pr)
	page := q.Page
	if page < 1 {
		page = 1
	}

	values := map[string]string{
		KeyProvider: q.ProviderID,
		KeyCountry:  q.CountryID,
		KeyPage:     strconv.Itoa(page),
	}
	if q.CityID != "" {
		values[KeyCity] = q.CityID
	}
	if q.CategoryID != "" {
		values[KeyCategory] = q.CategoryID
	}
	if q.MinPrice != lo {
		values[KeyMinPrice] = formatPrice(q.MinPrice)
	}
	if q.MaxPrice != hi {
		values[KeyMaxPrice] = formatPrice(q.MaxPrice)
	}
	return values
}

// Decode restores an applied query. Missing or unparsable prices fall back to
// the range bounds and a missing or invalid page to 1.
func Decode(values map[string]string, pr *domain.PriceRange) domain.AppliedQuery {
	lo, hi := bounds(pr)
	q := domain.AppliedQuery{
		FilterSelection: domain.FilterSelection{
			ProviderID: strings.TrimSpace(values[KeyProvider]),
			CountryID:  strings.TrimSpace(values[KeyCountry]),
			CityID:     strings.TrimSpace(values[KeyCity]),
			CategoryID: strings.TrimSpace(values[KeyCategory]),
			MinPrice:   parsePrice(values[KeyMinPrice], lo),
			MaxPrice:   parsePrice(values[KeyMaxPrice], hi),
		},
		Page: 1,
	}
	if n, err := strconv.Atoi(values[KeyPage]); err == nil && n >= 1 {
		q.Page = n
	}
	return q
}

// Explicit reports whether the values carry a price window of their own
func Explicit(values map[string]string) bool {
	_, hasMin := values[KeyMinPrice]
	_, hasMax := values[KeyMaxPrice]
	return hasMin || hasMax
}

// QueryString renders values as a URL query with sorted keys
func QueryString(values map[string]string) string {
	v := url.Values{}
	for k, val := range values {
		v.Set(k, val)
	}
	return v.Encode()
}

// ParseQueryString accepts a bare query ("userId=P1&page=2"), one with a
// leading "?", or a full link, and returns the first value of every key.
func ParseQueryString(raw string) (map[string]string, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[i+1:]
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}

	parsed, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}

	values := make(map[string]string, len(parsed))
	for k, vs := range parsed {
		if len(vs) > 0 {
			values[k] = vs[0]
		}
	}
	return values, nil
}

func bounds(pr *domain.PriceRange) (float64, float64) {
	if pr == nil {
		return 0, 0
	}
	return pr.MinPrice, pr.MaxPrice
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parsePrice(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
