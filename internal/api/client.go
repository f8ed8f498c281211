package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"tourdeck/internal/domain"
)

const (
	toursPath      = "/tours"
	priceRangePath = "/tours/price-range"

	// maxErrorBody caps how much of a failed response is read for its message
	maxErrorBody = 64 << 10
)

// Options configures a Client
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the tours backend
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a tours API client
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}
}

type toursResponse struct {
	Success    bool               `json:"success"`
	Data       []domain.Tour      `json:"data"`
	Pagination *domain.Pagination `json:"pagination"`
	Error      string             `json:"error"`
	Message    string             `json:"message"`
}

type priceRangeResponse struct {
	Success bool               `json:"success"`
	Data    *domain.PriceRange `json:"data"`
	Error   string             `json:"error"`
	Message string             `json:"message"`
}

// FetchTours requests one page of tours for the applied query
func (c *Client) FetchTours(ctx context.Context, q domain.AppliedQuery, limit int) (domain.ResultPage, error) {
	params := url.Values{}
	params.Set("userId", q.ProviderID)
	params.Set("countryId", q.CountryID)
	if q.CityID != "" {
		params.Set("cityId", q.CityID)
	}
	if q.CategoryID != "" {
		params.Set("category", q.CategoryID)
	}
	if q.MaxPrice > 0 {
		params.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
		params.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(limit))

	var body toursResponse
	if err := c.get(ctx, "tours", toursPath, params, &body); err != nil {
		return domain.ResultPage{}, err
	}
	if !body.Success {
		return domain.ResultPage{}, &domain.FetchError{Op: "tours", Status: http.StatusOK, Message: firstNonEmpty(body.Error, body.Message, "request unsuccessful")}
	}

	page := domain.ResultPage{Items: body.Data}
	if page.Items == nil {
		page.Items = []domain.Tour{}
	}
	if body.Pagination != nil {
		page.Pagination = *body.Pagination
	} else {
		page.Pagination = domain.Pagination{Page: q.Page, Limit: limit, Total: len(page.Items), TotalPages: 1}
	}
	return page, nil
}

// FetchPriceRange requests the price bounds for a provider, country and
// category. A nil range means there are no eligible tours.
func (c *Client) FetchPriceRange(ctx context.Context, f domain.PriceRangeFilter) (*domain.PriceRange, error) {
	params := url.Values{}
	params.Set("userId", f.ProviderID)
	if f.CountryID != "" {
		params.Set("countryId", f.CountryID)
	}
	if f.CategoryID != "" {
		params.Set("category", f.CategoryID)
	}

	var body priceRangeResponse
	if err := c.get(ctx, "price-range", priceRangePath, params, &body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, &domain.FetchError{Op: "price-range", Status: http.StatusOK, Message: firstNonEmpty(body.Error, body.Message, "request unsuccessful")}
	}
	return body.Data, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.FetchError{Op: op, Err: err}
	}

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &domain.FetchError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("[api] %s %s failed: %v", op, requestID, err)
		return &domain.FetchError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()
	log.Printf("[api] %s %s -> %d in %s", op, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.FetchError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorMessage pulls a message out of a JSON error body, else uses the status text
func errorMessage(data []byte, status string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if msg := firstNonEmpty(body.Error, body.Message); msg != "" {
			return msg
		}
	}
	return status
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
