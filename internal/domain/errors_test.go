package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMatchesByCode(t *testing.T) {
	err := fmt.Errorf("apply: %w", &ValidationError{Code: CodeProviderRequired})

	assert.True(t, errors.Is(err, ErrProviderRequired))
	assert.False(t, errors.Is(err, ErrCountryRequired))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CodeProviderRequired, verr.Code)
}

func TestFetchErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := &FetchError{Op: "tours", Err: cause}

	assert.Equal(t, "failed to fetch tours: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)

	withStatus := &FetchError{Op: "price-range", Status: 502, Message: "upstream down"}
	assert.Equal(t, "failed to fetch price-range (status 502): upstream down", withStatus.Error())
}

func TestPriceRangeBounds(t *testing.T) {
	pr := PriceRange{MinPrice: 100, MaxPrice: 5000, Currency: "MXN", Count: 42}

	assert.True(t, pr.Valid())
	assert.True(t, pr.Contains(100))
	assert.True(t, pr.Contains(5000))
	assert.False(t, pr.Contains(99.99))
	assert.False(t, PriceRange{MinPrice: 10, MaxPrice: 5}.Valid())
}
