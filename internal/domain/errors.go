package domain

import (
	"errors"
	"fmt"
)

// ValidationCode identifies why filters could not be applied
type ValidationCode string

const (
	CodeProviderRequired ValidationCode = "providerRequired"
	CodeCountryRequired  ValidationCode = "countryRequired"
)

// ValidationError is returned when apply is called with incomplete filters.
// It is shown to the user as a notice, never treated as fatal.
type ValidationError struct {
	Code ValidationCode
}

func (e *ValidationError) Error() string {
	switch e.Code {
	case CodeProviderRequired:
		return "select a provider before applying filters"
	case CodeCountryRequired:
		return "no country selected for this session"
	default:
		return fmt.Sprintf("invalid filters: %s", e.Code)
	}
}

// Is matches validation errors by code so sentinels work with errors.Is
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}

var (
	ErrProviderRequired = &ValidationError{Code: CodeProviderRequired}
	ErrCountryRequired  = &ValidationError{Code: CodeCountryRequired}

	// ErrStaleResponse marks a response that resolved after a newer request was dispatched
	ErrStaleResponse = errors.New("stale response discarded")
)

// FetchError is returned when a backend collaborator fails or answers success:false
type FetchError struct {
	Op      string // "tours" or "price-range"
	Status  int    // HTTP status, 0 when the request never completed
	Message string // backend supplied error message, if any
	Err     error
}

func (e *FetchError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch %s (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("failed to fetch %s: %s", e.Op, msg)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
