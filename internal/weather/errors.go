package weather

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when geocoding yields no acceptable candidate for
// a location. It is terminal for that location; the caller must retry with
// different input.
type NotFoundError struct {
	City    string
	State   string
	Country string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no geocoding results for city=%q state=%q country=%q", e.City, e.State, e.Country)
}

// IsNotFound reports whether err is a geocoding NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ProviderError is returned when the upstream weather API exhausted its retry
// budget. It is terminal for the live forecast path; the synthesis path never
// produces it since it performs no network call.
type ProviderError struct {
	Endpoint string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("weather provider %s: %v", e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError reports whether err is an exhausted provider call.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
