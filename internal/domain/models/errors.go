package models

import "fmt"

// ValidationError marks a malformed quote request or shipment. It aborts the
// whole aggregation before any provider is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-scoped validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError is scoped to a single carrier call. It degrades into a
// ProviderMessage and never fails the aggregation.
type ProviderError struct {
	Provider string
	Code     string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// GeocodeError means every fallback strategy was exhausted for an address.
// It fails the whole request since no usable location exists.
type GeocodeError struct {
	Address  string
	Attempts int
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("could not geocode %q after %d strategies", e.Address, e.Attempts)
}
