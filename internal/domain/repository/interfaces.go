package repository

import (
	"context"

	"ShipQuote/internal/domain/models"
)

// RouteResolver resolves free-text addresses into a concrete route.
type RouteResolver interface {
	ResolveRoute(ctx context.Context, origin, destination, mode string) (*models.RouteInfo, error)
	DistanceKm(ctx context.Context, origin, destination string) (float64, error)
	ValidateAddress(ctx context.Context, text string) bool
	ClearCache(ctx context.Context) error
}

// EventPublisher emits aggregation outcome events.
type EventPublisher interface {
	PublishQuoteEvent(ctx context.Context, ev *models.QuoteEvent) error
	Close() error
}

// RateSource exposes the latest spot rate per lane (normalized
// "origin|destination" key).
type RateSource interface {
	LatestRate(lane string) (perKg float64, ok bool)
}

// Metrics records operational measurements.
type Metrics interface {
	RecordProviderLatency(provider string, seconds float64)
	RecordProviderError(provider, kind string)
	RecordAggregation(quotes, failures int, seconds float64)
	RecordCircuitTransition(name, from, to string)
	RecordCacheEvent(name, event string)
}
