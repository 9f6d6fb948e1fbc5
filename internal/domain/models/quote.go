package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest is an immutable shipment quote request.
type QuoteRequest struct {
	RequestID   string
	Origin      string
	Destination string
	WeightKg    float64
	PickupDate  time.Time
	Fragile     bool
	Mode        string
}

// Quote is a single carrier offer. Only badge flags are mutated after creation.
type Quote struct {
	ProviderID    string           `json:"providerId"`
	ProviderName  string           `json:"providerName"`
	Price         decimal.Decimal  `json:"price"`
	Currency      string           `json:"currency"`
	MinDays       int              `json:"minDays"`
	MaxDays       int              `json:"maxDays"`
	EstimatedDays int              `json:"estimatedDays"`
	TransportMode string           `json:"transportMode"`
	IsCheapest    bool             `json:"isCheapest"`
	IsFastest     bool             `json:"isFastest"`
	PricePerKm    *decimal.Decimal `json:"pricePerKm,omitempty"`
	RouteInfo     *RouteInfo       `json:"routeInfo,omitempty"`
}

// ProviderMessage explains why a provider produced no quote.
type ProviderMessage struct {
	Provider string `json:"provider"`
	Message  string `json:"message"`
	Code     string `json:"code,omitempty"`
}

// Coordinate is a (lat, lng) pair. It marshals as a two-element JSON array
// in latitude-first order.
type Coordinate struct {
	Lat float64
	Lng float64
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	c.Lat, c.Lng = pair[0], pair[1]
	return nil
}

// Endpoint is a resolved address with its coordinate.
type Endpoint struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// RouteInfo describes the computed route between origin and destination.
// One instance is shared by reference across all quotes of an aggregation.
type RouteInfo struct {
	DistanceKm        float64      `json:"distanceKm"`
	DistanceMeters    float64      `json:"distanceMeters"`
	DurationSeconds   float64      `json:"durationSeconds"`
	DurationFormatted string       `json:"durationFormatted"`
	Category          string       `json:"category"`
	Origin            Endpoint     `json:"origin"`
	Destination       Endpoint     `json:"destination"`
	RouteCoordinates  []Coordinate `json:"routeCoordinates"`
}

// QuoteResult is the outcome of one aggregation call.
type QuoteResult struct {
	Quotes    []Quote           `json:"quotes"`
	Messages  []ProviderMessage `json:"messages"`
	RouteInfo *RouteInfo        `json:"routeInfo,omitempty"`
}

// QuoteEvent is published after each aggregation for downstream consumers.
type QuoteEvent struct {
	RequestID        string    `json:"requestId"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	WeightKg         float64   `json:"weightKg"`
	QuoteCount       int       `json:"quoteCount"`
	FailureCount     int       `json:"failureCount"`
	CheapestProvider string    `json:"cheapestProvider,omitempty"`
	DurationMs       int64     `json:"durationMs"`
	OccurredAt       time.Time `json:"occurredAt"`
}
