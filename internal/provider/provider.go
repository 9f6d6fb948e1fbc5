// Package provider holds the carrier adapters that turn a shipment request
// into a priced quote. Every adapter is stateless and safe for concurrent use.
package provider

import (
	"context"
	"fmt"
	"math"

	"ShipQuote/internal/domain/models"
	"ShipQuote/internal/domain/repository"
	"ShipQuote/pkg/util"
)

// Currency is the quoting currency for all carriers.
const Currency = "COP"

// Adapter quotes a shipment for one carrier.
type Adapter interface {
	ID() string
	Name() string
	TransportMode() string
	CalculateShipping(ctx context.Context, req models.QuoteRequest) (models.Quote, error)
}

// validateShipment guards the bounds every carrier shares. Violations are
// request-level problems, so they surface as fatal validation errors rather
// than per-carrier messages.
func validateShipment(req models.QuoteRequest) error {
	if util.IsBlank(req.Destination) {
		return models.NewValidationError("destination", "must not be blank")
	}
	if req.WeightKg <= 0.1 {
		return models.NewValidationError("weight", "must be greater than 0.1 kg")
	}
	if req.WeightKg > 1000 {
		return models.NewValidationError("weight", "must not exceed 1000 kg")
	}
	return nil
}

// estimatedDays is the midpoint of the delivery window, rounded half up.
func estimatedDays(minDays, maxDays int) int {
	return int(math.Round(float64(minDays+maxDays) / 2))
}

// laneKey identifies an origin/destination pair for spot rate lookups.
func laneKey(origin, destination string) string {
	return util.NormalizeKey(origin, destination)
}

// Build instantiates the adapters named in ids, preserving order. The rate
// source feeds the air carrier and may be nil.
func Build(ids []string, rates repository.RateSource) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(ids))
	for _, id := range ids {
		switch id {
		case AndinaID:
			adapters = append(adapters, NewAndina())
		case VelozID:
			adapters = append(adapters, NewVeloz())
		case AeroQuickID:
			adapters = append(adapters, NewAeroQuick(rates))
		case PacificoID:
			adapters = append(adapters, NewPacifico())
		default:
			return nil, fmt.Errorf("provider: unknown carrier %q", id)
		}
	}
	return adapters, nil
}
