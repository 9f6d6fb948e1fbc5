package provider

import (
	"context"

	"ShipQuote/internal/domain/models"
	"ShipQuote/internal/domain/repository"

	"github.com/shopspring/decimal"
)

// AeroQuickID identifies the air freight carrier.
const AeroQuickID = "aeroquick"

var (
	aeroFallbackPerKg = decimal.NewFromInt(3800)
	aeroFragileUp     = decimal.NewFromFloat(1.25)
)

// AeroQuick prices by the live spot rate for the lane when the rate feed has
// one, falling back to a static per-kg tariff otherwise.
type AeroQuick struct {
	rates repository.RateSource
}

func NewAeroQuick(rates repository.RateSource) *AeroQuick {
	return &AeroQuick{rates: rates}
}

func (a *AeroQuick) ID() string            { return AeroQuickID }
func (a *AeroQuick) Name() string          { return "AeroQuick" }
func (a *AeroQuick) TransportMode() string { return "air" }

func (a *AeroQuick) CalculateShipping(_ context.Context, req models.QuoteRequest) (models.Quote, error) {
	if err := validateShipment(req); err != nil {
		return models.Quote{}, err
	}

	perKg := aeroFallbackPerKg
	if a.rates != nil {
		if spot, ok := a.rates.LatestRate(laneKey(req.Origin, req.Destination)); ok {
			perKg = decimal.NewFromFloat(spot)
		}
	}

	price := perKg.Mul(decimal.NewFromFloat(req.WeightKg))
	if req.Fragile {
		price = price.Mul(aeroFragileUp)
	}

	return models.Quote{
		ProviderID:    a.ID(),
		ProviderName:  a.Name(),
		Price:         price.Round(2),
		Currency:      Currency,
		MinDays:       1,
		MaxDays:       2,
		EstimatedDays: estimatedDays(1, 2),
		TransportMode: a.TransportMode(),
	}, nil
}
