package provider

import (
	"context"
	"fmt"

	"ShipQuote/internal/domain/models"

	"github.com/shopspring/decimal"
)

// VelozID identifies the express ground carrier.
const VelozID = "veloz"

// Veloz refuses shipments above this weight.
const velozMaxWeightKg = 500.0

var (
	velozBase       = decimal.NewFromInt(24000)
	velozPerKg      = decimal.NewFromInt(1400)
	velozFragileFee = decimal.NewFromInt(9500)
)

// Veloz is an express carrier: fast, pricey, and capped on weight.
type Veloz struct{}

func NewVeloz() *Veloz { return &Veloz{} }

func (v *Veloz) ID() string            { return VelozID }
func (v *Veloz) Name() string          { return "Veloz Express" }
func (v *Veloz) TransportMode() string { return "express" }

func (v *Veloz) CalculateShipping(_ context.Context, req models.QuoteRequest) (models.Quote, error) {
	if err := validateShipment(req); err != nil {
		return models.Quote{}, err
	}
	if req.WeightKg > velozMaxWeightKg {
		return models.Quote{}, &models.ProviderError{
			Provider: v.ID(),
			Code:     "weight_limit",
			Err:      fmt.Errorf("express service is limited to %.0f kg", velozMaxWeightKg),
		}
	}

	price := velozBase.Add(velozPerKg.Mul(decimal.NewFromFloat(req.WeightKg)))
	if req.Fragile {
		price = price.Add(velozFragileFee)
	}

	return models.Quote{
		ProviderID:    v.ID(),
		ProviderName:  v.Name(),
		Price:         price.Round(2),
		Currency:      Currency,
		MinDays:       1,
		MaxDays:       2,
		EstimatedDays: estimatedDays(1, 2),
		TransportMode: v.TransportMode(),
	}, nil
}
