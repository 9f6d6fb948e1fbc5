package provider

import (
	"context"

	"ShipQuote/internal/domain/models"

	"github.com/shopspring/decimal"
)

// AndinaID identifies the standard ground carrier.
const AndinaID = "andina"

var (
	andinaBase      = decimal.NewFromInt(15000)
	andinaPerKg     = decimal.NewFromInt(950)
	andinaFragileUp = decimal.NewFromFloat(1.18)
)

// Andina is a national ground carrier with a mid-range delivery window.
type Andina struct{}

func NewAndina() *Andina { return &Andina{} }

func (a *Andina) ID() string            { return AndinaID }
func (a *Andina) Name() string          { return "Andina Cargo" }
func (a *Andina) TransportMode() string { return "ground" }

func (a *Andina) CalculateShipping(_ context.Context, req models.QuoteRequest) (models.Quote, error) {
	if err := validateShipment(req); err != nil {
		return models.Quote{}, err
	}

	price := andinaBase.Add(andinaPerKg.Mul(decimal.NewFromFloat(req.WeightKg)))
	if req.Fragile {
		price = price.Mul(andinaFragileUp)
	}

	return models.Quote{
		ProviderID:    a.ID(),
		ProviderName:  a.Name(),
		Price:         price.Round(2),
		Currency:      Currency,
		MinDays:       3,
		MaxDays:       6,
		EstimatedDays: estimatedDays(3, 6),
		TransportMode: a.TransportMode(),
	}, nil
}
