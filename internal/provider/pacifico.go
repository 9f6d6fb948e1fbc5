package provider

import (
	"context"
	"fmt"

	"ShipQuote/internal/domain/models"

	"github.com/shopspring/decimal"
)

// PacificoID identifies the heavy freight carrier.
const PacificoID = "pacifico"

// Pacifico only accepts consolidated freight from this weight up.
const pacificoMinWeightKg = 20.0

var (
	pacificoBase  = decimal.NewFromInt(8000)
	pacificoPerKg = decimal.NewFromInt(520)
)

// Pacifico is a slow consolidated freight line for heavy shipments.
type Pacifico struct{}

func NewPacifico() *Pacifico { return &Pacifico{} }

func (p *Pacifico) ID() string            { return PacificoID }
func (p *Pacifico) Name() string          { return "Pacifico Line" }
func (p *Pacifico) TransportMode() string { return "freight" }

func (p *Pacifico) CalculateShipping(_ context.Context, req models.QuoteRequest) (models.Quote, error) {
	if err := validateShipment(req); err != nil {
		return models.Quote{}, err
	}
	if req.WeightKg < pacificoMinWeightKg {
		return models.Quote{}, &models.ProviderError{
			Provider: p.ID(),
			Code:     "below_minimum",
			Err:      fmt.Errorf("freight service requires at least %.0f kg", pacificoMinWeightKg),
		}
	}

	price := pacificoBase.Add(pacificoPerKg.Mul(decimal.NewFromFloat(req.WeightKg)))

	return models.Quote{
		ProviderID:    p.ID(),
		ProviderName:  p.Name(),
		Price:         price.Round(2),
		Currency:      Currency,
		MinDays:       8,
		MaxDays:       15,
		EstimatedDays: estimatedDays(8, 15),
		TransportMode: p.TransportMode(),
	}, nil
}
