package models

// QuoteHTTPRequest is the POST /api/quotes payload.
type QuoteHTTPRequest struct {
	Origin      string  `json:"origin" validate:"required"`
	Destination string  `json:"destination" validate:"required"`
	Weight      float64 `json:"weight" validate:"required,gt=0.1,lte=1000"`
	PickupDate  string  `json:"pickupDate" validate:"required"`
	Fragile     bool    `json:"fragile"`
	Mode        string  `json:"mode" default:"driving-car" validate:"omitempty,oneof=driving-car driving-hgv"`
}
