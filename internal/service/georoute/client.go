// Package georoute resolves free-text addresses to coordinates and computes
// routes between them, with caching and regional plausibility checks.
package georoute

import (
	"context"
	"fmt"

	"ShipQuote/internal/domain/models"
	xhttp "ShipQuote/pkg/http"
)

// Leg is one computed route between two coordinates. Geometry is in
// latitude-first order, already flipped from the provider's (lng, lat).
type Leg struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        []models.Coordinate
}

// ORSClient talks to an openrouteservice-compatible API.
type ORSClient struct {
	http    *xhttp.Client
	baseURL string
	apiKey  string
}

// NewORSClient creates a geocoding/directions client.
func NewORSClient(httpClient *xhttp.Client, baseURL, apiKey string) *ORSClient {
	return &ORSClient{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [2]float64 `json:"coordinates"` // lng, lat
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves free text to a coordinate. The second return is false
// when the provider has no result for the text.
func (c *ORSClient) Geocode(ctx context.Context, text string) (models.Coordinate, bool, error) {
	var out geocodeResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/geocode/search",
		QueryParams: map[string][]string{
			"api_key": {c.apiKey},
			"text":    {text},
			"size":    {"1"},
		},
	}, &out)
	if err != nil {
		return models.Coordinate{}, false, fmt.Errorf("geocode %q: %w", text, err)
	}
	if len(out.Features) == 0 {
		return models.Coordinate{}, false, nil
	}

	lnglat := out.Features[0].Geometry.Coordinates
	return models.Coordinate{Lat: lnglat[1], Lng: lnglat[0]}, true, nil
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"` // lng, lat
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"` // seconds
			} `json:"summary"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"` // lng, lat
		} `json:"geometry"`
	} `json:"features"`
}

// Directions computes a route between two coordinates for the given profile.
func (c *ORSClient) Directions(ctx context.Context, profile string, origin, destination models.Coordinate) (*Leg, error) {
	body := directionsRequest{
		Coordinates: [][2]float64{
			{origin.Lng, origin.Lat},
			{destination.Lng, destination.Lat},
		},
	}

	var out directionsResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, profile),
		Headers: map[string]string{
			"Authorization": c.apiKey,
		},
		Body: body,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("directions %s: %w", profile, err)
	}
	if len(out.Features) == 0 {
		return nil, fmt.Errorf("directions %s: empty response", profile)
	}

	feature := out.Features[0]
	leg := &Leg{
		DistanceMeters:  feature.Properties.Summary.Distance,
		DurationSeconds: feature.Properties.Summary.Duration,
	}
	for _, lnglat := range feature.Geometry.Coordinates {
		leg.Geometry = append(leg.Geometry, models.Coordinate{Lat: lnglat[1], Lng: lnglat[0]})
	}
	return leg, nil
}
