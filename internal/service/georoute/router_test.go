package georoute

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ShipQuote/internal/domain/models"
	"ShipQuote/pkg/cache"
)

var colombia = Region{MinLat: -4.3, MaxLat: 13.5, MinLng: -81.8, MaxLng: -66.8}

type fakeGeo struct {
	coords map[string]models.Coordinate
	calls  int
	err    error
}

func (f *fakeGeo) Geocode(_ context.Context, text string) (models.Coordinate, bool, error) {
	f.calls++
	if f.err != nil {
		return models.Coordinate{}, false, f.err
	}
	c, ok := f.coords[strings.ToLower(text)]
	return c, ok, nil
}

type fakeDir struct {
	leg   *Leg
	calls int
	err   error
}

func (f *fakeDir) Directions(_ context.Context, _ string, _, _ models.Coordinate) (*Leg, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.leg, nil
}

func cityGeo() *fakeGeo {
	return &fakeGeo{coords: map[string]models.Coordinate{
		"bogota": {Lat: 4.711, Lng: -74.0721},
		"cali":   {Lat: 3.4516, Lng: -76.5225},
	}}
}

func TestResolveRoute(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{DistanceMeters: 450000, DurationSeconds: 18000}}
	r := NewRouter(geo, dir,
		WithRegion(colombia),
		WithStrategies(DefaultStrategies([]string{"Bogota", "Cali"})),
	)

	info, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.DistanceKm != 450 {
		t.Fatalf("distanceKm %v", info.DistanceKm)
	}
	if info.DistanceMeters != 450000 {
		t.Fatalf("distanceMeters %v", info.DistanceMeters)
	}
	if info.DurationFormatted != "5h 0min" {
		t.Fatalf("durationFormatted %q", info.DurationFormatted)
	}
	if info.Category != CategoryLongHaul {
		t.Fatalf("category %q", info.Category)
	}
	if info.Origin.Lat != 4.711 || info.Origin.Lng != -74.0721 {
		t.Fatalf("origin endpoint %+v", info.Origin)
	}
	// No provider geometry means a two-point fallback path.
	if len(info.RouteCoordinates) != 2 {
		t.Fatalf("expected 2 route coordinates, got %d", len(info.RouteCoordinates))
	}
	if info.RouteCoordinates[1].Lat != 3.4516 || info.RouteCoordinates[1].Lng != -76.5225 {
		t.Fatalf("destination coordinate %+v", info.RouteCoordinates[1])
	}
}

func TestResolveRouteUsesProviderGeometry(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{
		DistanceMeters:  450000,
		DurationSeconds: 18000,
		Geometry: []models.Coordinate{
			{Lat: 4.711, Lng: -74.0721},
			{Lat: 4.2, Lng: -75.1},
			{Lat: 3.4516, Lng: -76.5225},
		},
	}}
	r := NewRouter(geo, dir, WithRegion(colombia))

	info, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(info.RouteCoordinates) != 3 {
		t.Fatalf("expected provider geometry, got %d points", len(info.RouteCoordinates))
	}
}

func TestResolveRouteCaching(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{DistanceMeters: 450000, DurationSeconds: 18000}}
	mem := cache.NewMemoryCache()
	defer mem.Close()

	r := NewRouter(geo, dir,
		WithRegion(colombia),
		WithCache(mem, time.Minute),
	)

	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if dir.calls != 1 {
		t.Fatalf("expected 1 directions call, got %d", dir.calls)
	}

	// Same route, different casing and spacing: must hit the cache.
	info, err := r.ResolveRoute(context.Background(), "  BOGOTA ", "cali", "Driving-Car")
	if err != nil {
		t.Fatalf("cached resolve: %v", err)
	}
	if dir.calls != 1 || geo.calls != 2 {
		t.Fatalf("cache miss: dir=%d geo=%d", dir.calls, geo.calls)
	}
	if info.DistanceKm != 450 {
		t.Fatalf("cached distance %v", info.DistanceKm)
	}

	// Different mode is a different route.
	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-hgv"); err != nil {
		t.Fatalf("hgv resolve: %v", err)
	}
	if dir.calls != 2 {
		t.Fatalf("expected new directions call for new mode, got %d", dir.calls)
	}
}

func TestResolveRouteCacheExpiry(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{DistanceMeters: 450000, DurationSeconds: 18000}}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	r := NewRouter(geo, dir, WithRegion(colombia), WithCache(mem, 30*time.Millisecond))

	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car"); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car"); err != nil {
		t.Fatalf("resolve after expiry: %v", err)
	}
	if dir.calls != 2 {
		t.Fatalf("expected fresh directions call after TTL, got %d", dir.calls)
	}
}

func TestResolveRouteFallbackChain(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{DistanceMeters: 450000, DurationSeconds: 18000}}
	r := NewRouter(geo, dir,
		WithRegion(colombia),
		WithStrategies(DefaultStrategies([]string{"Bogota", "Cali"})),
	)

	// Raw text is unknown to the geocoder; street-stripping recovers the city.
	info, err := r.ResolveRoute(context.Background(), "Calle 26 #13-19, Bogota", "Cali", "driving-car")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.Origin.Lat != 4.711 {
		t.Fatalf("fallback endpoint %+v", info.Origin)
	}
	// Original address text is preserved on the endpoint.
	if info.Origin.Address != "Calle 26 #13-19, Bogota" {
		t.Fatalf("origin address %q", info.Origin.Address)
	}
}

func TestResolveRouteRejectsOutOfRegion(t *testing.T) {
	// Geocoder resolves everything to Madrid; the bounding box must reject it.
	geo := &fakeGeo{coords: map[string]models.Coordinate{
		"bogota": {Lat: 40.4168, Lng: -3.7038},
		"cali":   {Lat: 3.4516, Lng: -76.5225},
	}}
	dir := &fakeDir{leg: &Leg{}}
	r := NewRouter(geo, dir, WithRegion(colombia))

	_, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car")

	var ge *models.GeocodeError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeocodeError, got %v", err)
	}
	if ge.Address != "Bogota" {
		t.Fatalf("failed address %q", ge.Address)
	}
}

func TestResolveRouteGeocodeExhaustion(t *testing.T) {
	geo := &fakeGeo{coords: map[string]models.Coordinate{}}
	dir := &fakeDir{leg: &Leg{}}
	r := NewRouter(geo, dir,
		WithRegion(colombia),
		WithStrategies(DefaultStrategies([]string{"Bogota"})),
	)

	_, err := r.ResolveRoute(context.Background(), "Nowhere Special", "Bogota", "driving-car")

	var ge *models.GeocodeError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeocodeError, got %v", err)
	}
	if dir.calls != 0 {
		t.Fatalf("directions must not be called after geocode failure")
	}
}

func TestValidateAddress(t *testing.T) {
	r := NewRouter(cityGeo(), &fakeDir{leg: &Leg{}}, WithRegion(colombia))

	if !r.ValidateAddress(context.Background(), "Bogota") {
		t.Fatalf("known city should validate")
	}
	if r.ValidateAddress(context.Background(), "Atlantis") {
		t.Fatalf("unknown address should not validate")
	}
}

func TestClearCache(t *testing.T) {
	geo := cityGeo()
	dir := &fakeDir{leg: &Leg{DistanceMeters: 1000, DurationSeconds: 60}}
	mem := cache.NewMemoryCache()
	defer mem.Close()
	r := NewRouter(geo, dir, WithRegion(colombia), WithCache(mem, time.Minute))

	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := r.ClearCache(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := r.ResolveRoute(context.Background(), "Bogota", "Cali", "driving-car"); err != nil {
		t.Fatalf("resolve after clear: %v", err)
	}
	if dir.calls != 2 {
		t.Fatalf("expected recomputation after clear, got %d calls", dir.calls)
	}
}
