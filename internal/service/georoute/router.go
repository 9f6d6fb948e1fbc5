package georoute

import (
	"context"
	"errors"
	"strconv"
	"time"

	"ShipQuote/internal/domain/models"
	"ShipQuote/internal/domain/repository"
	"ShipQuote/internal/service/resilience"
	"ShipQuote/pkg/cache"
	applogger "ShipQuote/pkg/logger"
	"ShipQuote/pkg/util"
)

const cacheName = "route"

// geocoder and director are the two provider operations the router needs.
// ORSClient implements both.
type geocoder interface {
	Geocode(ctx context.Context, text string) (models.Coordinate, bool, error)
}

type director interface {
	Directions(ctx context.Context, profile string, origin, destination models.Coordinate) (*Leg, error)
}

// Region is the bounding box a geocoded coordinate must fall into. The zero
// value accepts everything.
type Region struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// Contains reports whether the coordinate is inside the box.
func (r Region) Contains(c models.Coordinate) bool {
	if r.MinLat == 0 && r.MaxLat == 0 && r.MinLng == 0 && r.MaxLng == 0 {
		return true
	}
	return c.Lat >= r.MinLat && c.Lat <= r.MaxLat && c.Lng >= r.MinLng && c.Lng <= r.MaxLng
}

// Router resolves addresses and routes with a fallback strategy chain and a
// TTL cache keyed case-insensitively by origin, destination and mode.
type Router struct {
	geo         geocoder
	dir         director
	cache       cache.Service
	ttl         time.Duration
	region      Region
	strategies  []Strategy
	defaultMode string
	geoGuard    *resilience.Client
	dirGuard    *resilience.Client
	logger      *applogger.Logger
	metrics     repository.Metrics
}

var _ repository.RouteResolver = (*Router)(nil)

// RouterOption configures Router.
type RouterOption func(*Router)

// WithCache enables route caching with the given TTL.
func WithCache(c cache.Service, ttl time.Duration) RouterOption {
	return func(r *Router) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithRegion sets the plausibility bounding box.
func WithRegion(region Region) RouterOption {
	return func(r *Router) {
		r.region = region
	}
}

// WithStrategies overrides the fallback chain.
func WithStrategies(strategies []Strategy) RouterOption {
	return func(r *Router) {
		r.strategies = strategies
	}
}

// WithDefaultMode sets the routing profile used when a caller passes none.
func WithDefaultMode(mode string) RouterOption {
	return func(r *Router) {
		r.defaultMode = mode
	}
}

// WithGuards wraps geocode and directions calls in resilient clients.
func WithGuards(geo, dir *resilience.Client) RouterOption {
	return func(r *Router) {
		r.geoGuard = geo
		r.dirGuard = dir
	}
}

// WithRouterLogger sets a structured logger.
func WithRouterLogger(l *applogger.Logger) RouterOption {
	return func(r *Router) {
		r.logger = l
	}
}

// WithRouterMetrics records cache hits and misses.
func WithRouterMetrics(m repository.Metrics) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

// NewRouter creates a route resolver backed by the given provider client.
func NewRouter(geo geocoder, dir director, opts ...RouterOption) *Router {
	r := &Router{
		geo:         geo,
		dir:         dir,
		ttl:         time.Hour,
		defaultMode: "driving-car",
		strategies:  DefaultStrategies(nil),
		logger:      applogger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveRoute geocodes both endpoints and computes the route between them.
// Cached results are returned as-is; cache read failures degrade to a miss.
func (r *Router) ResolveRoute(ctx context.Context, origin, destination, mode string) (*models.RouteInfo, error) {
	if mode == "" {
		mode = r.defaultMode
	}
	key := cacheName + ":" + util.NormalizeKey(origin, destination, mode)

	if r.cache != nil {
		var cached models.RouteInfo
		err := r.cache.Get(ctx, key, &cached)
		if err == nil {
			r.recordCacheEvent("hit")
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.logger.Warn("route cache read failed", applogger.String("key", key), applogger.Error(err))
		}
		r.recordCacheEvent("miss")
	}

	from, err := r.resolveEndpoint(ctx, origin)
	if err != nil {
		return nil, err
	}
	to, err := r.resolveEndpoint(ctx, destination)
	if err != nil {
		return nil, err
	}

	leg, err := r.directions(ctx, mode, from, to)
	if err != nil {
		return nil, err
	}

	path := leg.Geometry
	if len(path) == 0 {
		// Provider sent no geometry; a straight two-point path is still
		// enough to draw the route endpoints.
		path = []models.Coordinate{
			{Lat: from.Lat, Lng: from.Lng},
			{Lat: to.Lat, Lng: to.Lng},
		}
	}

	distanceKm := leg.DistanceMeters / 1000
	info := &models.RouteInfo{
		DistanceKm:        distanceKm,
		DistanceMeters:    leg.DistanceMeters,
		DurationSeconds:   leg.DurationSeconds,
		DurationFormatted: FormatDuration(leg.DurationSeconds),
		Category:          Categorize(distanceKm),
		Origin:            models.Endpoint{Address: util.NormalizeSpace(origin), Lat: from.Lat, Lng: from.Lng},
		Destination:       models.Endpoint{Address: util.NormalizeSpace(destination), Lat: to.Lat, Lng: to.Lng},
		RouteCoordinates:  path,
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, info, r.ttl); err != nil {
			r.logger.Warn("route cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}

	return info, nil
}

// DistanceKm resolves the route and returns its road distance.
func (r *Router) DistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	info, err := r.ResolveRoute(ctx, origin, destination, r.defaultMode)
	if err != nil {
		return 0, err
	}
	return info.DistanceKm, nil
}

// ValidateAddress reports whether the text resolves to an in-region location.
func (r *Router) ValidateAddress(ctx context.Context, text string) bool {
	_, err := r.resolveEndpoint(ctx, text)
	return err == nil
}

// ClearCache drops all cached routes.
func (r *Router) ClearCache(ctx context.Context) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Clear(ctx)
}

// resolveEndpoint runs the strategy chain until a candidate geocodes inside
// the region. Exhausting the chain is fatal for the request.
func (r *Router) resolveEndpoint(ctx context.Context, address string) (models.Coordinate, error) {
	attempts := 0
	for _, strat := range r.strategies {
		candidate := strat.Apply(address)
		if util.IsBlank(candidate) {
			continue
		}
		attempts++

		coord, found, err := r.geocode(ctx, candidate)
		if err != nil {
			r.logger.Warn("geocode attempt failed",
				applogger.String("strategy", strat.Name),
				applogger.String("candidate", candidate),
				applogger.Error(err),
			)
			continue
		}
		if !found {
			continue
		}
		if !r.region.Contains(coord) {
			r.logger.Debug("geocode result outside region",
				applogger.String("strategy", strat.Name),
				applogger.String("candidate", candidate),
				applogger.Float64("lat", coord.Lat),
				applogger.Float64("lng", coord.Lng),
			)
			continue
		}
		return coord, nil
	}

	return models.Coordinate{}, &models.GeocodeError{Address: address, Attempts: attempts}
}

func (r *Router) geocode(ctx context.Context, text string) (models.Coordinate, bool, error) {
	if r.geoGuard == nil {
		return r.geo.Geocode(ctx, text)
	}
	type hit struct {
		Coord models.Coordinate
		Found bool
	}
	res, err := resilience.Do(ctx, r.geoGuard, resilience.Key("geocode", text), func(ctx context.Context) (hit, error) {
		coord, found, err := r.geo.Geocode(ctx, text)
		return hit{Coord: coord, Found: found}, err
	})
	if err != nil {
		return models.Coordinate{}, false, err
	}
	return res.Coord, res.Found, nil
}

func (r *Router) directions(ctx context.Context, mode string, from, to models.Coordinate) (*Leg, error) {
	if r.dirGuard == nil {
		return r.dir.Directions(ctx, mode, from, to)
	}
	key := resilience.Key("directions", mode,
		util.NormalizeKey(
			formatCoord(from.Lat), formatCoord(from.Lng),
			formatCoord(to.Lat), formatCoord(to.Lng),
		),
	)
	return resilience.Do(ctx, r.dirGuard, key, func(ctx context.Context) (*Leg, error) {
		return r.dir.Directions(ctx, mode, from, to)
	})
}

// formatCoord keeps 5 decimals, about 1m precision, enough for dedup keys.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 5, 64)
}

func (r *Router) recordCacheEvent(event string) {
	if r.metrics != nil {
		r.metrics.RecordCacheEvent(cacheName, event)
	}
}
