package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"ShipQuote/internal/domain/models"
	drepo "ShipQuote/internal/domain/repository"
	"ShipQuote/internal/provider"
	"ShipQuote/internal/service/resilience"
	applogger "ShipQuote/pkg/logger"
	"ShipQuote/pkg/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteAggregator fans a shipment request out to every carrier in parallel
// and merges the results. Individual carrier failures degrade to messages;
// only request validation and geocoding failures abort the whole call.
type QuoteAggregator struct {
	adapters    []provider.Adapter
	guards      map[string]*resilience.Client
	routes      drepo.RouteResolver
	publisher   drepo.EventPublisher
	metrics     drepo.Metrics
	logger      *applogger.Logger
	callTimeout time.Duration
}

// AggregatorOption configures QuoteAggregator.
type AggregatorOption func(*QuoteAggregator)

// WithRouteResolver attaches route information to successful results.
func WithRouteResolver(r drepo.RouteResolver) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.routes = r
	}
}

// WithGuards wraps each carrier call in its resilient client, keyed by
// carrier id. Carriers without a guard are called directly.
func WithGuards(guards map[string]*resilience.Client) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.guards = guards
	}
}

// WithPublisher emits an event after every aggregation.
func WithPublisher(p drepo.EventPublisher) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.publisher = p
	}
}

// WithMetrics records latencies and outcomes.
func WithMetrics(m drepo.Metrics) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.metrics = m
	}
}

// WithLogger sets a structured logger.
func WithLogger(l *applogger.Logger) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.logger = l
	}
}

// WithCallTimeout bounds each carrier call.
func WithCallTimeout(d time.Duration) AggregatorOption {
	return func(a *QuoteAggregator) {
		a.callTimeout = d
	}
}

// NewQuoteAggregator creates the aggregator over the given carriers.
func NewQuoteAggregator(adapters []provider.Adapter, opts ...AggregatorOption) *QuoteAggregator {
	a := &QuoteAggregator{
		adapters:    adapters,
		logger:      applogger.Nop(),
		callTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type carrierOutcome struct {
	quote models.Quote
	err   error
}

type routeOutcome struct {
	info *models.RouteInfo
	err  error
}

// GetQuotes returns all obtainable quotes for the request. When every
// carrier fails the result carries zero quotes and one message per carrier,
// without an error.
func (a *QuoteAggregator) GetQuotes(ctx context.Context, req models.QuoteRequest) (*models.QuoteResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	started := time.Now()

	// Route resolution is independent of any carrier, so it runs alongside
	// the fan-out.
	routeCh := make(chan routeOutcome, 1)
	if a.routes != nil {
		go func() {
			info, err := a.routes.ResolveRoute(ctx, req.Origin, req.Destination, req.Mode)
			routeCh <- routeOutcome{info: info, err: err}
		}()
	} else {
		routeCh <- routeOutcome{}
	}

	outcomes := make([]carrierOutcome, len(a.adapters))
	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter provider.Adapter) {
			defer wg.Done()
			outcomes[i] = a.callCarrier(ctx, adapter, req)
		}(i, adapter)
	}
	wg.Wait()

	result := &models.QuoteResult{
		Quotes:   make([]models.Quote, 0, len(a.adapters)),
		Messages: make([]models.ProviderMessage, 0),
	}
	for i, out := range outcomes {
		if out.err == nil {
			result.Quotes = append(result.Quotes, out.quote)
			continue
		}
		var ve *models.ValidationError
		if errors.As(out.err, &ve) {
			return nil, ve
		}
		result.Messages = append(result.Messages, carrierFailure(a.adapters[i], out.err))
	}

	route := <-routeCh
	if route.err != nil {
		var ge *models.GeocodeError
		if errors.As(route.err, &ge) {
			return nil, ge
		}
		// A broken routing provider must not cost us the quotes.
		a.logger.Warn("route resolution failed",
			applogger.String("request_id", req.RequestID),
			applogger.Error(route.err),
		)
	}
	if route.info != nil {
		result.RouteInfo = route.info
		attachRoute(result.Quotes, route.info)
	}

	AssignBadges(result.Quotes)

	elapsed := time.Since(started)
	if a.metrics != nil {
		a.metrics.RecordAggregation(len(result.Quotes), len(result.Messages), elapsed.Seconds())
	}
	a.logger.Info("aggregation finished",
		applogger.String("request_id", req.RequestID),
		applogger.Int("quotes", len(result.Quotes)),
		applogger.Int("failures", len(result.Messages)),
		applogger.Duration("elapsed", elapsed),
	)

	a.publishEvent(req, result, elapsed)

	return result, nil
}

func (a *QuoteAggregator) callCarrier(ctx context.Context, adapter provider.Adapter, req models.QuoteRequest) carrierOutcome {
	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	started := time.Now()
	var quote models.Quote
	var err error

	if guard := a.guards[adapter.ID()]; guard != nil {
		key := resilience.Key(
			adapter.ID(), req.Origin, req.Destination,
			strconv.FormatFloat(req.WeightKg, 'f', 2, 64),
			strconv.FormatBool(req.Fragile), req.Mode,
		)
		quote, err = resilience.Do(callCtx, guard, key, func(ctx context.Context) (models.Quote, error) {
			return adapter.CalculateShipping(ctx, req)
		})
	} else {
		quote, err = adapter.CalculateShipping(callCtx, req)
	}

	if a.metrics != nil {
		a.metrics.RecordProviderLatency(adapter.ID(), time.Since(started).Seconds())
		if err != nil {
			a.metrics.RecordProviderError(adapter.ID(), failureCode(err))
		}
	}
	if err != nil {
		a.logger.Warn("carrier call failed",
			applogger.String("request_id", req.RequestID),
			applogger.String("carrier", adapter.ID()),
			applogger.Error(err),
		)
	}

	return carrierOutcome{quote: quote, err: err}
}

func (a *QuoteAggregator) publishEvent(req models.QuoteRequest, result *models.QuoteResult, elapsed time.Duration) {
	if a.publisher == nil {
		return
	}

	ev := &models.QuoteEvent{
		RequestID:    req.RequestID,
		Origin:       req.Origin,
		Destination:  req.Destination,
		WeightKg:     req.WeightKg,
		QuoteCount:   len(result.Quotes),
		FailureCount: len(result.Messages),
		DurationMs:   elapsed.Milliseconds(),
		OccurredAt:   time.Now().UTC(),
	}
	for _, q := range result.Quotes {
		if q.IsCheapest {
			ev.CheapestProvider = q.ProviderID
			break
		}
	}

	// Fire and forget: the caller already has their quotes.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.publisher.PublishQuoteEvent(ctx, ev); err != nil {
			a.logger.Warn("quote event publish failed",
				applogger.String("request_id", ev.RequestID),
				applogger.Error(err),
			)
		}
	}()
}

// validateRequest rejects malformed requests before any carrier is called.
func validateRequest(req models.QuoteRequest) error {
	if util.IsBlank(req.Origin) {
		return models.NewValidationError("origin", "must not be blank")
	}
	if util.IsBlank(req.Destination) {
		return models.NewValidationError("destination", "must not be blank")
	}
	if req.WeightKg <= 0.1 {
		return models.NewValidationError("weight", "must be greater than 0.1 kg")
	}
	if req.WeightKg > 1000 {
		return models.NewValidationError("weight", "must not exceed 1000 kg")
	}
	if req.PickupDate.IsZero() {
		return models.NewValidationError("pickupDate", "is required")
	}
	today := util.DateOnly(time.Now())
	pickup := util.DateOnly(req.PickupDate)
	if pickup.Before(today) {
		return models.NewValidationError("pickupDate", "must not be in the past")
	}
	if pickup.After(today.AddDate(0, 0, 30)) {
		return models.NewValidationError("pickupDate", "must be within the next 30 days")
	}
	return nil
}

// carrierFailure translates a carrier error into a user-facing message.
func carrierFailure(adapter provider.Adapter, err error) models.ProviderMessage {
	msg := models.ProviderMessage{
		Provider: adapter.ID(),
		Code:     failureCode(err),
	}

	var pe *models.ProviderError
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		msg.Message = fmt.Sprintf("%s is temporarily unavailable, try again later", adapter.Name())
	case errors.Is(err, context.DeadlineExceeded):
		msg.Message = fmt.Sprintf("%s did not respond in time", adapter.Name())
	case errors.As(err, &pe):
		msg.Message = fmt.Sprintf("%s: %v", adapter.Name(), pe.Err)
	default:
		msg.Message = fmt.Sprintf("%s could not provide a quote", adapter.Name())
	}
	return msg
}

func failureCode(err error) string {
	var pe *models.ProviderError
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &pe):
		return pe.Code
	default:
		return "error"
	}
}

// attachRoute shares the route across all quotes and derives per-km prices.
func attachRoute(quotes []models.Quote, info *models.RouteInfo) {
	if info.DistanceKm <= 0 {
		return
	}
	distance := decimal.NewFromFloat(info.DistanceKm)
	for i := range quotes {
		quotes[i].RouteInfo = info
		perKm := quotes[i].Price.Div(distance).Round(2)
		quotes[i].PricePerKm = &perKm
	}
}
