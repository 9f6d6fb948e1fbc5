package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ShipQuote/internal/domain/models"
	"ShipQuote/internal/provider"

	"github.com/shopspring/decimal"
)

type fakeAdapter struct {
	id    string
	price int64
	days  int
	delay time.Duration
	err   error
}

func (f *fakeAdapter) ID() string            { return f.id }
func (f *fakeAdapter) Name() string          { return "Carrier " + f.id }
func (f *fakeAdapter) TransportMode() string { return "ground" }

func (f *fakeAdapter) CalculateShipping(ctx context.Context, _ models.QuoteRequest) (models.Quote, error) {
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return models.Quote{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return models.Quote{}, f.err
	}
	return models.Quote{
		ProviderID:    f.id,
		ProviderName:  "Carrier " + f.id,
		Price:         decimal.NewFromInt(f.price),
		Currency:      "COP",
		EstimatedDays: f.days,
	}, nil
}

type fakeResolver struct {
	info *models.RouteInfo
	err  error
}

func (f *fakeResolver) ResolveRoute(context.Context, string, string, string) (*models.RouteInfo, error) {
	return f.info, f.err
}
func (f *fakeResolver) DistanceKm(context.Context, string, string) (float64, error) {
	return 0, f.err
}
func (f *fakeResolver) ValidateAddress(context.Context, string) bool { return true }
func (f *fakeResolver) ClearCache(context.Context) error             { return nil }

type fakePublisher struct {
	events chan *models.QuoteEvent
}

func (f *fakePublisher) PublishQuoteEvent(_ context.Context, ev *models.QuoteEvent) error {
	f.events <- ev
	return nil
}
func (f *fakePublisher) Close() error { return nil }

func aggRequest() models.QuoteRequest {
	return models.QuoteRequest{
		Origin:      "Bogota",
		Destination: "Cali",
		WeightKg:    10,
		PickupDate:  time.Now().AddDate(0, 0, 7),
	}
}

func TestGetQuotesAllSucceed(t *testing.T) {
	agg := NewQuoteAggregator([]provider.Adapter{
		&fakeAdapter{id: "a", price: 24500, days: 5},
		&fakeAdapter{id: "b", price: 38000, days: 2},
	})

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Quotes) != 2 || len(result.Messages) != 0 {
		t.Fatalf("quotes=%d messages=%d", len(result.Quotes), len(result.Messages))
	}
	if !result.Quotes[0].IsCheapest {
		t.Fatalf("cheapest badge missing")
	}
	if !result.Quotes[1].IsFastest {
		t.Fatalf("fastest badge missing")
	}
}

func TestGetQuotesSlowCarrierDegrades(t *testing.T) {
	agg := NewQuoteAggregator([]provider.Adapter{
		&fakeAdapter{id: "fast", price: 24500, days: 5},
		&fakeAdapter{id: "slow", price: 38000, days: 2, delay: 500 * time.Millisecond},
	}, WithCallTimeout(20*time.Millisecond))

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Quotes) != 1 || result.Quotes[0].ProviderID != "fast" {
		t.Fatalf("expected the fast carrier only, got %+v", result.Quotes)
	}
	if len(result.Messages) != 1 {
		t.Fatalf("expected one failure message, got %d", len(result.Messages))
	}
	if result.Messages[0].Provider != "slow" || result.Messages[0].Code != "timeout" {
		t.Fatalf("unexpected message %+v", result.Messages[0])
	}
}

func TestGetQuotesAllFail(t *testing.T) {
	boom := errors.New("boom")
	agg := NewQuoteAggregator([]provider.Adapter{
		&fakeAdapter{id: "a", err: boom},
		&fakeAdapter{id: "b", err: boom},
		&fakeAdapter{id: "c", err: boom},
	})

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("total carrier failure must not error: %v", err)
	}
	if len(result.Quotes) != 0 {
		t.Fatalf("expected no quotes")
	}
	if len(result.Messages) != 3 {
		t.Fatalf("expected one message per carrier, got %d", len(result.Messages))
	}
}

func TestGetQuotesCarrierRejectionBecomesMessage(t *testing.T) {
	agg := NewQuoteAggregator([]provider.Adapter{
		&fakeAdapter{id: "a", price: 24500, days: 5},
		&fakeAdapter{id: "heavy", err: &models.ProviderError{
			Provider: "heavy",
			Code:     "below_minimum",
			Err:      fmt.Errorf("freight service requires at least 20 kg"),
		}},
	})

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(result.Quotes) != 1 || len(result.Messages) != 1 {
		t.Fatalf("quotes=%d messages=%d", len(result.Quotes), len(result.Messages))
	}
	if result.Messages[0].Code != "below_minimum" {
		t.Fatalf("unexpected code %q", result.Messages[0].Code)
	}
}

func TestGetQuotesValidationAborts(t *testing.T) {
	adapter := &fakeAdapter{id: "a", price: 24500, days: 5}
	agg := NewQuoteAggregator([]provider.Adapter{adapter})

	req := aggRequest()
	req.Origin = "   "
	_, err := agg.GetQuotes(context.Background(), req)

	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Field != "origin" {
		t.Fatalf("field %q", ve.Field)
	}
}

func TestGetQuotesPickupDateWindow(t *testing.T) {
	agg := NewQuoteAggregator([]provider.Adapter{&fakeAdapter{id: "a", price: 24500, days: 5}})

	rejected := []struct {
		name   string
		pickup time.Time
	}{
		{"past date", time.Now().AddDate(0, 0, -7)},
		{"beyond 30 days", time.Now().AddDate(0, 0, 31)},
	}
	for _, tc := range rejected {
		t.Run(tc.name, func(t *testing.T) {
			req := aggRequest()
			req.PickupDate = tc.pickup
			_, err := agg.GetQuotes(context.Background(), req)

			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != "pickupDate" {
				t.Fatalf("field %q", ve.Field)
			}
		})
	}

	accepted := []struct {
		name   string
		pickup time.Time
	}{
		{"today", time.Now()},
		{"window edge", time.Now().AddDate(0, 0, 30)},
	}
	for _, tc := range accepted {
		t.Run(tc.name, func(t *testing.T) {
			req := aggRequest()
			req.PickupDate = tc.pickup
			result, err := agg.GetQuotes(context.Background(), req)
			if err != nil {
				t.Fatalf("aggregate: %v", err)
			}
			if len(result.Quotes) != 1 {
				t.Fatalf("quotes %d", len(result.Quotes))
			}
		})
	}
}

func TestGetQuotesAttachesRoute(t *testing.T) {
	info := &models.RouteInfo{
		DistanceKm:        450,
		DistanceMeters:    450000,
		DurationSeconds:   18000,
		DurationFormatted: "5h 0min",
		Category:          "long_haul",
	}
	agg := NewQuoteAggregator(
		[]provider.Adapter{&fakeAdapter{id: "a", price: 45000, days: 5}},
		WithRouteResolver(&fakeResolver{info: info}),
	)

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if result.RouteInfo != info {
		t.Fatalf("route info not attached to result")
	}
	if result.Quotes[0].RouteInfo != info {
		t.Fatalf("route info not shared with quote")
	}
	if result.Quotes[0].PricePerKm == nil {
		t.Fatalf("pricePerKm missing")
	}
	if !result.Quotes[0].PricePerKm.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("pricePerKm %s", result.Quotes[0].PricePerKm)
	}
}

func TestGetQuotesGeocodeFailureIsFatal(t *testing.T) {
	agg := NewQuoteAggregator(
		[]provider.Adapter{&fakeAdapter{id: "a", price: 45000, days: 5}},
		WithRouteResolver(&fakeResolver{err: &models.GeocodeError{Address: "Atlantis", Attempts: 3}}),
	)

	_, err := agg.GetQuotes(context.Background(), aggRequest())

	var ge *models.GeocodeError
	if !errors.As(err, &ge) {
		t.Fatalf("expected GeocodeError, got %v", err)
	}
}

func TestGetQuotesRouteFailureDegrades(t *testing.T) {
	agg := NewQuoteAggregator(
		[]provider.Adapter{&fakeAdapter{id: "a", price: 45000, days: 5}},
		WithRouteResolver(&fakeResolver{err: errors.New("routing provider down")}),
	)

	result, err := agg.GetQuotes(context.Background(), aggRequest())
	if err != nil {
		t.Fatalf("routing failure must not fail the aggregation: %v", err)
	}
	if len(result.Quotes) != 1 {
		t.Fatalf("expected quotes without route info")
	}
	if result.RouteInfo != nil {
		t.Fatalf("route info should be absent")
	}
}

func TestGetQuotesPublishesEvent(t *testing.T) {
	pub := &fakePublisher{events: make(chan *models.QuoteEvent, 1)}
	agg := NewQuoteAggregator(
		[]provider.Adapter{
			&fakeAdapter{id: "a", price: 24500, days: 5},
			&fakeAdapter{id: "b", err: errors.New("down")},
		},
		WithPublisher(pub),
	)

	req := aggRequest()
	req.RequestID = "req-42"
	if _, err := agg.GetQuotes(context.Background(), req); err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	select {
	case ev := <-pub.events:
		if ev.RequestID != "req-42" {
			t.Fatalf("request id %q", ev.RequestID)
		}
		if ev.QuoteCount != 1 || ev.FailureCount != 1 {
			t.Fatalf("counts %d/%d", ev.QuoteCount, ev.FailureCount)
		}
		if ev.CheapestProvider != "a" {
			t.Fatalf("cheapest %q", ev.CheapestProvider)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not published")
	}
}

func TestGetQuotesAssignsRequestID(t *testing.T) {
	pub := &fakePublisher{events: make(chan *models.QuoteEvent, 1)}
	agg := NewQuoteAggregator(
		[]provider.Adapter{&fakeAdapter{id: "a", price: 24500, days: 5}},
		WithPublisher(pub),
	)

	if _, err := agg.GetQuotes(context.Background(), aggRequest()); err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	select {
	case ev := <-pub.events:
		if ev.RequestID == "" {
			t.Fatalf("expected a generated request id")
		}
	case <-time.After(time.Second):
		t.Fatalf("event not published")
	}
}
