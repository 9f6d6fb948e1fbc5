package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	models "ShipQuote/internal/domain/models"
	"ShipQuote/internal/provider"
	"ShipQuote/internal/service/ratelimit"
	"ShipQuote/internal/usecase"
	xlogger "ShipQuote/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type stubAdapter struct {
	id  string
	err error
}

func (s *stubAdapter) ID() string            { return s.id }
func (s *stubAdapter) Name() string          { return "Carrier " + s.id }
func (s *stubAdapter) TransportMode() string { return "ground" }

func (s *stubAdapter) CalculateShipping(context.Context, models.QuoteRequest) (models.Quote, error) {
	if s.err != nil {
		return models.Quote{}, s.err
	}
	return models.Quote{
		ProviderID:    s.id,
		ProviderName:  "Carrier " + s.id,
		Price:         decimal.NewFromInt(24500),
		Currency:      "COP",
		MinDays:       3,
		MaxDays:       6,
		EstimatedDays: 5,
	}, nil
}

func newTestServer(adapters ...provider.Adapter) (*echo.Echo, *QuotesHandler) {
	agg := usecase.NewQuoteAggregator(adapters)
	h := NewQuotesHandler(xlogger.Nop(), agg, nil)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func postQuotes(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func pickupDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func validBody() string {
	return fmt.Sprintf(`{"origin":"Bogota","destination":"Cali","weight":10,"pickupDate":%q}`, pickupDate())
}

func TestQuotesEndpoint(t *testing.T) {
	e, _ := newTestServer(&stubAdapter{id: "andina"})

	rec := postQuotes(e, validBody())
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Status int                `json:"status"`
		Data   models.QuoteResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data.Quotes) != 1 {
		t.Fatalf("quotes %d", len(envelope.Data.Quotes))
	}
	q := envelope.Data.Quotes[0]
	if q.ProviderID != "andina" || !q.IsCheapest || !q.IsFastest {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestQuotesValidation(t *testing.T) {
	e, _ := newTestServer(&stubAdapter{id: "andina"})

	date := pickupDate()
	cases := []struct {
		name string
		body string
	}{
		{"missing origin", fmt.Sprintf(`{"destination":"Cali","weight":10,"pickupDate":%q}`, date)},
		{"zero weight", fmt.Sprintf(`{"origin":"Bogota","destination":"Cali","weight":0,"pickupDate":%q}`, date)},
		{"overweight", fmt.Sprintf(`{"origin":"Bogota","destination":"Cali","weight":1500,"pickupDate":%q}`, date)},
		{"bad mode", fmt.Sprintf(`{"origin":"Bogota","destination":"Cali","weight":10,"pickupDate":%q,"mode":"walking"}`, date)},
		{"bad date", `{"origin":"Bogota","destination":"Cali","weight":10,"pickupDate":"soon"}`},
		{"past date", fmt.Sprintf(`{"origin":"Bogota","destination":"Cali","weight":10,"pickupDate":%q}`, time.Now().AddDate(0, 0, -7).Format("2006-01-02"))},
		{"not json", `origin=Bogota`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postQuotes(e, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestQuotesRateLimited(t *testing.T) {
	e, h := newTestServer(&stubAdapter{id: "andina"})
	h.SetRateLimiter(ratelimit.New(1, 0.0001))

	if rec := postQuotes(e, validBody()); rec.Code != http.StatusOK {
		t.Fatalf("first call: %d", rec.Code)
	}
	if rec := postQuotes(e, validBody()); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second call should be throttled, got %d", rec.Code)
	}
}

func TestClearCacheEndpoint(t *testing.T) {
	e, _ := newTestServer(&stubAdapter{id: "andina"})

	req := httptest.NewRequest(http.MethodDelete, "/api/cache", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	e, _ := newTestServer(&stubAdapter{id: "andina"})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}
