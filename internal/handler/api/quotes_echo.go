// Package api exposes the quote aggregation service over HTTP.
package api

import (
	"errors"
	"net/http"

	models "ShipQuote/internal/domain/models"
	drepo "ShipQuote/internal/domain/repository"
	"ShipQuote/internal/service/ratelimit"
	"ShipQuote/internal/usecase"
	xhttp "ShipQuote/pkg/http"
	xlogger "ShipQuote/pkg/logger"
	"ShipQuote/pkg/util"

	"github.com/labstack/echo/v4"
)

// QuotesHandler implements the Echo-based HTTP handlers for quotes.
type QuotesHandler struct {
	logger *xlogger.Logger
	agg    *usecase.QuoteAggregator
	routes drepo.RouteResolver
	rl     *ratelimit.Limiter
}

func NewQuotesHandler(logger *xlogger.Logger, agg *usecase.QuoteAggregator, routes drepo.RouteResolver) *QuotesHandler {
	return &QuotesHandler{logger: logger, agg: agg, routes: routes}
}

// SetRateLimiter enables per-client throttling on the quotes endpoint.
func (h *QuotesHandler) SetRateLimiter(l *ratelimit.Limiter) { h.rl = l }

func (h *QuotesHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.POST("/quotes", h.Quotes)
	g.DELETE("/cache", h.ClearCache)
}

// Quotes handles POST /api/quotes.
func (h *QuotesHandler) Quotes(c echo.Context) error {
	if h.rl != nil && !h.rl.Allow(c.RealIP()) {
		h.logger.Warn("quotes rate limited", xlogger.String("remote", c.RealIP()))
		return xhttp.TooManyRequestsResponse(c)
	}

	req := &models.QuoteHTTPRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	pickup, ok := util.ParseDate(req.PickupDate)
	if !ok {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_DATE",
			Field:   "pickupDate",
			Message: "pickupDate must be YYYY-MM-DD or RFC3339",
		}})
	}

	result, err := h.agg.GetQuotes(c.Request().Context(), models.QuoteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		WeightKg:    req.Weight,
		PickupDate:  pickup,
		Fragile:     req.Fragile,
		Mode:        req.Mode,
	})
	if err != nil {
		return h.quoteError(c, err)
	}

	return xhttp.SuccessResponse(c, result)
}

func (h *QuotesHandler) quoteError(c echo.Context, err error) error {
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_VALIDATION",
			Field:   ve.Field,
			Message: ve.Reason,
		}})
	}

	var ge *models.GeocodeError
	if errors.As(err, &ge) {
		return xhttp.DataResponse(c, http.StatusUnprocessableEntity, []xhttp.ValidationError{{
			Code:    "ERR_GEOCODE",
			Message: "address could not be located: " + ge.Address,
		}})
	}

	h.logger.Error("quote aggregation error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}

// ClearCache handles DELETE /api/cache.
func (h *QuotesHandler) ClearCache(c echo.Context) error {
	if h.routes != nil {
		if err := h.routes.ClearCache(c.Request().Context()); err != nil {
			h.logger.Error("cache clear error", xlogger.Error(err))
			return xhttp.InternalServerErrorResponse(c)
		}
	}
	return xhttp.NoContentResponse(c)
}

// Health handles GET /healthz.
func (h *QuotesHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
