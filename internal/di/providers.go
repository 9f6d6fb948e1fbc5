package di

import (
	"fmt"

	"ShipQuote/internal/domain/repository"
	"ShipQuote/internal/handler/api"
	"ShipQuote/internal/provider"
	internalrepo "ShipQuote/internal/repository"
	"ShipQuote/internal/service/georoute"
	"ShipQuote/internal/service/ratelimit"
	"ShipQuote/internal/service/ratestream"
	"ShipQuote/internal/service/resilience"
	"ShipQuote/internal/usecase"
	"ShipQuote/pkg/cache"
	"ShipQuote/pkg/config"
	xhttp "ShipQuote/pkg/http"
	pkgkafka "ShipQuote/pkg/kafka"
	applogger "ShipQuote/pkg/logger"
	"ShipQuote/pkg/metrics"
	"ShipQuote/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the route cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	}
	return cache.NewMemoryCache(), nil
}

// breakerConfig maps the resilience settings onto a breaker config.
func breakerConfig(cfg *config.Config) resilience.BreakerConfig {
	return resilience.BreakerConfig{
		FailureThreshold: cfg.Resilience.FailureThreshold,
		SuccessThreshold: cfg.Resilience.SuccessThreshold,
		RecoveryTimeout:  cfg.Resilience.RecoveryTimeout,
		HalfOpenMaxCalls: cfg.Resilience.HalfOpenMaxCalls,
	}
}

func retryPolicy(cfg *config.Config) resilience.RetryPolicy {
	return resilience.RetryPolicy{
		MaxAttempts: cfg.Resilience.Retry.MaxAttempts,
		BaseDelay:   cfg.Resilience.Retry.BaseDelay,
		MaxDelay:    cfg.Resilience.Retry.MaxDelay,
	}
}

func transitionHook(m repository.Metrics) resilience.TransitionFunc {
	return func(name string, from, to resilience.State) {
		m.RecordCircuitTransition(name, from.String(), to.String())
	}
}

// ProvideRouteResolver creates the geocoding router, or nil when no
// geocoding provider is configured.
func ProvideRouteResolver(
	cfg *config.Config,
	routeCache cache.Service,
	logger *applogger.Logger,
	m repository.Metrics,
) repository.RouteResolver {
	if cfg.Geocoding.BaseURL == "" {
		logger.Warn("geocoding disabled, quotes will carry no route info")
		return nil
	}

	httpClient := xhttp.NewClient(xhttp.WithTimeout(cfg.Geocoding.Timeout))
	ors := georoute.NewORSClient(httpClient, cfg.Geocoding.BaseURL, cfg.Geocoding.APIKey)

	geoGuard := resilience.New("geocode", breakerConfig(cfg), retryPolicy(cfg),
		resilience.WithLogger(logger),
		resilience.WithTransitionHook(transitionHook(m)),
	)
	dirGuard := resilience.New("directions", breakerConfig(cfg), retryPolicy(cfg),
		resilience.WithLogger(logger),
		resilience.WithTransitionHook(transitionHook(m)),
	)

	return georoute.NewRouter(ors, ors,
		georoute.WithCache(routeCache, cfg.Cache.RouteTTL),
		georoute.WithRegion(georoute.Region{
			MinLat: cfg.Geocoding.Region.MinLat,
			MaxLat: cfg.Geocoding.Region.MaxLat,
			MinLng: cfg.Geocoding.Region.MinLng,
			MaxLng: cfg.Geocoding.Region.MaxLng,
		}),
		georoute.WithStrategies(georoute.DefaultStrategies(cfg.Geocoding.KnownCities)),
		georoute.WithDefaultMode(cfg.Geocoding.Profile),
		georoute.WithGuards(geoGuard, dirGuard),
		georoute.WithRouterLogger(logger),
		georoute.WithRouterMetrics(m),
	)
}

// ProvideRateStream creates the spot rate WebSocket client, or nil when the
// feed is not configured.
func ProvideRateStream(cfg *config.Config, logger *applogger.Logger) *ratestream.Client {
	if cfg.RateStream.URL == "" {
		return nil
	}
	return ratestream.New(
		cfg.RateStream.APIKey,
		cfg.RateStream.URL,
		cfg.RateStream.Lanes,
		cfg.RateStream.ReconnectDelay,
		cfg.RateStream.PingInterval,
		logger,
	)
}

// ProvideAdapters instantiates the enabled carriers.
func ProvideAdapters(cfg *config.Config, stream *ratestream.Client) ([]provider.Adapter, error) {
	var rates repository.RateSource
	if stream != nil {
		rates = stream
	}
	adapters, err := provider.Build(cfg.Providers.Enabled, rates)
	if err != nil {
		return nil, fmt.Errorf("build adapters: %w", err)
	}
	return adapters, nil
}

// ProvideGuards creates one resilient client per enabled carrier.
func ProvideGuards(cfg *config.Config, logger *applogger.Logger, m repository.Metrics) map[string]*resilience.Client {
	guards := make(map[string]*resilience.Client, len(cfg.Providers.Enabled))
	for _, id := range cfg.Providers.Enabled {
		guards[id] = resilience.New(id, breakerConfig(cfg), retryPolicy(cfg),
			resilience.WithLogger(logger),
			resilience.WithTransitionHook(transitionHook(m)),
		)
	}
	return guards
}

// ProvideEventPublisher creates the Kafka publisher, or nil when events are
// disabled.
func ProvideEventPublisher(cfg *config.Config) (repository.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithCompression(cfg.Events.Compression),
		pkgkafka.WithRequiredAcks(cfg.Events.RequiredAcks),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaQuoteEventPublisher(producer, cfg.Events.Topic), nil
}

// ProvideAggregator wires the quote aggregation use case.
func ProvideAggregator(
	cfg *config.Config,
	adapters []provider.Adapter,
	guards map[string]*resilience.Client,
	routes repository.RouteResolver,
	publisher repository.EventPublisher,
	m repository.Metrics,
	logger *applogger.Logger,
) *usecase.QuoteAggregator {
	opts := []usecase.AggregatorOption{
		usecase.WithGuards(guards),
		usecase.WithMetrics(m),
		usecase.WithLogger(logger),
		usecase.WithCallTimeout(cfg.Providers.CallTimeout),
	}
	if routes != nil {
		opts = append(opts, usecase.WithRouteResolver(routes))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher))
	}
	return usecase.NewQuoteAggregator(adapters, opts...)
}

// ProvideHandler creates the HTTP handler with optional rate limiting.
func ProvideHandler(
	cfg *config.Config,
	logger *applogger.Logger,
	agg *usecase.QuoteAggregator,
	routes repository.RouteResolver,
) xhttp.Handler {
	h := api.NewQuotesHandler(logger, agg, routes)
	if cfg.RateLimit.Enabled {
		h.SetRateLimiter(ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec))
	}
	return h
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	handler xhttp.Handler,
	stream *ratestream.Client,
	publisher repository.EventPublisher,
) *server.App {
	return server.New(cfg, logger, handler, stream, publisher)
}
