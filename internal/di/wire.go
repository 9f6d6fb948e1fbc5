//go:build wireinject
// +build wireinject

package di

import (
	"ShipQuote/pkg/config"
	"ShipQuote/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideRateStream,
		ProvideEventPublisher,

		// Domain services
		ProvideRouteResolver,
		ProvideAdapters,
		ProvideGuards,

		// Use cases and HTTP surface
		ProvideAggregator,
		ProvideHandler,

		ProvideApp,
	)
	return &server.App{}, nil
}
