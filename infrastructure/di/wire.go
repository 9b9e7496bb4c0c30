//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"flowcanvas/infrastructure/config"
)

// SuperSet is the complete provider set for the editor daemon
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideMetrics,
	ProvideHookManager,
	ProvideCanvasStore,
	ProvideEventStore,
	ProvideVersionStore,
	ProvideVersioningService,
	ProvideEventBus,
	ProvideCache,
	ProvideGestureService,
	ProvideGestureRateLimiter,
	ProvideJWTValidator,
	ProvideLogStore,
	ProvideLogSource,
	ProvideLogWatcher,
	ProvideImportRunner,
	ProvideCanvasHandler,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer builds the full dependency graph for a daemon
// process from its loaded configuration.
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
