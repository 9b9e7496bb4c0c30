package di

import (
	"go.uber.org/zap"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/ports"
	querybus "flowcanvas/application/queries/bus"
	"flowcanvas/application/services"
	domaincfg "flowcanvas/domain/config"
	"flowcanvas/domain/versioning"
	"flowcanvas/infrastructure/config"
	"flowcanvas/infrastructure/logwatch"
	"flowcanvas/pkg/auth"
	"flowcanvas/pkg/extensions"
	"flowcanvas/pkg/observability"
)

// Container holds every wired dependency of a daemon process. The HTTP
// layer reads from it; nothing writes to it after initialization.
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig *domaincfg.DomainConfig

	Metrics *observability.Metrics
	Hooks   *extensions.HookManager

	Store      ports.CanvasStore
	EventStore ports.EventStore
	Versions   ports.VersionStore
	Versioning *versioning.VersioningService
	EventBus   ports.EventBus
	Cache      ports.Cache

	// Canvases is exposed directly because canvas creation returns the
	// new aggregate, which the command bus cannot carry back.
	Canvases *commands.CanvasHandler
	Gestures *services.GestureService

	GestureLimiter *auth.GestureRateLimiter
	// JWTValidator is nil when authentication is disabled.
	JWTValidator *auth.JWTValidator

	LogStore *logwatch.Store
	// LogWatcher is nil when no log file is configured. The caller owns
	// its lifecycle: Start after init, Stop via Close.
	LogWatcher *logwatch.Watcher

	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
}

// Close releases the background resources the container owns. The zap
// logger is flushed by the caller, not here.
func (c *Container) Close() {
	if c.LogWatcher != nil {
		c.LogWatcher.Stop()
	}
	if c.GestureLimiter != nil {
		c.GestureLimiter.Stop()
	}
	if cache, ok := c.Cache.(*InMemoryCache); ok {
		cache.Stop()
	}
}
