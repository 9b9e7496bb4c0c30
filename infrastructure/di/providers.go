package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"flowcanvas/application/commands"
	"flowcanvas/application/commands/bus"
	"flowcanvas/application/ports"
	querybus "flowcanvas/application/queries/bus"
	queryhandlers "flowcanvas/application/queries/handlers"
	"flowcanvas/application/sagas"
	"flowcanvas/application/services"
	domaincfg "flowcanvas/domain/config"
	"flowcanvas/domain/versioning"
	"flowcanvas/infrastructure/config"
	"flowcanvas/infrastructure/logwatch"
	"flowcanvas/infrastructure/messaging"
	"flowcanvas/infrastructure/persistence/memory"
	"flowcanvas/pkg/auth"
	"flowcanvas/pkg/extensions"
	"flowcanvas/pkg/observability"
)

// ProvideLogger creates the process logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// ProvideDomainConfig merges the environment overrides onto the domain
// defaults. Zero-valued overrides keep the default.
func ProvideDomainConfig(cfg *config.Config) *domaincfg.DomainConfig {
	domainCfg := domaincfg.DefaultDomainConfig()
	overrides := cfg.Domain()
	if overrides.HistoryLimit > 0 {
		domainCfg.HistoryLimit = overrides.HistoryLimit
	}
	if overrides.MaxNodes > 0 {
		domainCfg.MaxNodesPerCanvas = overrides.MaxNodes
	}
	if overrides.MaxConnectors > 0 {
		domainCfg.MaxConnectorsPerCanvas = overrides.MaxConnectors
	}
	return domainCfg
}

// ProvideMetrics creates the metrics registry
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideHookManager creates the extension hook manager
func ProvideHookManager() *extensions.HookManager {
	return extensions.NewHookManager()
}

// ProvideCanvasStore creates the canvas session store
func ProvideCanvasStore(domainCfg *domaincfg.DomainConfig, logger *zap.Logger) ports.CanvasStore {
	return memory.NewSessionStore(domainCfg, logger)
}

// ProvideEventStore creates the event journal
func ProvideEventStore() ports.EventStore {
	return memory.NewEventJournal(0)
}

// ProvideVersionStore creates the checkpoint store
func ProvideVersionStore() ports.VersionStore {
	return memory.NewVersionStore()
}

// ProvideVersioningService creates the checkpoint service. Imports
// record a baseline checkpoint automatically.
func ProvideVersioningService(cfg *config.Config) *versioning.VersioningService {
	return versioning.NewVersioningService(cfg.MaxVersionsPerCanvas, true)
}

// ProvideEventBus creates the in-process event bus with its standing
// subscribers: the journal records what actually went out, the metrics
// handler counts by type, and the bridge fans mapped events out to
// extension hooks.
func ProvideEventBus(
	eventStore ports.EventStore,
	metrics *observability.Metrics,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) (ports.EventBus, error) {
	eventBus := messaging.NewInMemoryEventBus(logger)

	subscribers := []ports.EventHandler{
		messaging.NewJournalHandler(eventStore, logger),
		messaging.NewMetricsHandler(metrics),
		messaging.NewHookBridgeHandler(hooks, logger),
	}
	for _, subscriber := range subscribers {
		if err := eventBus.Subscribe(messaging.WildcardTopic, subscriber); err != nil {
			return nil, fmt.Errorf("subscribe %T: %w", subscriber, err)
		}
	}
	return eventBus, nil
}

// ProvideCache creates the query result cache
func ProvideCache() ports.Cache {
	return NewInMemoryCache()
}

// ProvideGestureService creates the pointer gesture host
func ProvideGestureService(
	store ports.CanvasStore,
	eventBus ports.EventBus,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) *services.GestureService {
	svc := services.NewGestureService(store, eventBus, logger)
	svc.UseHooks(hooks)
	return svc
}

// ProvideGestureRateLimiter creates the per-canvas pointer event limiter
func ProvideGestureRateLimiter(cfg *config.Config) *auth.GestureRateLimiter {
	return auth.NewGestureRateLimiter(cfg.GestureBurst, cfg.GestureEventsPerSec)
}

// ProvideJWTValidator creates the token validator, or nil when
// authentication is disabled.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	if !cfg.AuthEnabled {
		return nil, nil
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideLogStore creates the parsed log tail store
func ProvideLogStore(cfg *config.Config) *logwatch.Store {
	return logwatch.NewStore(cfg.LogStoreLimit)
}

// ProvideLogSource exposes the log store as the query-side source
func ProvideLogSource(store *logwatch.Store) ports.LogSource {
	return store
}

// ProvideLogWatcher creates the log file watcher, or nil when no log
// file is configured. The caller starts and stops it.
func ProvideLogWatcher(
	cfg *config.Config,
	store *logwatch.Store,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) (*logwatch.Watcher, error) {
	if cfg.LogWatchPath == "" {
		return nil, nil
	}
	watcher, err := logwatch.NewWatcher(cfg.LogWatchPath, store, logwatch.NewParser(), cfg.LogDebounce, logger)
	if err != nil {
		return nil, err
	}
	watcher.UseHooks(hooks)
	return watcher, nil
}

// ProvideImportRunner creates the import orchestration saga
func ProvideImportRunner(
	store ports.CanvasStore,
	versions ports.VersionStore,
	versioningService *versioning.VersioningService,
	eventBus ports.EventBus,
	logger *zap.Logger,
) commands.ImportRunner {
	return sagas.NewImportOrchestrator(store, versions, versioningService, eventBus, logger)
}

// ProvideCanvasHandler creates the canvas command handler. It is also
// exposed on the container because creation returns the new aggregate.
func ProvideCanvasHandler(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *commands.CanvasHandler {
	return commands.NewCanvasHandler(store, eventBus, logger)
}

// registerCommand registers a typed handler behind the shared pipeline.
func registerCommand[T bus.Command](commandBus *bus.CommandBus, pipeline *bus.Pipeline, handle func(ctx context.Context, cmd T) error) error {
	var zero T
	handler := pipeline.Execute(bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) error {
		typed, ok := cmd.(T)
		if !ok {
			return fmt.Errorf("invalid command type %T", cmd)
		}
		return handle(ctx, typed)
	}))
	if err := commandBus.Register(zero, handler); err != nil {
		return fmt.Errorf("register %T: %w", zero, err)
	}
	return nil
}

// ProvideCommandBus creates the command bus and registers every
// mutation the editor supports. Send validates commands before
// dispatch, so the pipeline carries no validation stage.
func ProvideCommandBus(
	store ports.CanvasStore,
	eventBus ports.EventBus,
	importRunner commands.ImportRunner,
	canvases *commands.CanvasHandler,
	gestures *services.GestureService,
	hooks *extensions.HookManager,
	metrics *observability.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus()
	busLogger := zapLoggerAdapter{logger: logger}
	pipeline := bus.NewPipeline(
		bus.RecoveryMiddleware(busLogger),
		bus.LoggingMiddleware(busLogger),
		bus.TimingMiddleware(metrics),
	)

	nodes := commands.NewNodeHandler(store, eventBus, logger)
	connectors := commands.NewConnectorHandler(store, eventBus, logger)
	history := commands.NewHistoryHandler(store, eventBus, logger)
	selection := commands.NewSelectionHandler(store, eventBus, logger)
	overlays := commands.NewOverlayHandler(store, eventBus, logger)
	importer := commands.NewImportHandler(importRunner)

	if err := registerCommand(commandBus, pipeline, func(ctx context.Context, cmd commands.CreateCanvasCommand) error {
		_, err := canvases.HandleCreate(ctx, cmd)
		return err
	}); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, canvases.HandleRename); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, func(ctx context.Context, cmd commands.DeleteCanvasCommand) error {
		if err := canvases.HandleDelete(ctx, cmd); err != nil {
			return err
		}
		gestures.Release(cmd.CanvasID)
		if err := hooks.Execute(ctx, extensions.HookCanvasDeleted, cmd.CanvasID); err != nil {
			logger.Warn("Canvas delete hook failed",
				zap.String("canvasID", cmd.CanvasID),
				zap.Error(err))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, canvases.HandleSetViewport); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, canvases.HandleUpdateSettings); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, nodes.HandleCreate); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, nodes.HandleUpdate); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, nodes.HandleMove); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, nodes.HandleRename); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, nodes.HandleDelete); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, connectors.HandleCreate); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, connectors.HandleUpdate); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, connectors.HandleReroute); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, connectors.HandleRename); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, connectors.HandleDelete); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, history.HandleUndo); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, history.HandleRedo); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, history.HandleCommit); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, selection.HandleUpdate); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, selection.HandleClear); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, overlays.HandleApply); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, overlays.HandleApplyParsed); err != nil {
		return nil, err
	}
	if err := registerCommand(commandBus, pipeline, overlays.HandleClear); err != nil {
		return nil, err
	}

	if err := registerCommand(commandBus, pipeline, importer.Handle); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// registerQuery registers a typed handler, applying wraps in order so
// the last one runs outermost.
func registerQuery[T querybus.Query, R any](
	queryBus *querybus.QueryBus,
	handle func(ctx context.Context, query T) (R, error),
	wraps ...func(querybus.QueryHandler) querybus.QueryHandler,
) error {
	var zero T
	var handler querybus.QueryHandler = querybus.QueryHandlerFunc(func(ctx context.Context, query querybus.Query) (interface{}, error) {
		typed, ok := query.(T)
		if !ok {
			return nil, fmt.Errorf("invalid query type %T", query)
		}
		return handle(ctx, typed)
	})
	for _, wrap := range wraps {
		handler = wrap(handler)
	}
	if err := queryBus.Register(zero, handler); err != nil {
		return fmt.Errorf("register %T: %w", zero, err)
	}
	return nil
}

// ProvideQueryBus creates the query bus and registers every read the
// editor supports. Only the canvas snapshot query is cached; its key
// carries the session revision, so stale hits cannot outlive a write.
func ProvideQueryBus(
	store ports.CanvasStore,
	versions ports.VersionStore,
	logSource ports.LogSource,
	cache ports.Cache,
	metrics *observability.Metrics,
	cfg *config.Config,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus()

	canvasQueries := queryhandlers.NewCanvasQueryHandler(store, logger)
	versionQueries := queryhandlers.NewVersionQueryHandler(versions, logger)
	logQueries := queryhandlers.NewLogQueryHandler(logSource, logger)

	caching := querybus.NewCachingMiddleware(cache, cfg.CacheTTLSeconds)
	timed := querybus.NewMetricsMiddleware(queryMetricsAdapter{metrics: metrics})

	if err := registerQuery(queryBus, canvasQueries.HandleGetCanvas, caching.Wrap, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleListCanvases, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleGetNode, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleGetConnectors, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleHitTest, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleGetOverlays, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleGetHistoryStatus, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, canvasQueries.HandleExport, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, versionQueries.HandleList, timed.Wrap); err != nil {
		return nil, err
	}
	if err := registerQuery(queryBus, logQueries.HandleList, timed.Wrap); err != nil {
		return nil, err
	}

	return queryBus, nil
}

// zapLoggerAdapter exposes a zap logger through the bus logging
// interface, pairing keysAndValues into fields.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, fieldsToZap(keysAndValues)...)
}

func (a zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, fieldsToZap(keysAndValues)...)
}

func fieldsToZap(keysAndValues []interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

// queryMetricsAdapter narrows the metrics registry to the query bus
// interface; the registry's timer type satisfies it structurally.
type queryMetricsAdapter struct {
	metrics *observability.Metrics
}

func (a queryMetricsAdapter) StartTimer(metric, label string) querybus.Timer {
	return a.metrics.StartTimer(metric, label)
}

func (a queryMetricsAdapter) Increment(metric, label string) {
	a.metrics.Increment(metric, label)
}
