package di

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/application/commands"
	"flowcanvas/application/queries"
	domaincfg "flowcanvas/domain/config"
	"flowcanvas/infrastructure/config"
	"flowcanvas/pkg/extensions"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:        ":0",
		Environment:          "development",
		GestureEventsPerSec:  120,
		GestureBurst:         240,
		CacheTTLSeconds:      30,
		LogStoreLimit:        50,
		MaxVersionsPerCanvas: 10,
	}
}

func TestInitializeContainer_WiresTheFullGraph(t *testing.T) {
	container, err := InitializeContainer(testConfig())
	require.NoError(t, err)
	defer container.Close()

	require.NotNil(t, container.Store)
	require.NotNil(t, container.CommandBus)
	require.NotNil(t, container.QueryBus)
	require.NotNil(t, container.Gestures)
	assert.Nil(t, container.LogWatcher, "no log file configured")
	assert.Nil(t, container.JWTValidator, "auth disabled")

	ctx := context.Background()
	canvas, err := container.Canvases.HandleCreate(ctx, commands.CreateCanvasCommand{Name: "Wired"})
	require.NoError(t, err)
	canvasID := canvas.ID().String()

	require.NoError(t, container.CommandBus.Send(ctx, commands.CreateNodeCommand{
		CanvasID: canvasID,
		NodeID:   "n1",
		Kind:     "rectangle",
		X:        40,
		Y:        40,
		Title:    "First",
	}))

	revision, err := container.Store.Revision(ctx, canvasID)
	require.NoError(t, err)

	result, err := container.QueryBus.Ask(ctx, queries.GetCanvasQuery{CanvasID: canvasID, Revision: revision})
	require.NoError(t, err)
	view, ok := result.(*queries.CanvasView)
	require.True(t, ok)
	assert.Equal(t, "Wired", view.Name)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, "n1", view.Nodes[0].ID)

	// The journal subscriber saw the bus traffic.
	saved, err := container.EventStore.GetEvents(ctx, canvasID)
	require.NoError(t, err)
	assert.NotEmpty(t, saved)
}

func TestInitializeContainer_DeleteFiresHookAndReleasesGestures(t *testing.T) {
	container, err := InitializeContainer(testConfig())
	require.NoError(t, err)
	defer container.Close()

	var deleted []string
	container.Hooks.Register(extensions.HookCanvasDeleted, func(ctx context.Context, data interface{}) error {
		id, ok := data.(string)
		require.True(t, ok)
		deleted = append(deleted, id)
		return nil
	})

	ctx := context.Background()
	canvas, err := container.Canvases.HandleCreate(ctx, commands.CreateCanvasCommand{Name: "Doomed"})
	require.NoError(t, err)
	canvasID := canvas.ID().String()

	require.NoError(t, container.CommandBus.Send(ctx, commands.DeleteCanvasCommand{CanvasID: canvasID}))
	assert.Equal(t, []string{canvasID}, deleted)

	_, err = container.Store.Revision(ctx, canvasID)
	assert.Error(t, err)
}

func TestInitializeContainer_RejectsUnknownLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "production"
	cfg.LogLevel = "loud"

	_, err := InitializeContainer(cfg)
	assert.Error(t, err)
}

func TestProvideDomainConfig_MergesOverrides(t *testing.T) {
	defaults := domaincfg.DefaultDomainConfig()

	cfg := testConfig()
	cfg.HistoryLimit = 7
	cfg.MaxNodes = 100

	merged := ProvideDomainConfig(cfg)
	assert.Equal(t, 7, merged.HistoryLimit)
	assert.Equal(t, 100, merged.MaxNodesPerCanvas)
	// Unset overrides keep the defaults.
	assert.Equal(t, defaults.MaxConnectorsPerCanvas, merged.MaxConnectorsPerCanvas)
}

func TestProvideJWTValidator_DisabledMeansNil(t *testing.T) {
	validator, err := ProvideJWTValidator(testConfig())
	require.NoError(t, err)
	assert.Nil(t, validator)

	cfg := testConfig()
	cfg.AuthEnabled = true
	cfg.JWTSecret = "test-secret-key-32-bytes-long!!!"
	validator, err = ProvideJWTValidator(cfg)
	require.NoError(t, err)
	assert.NotNil(t, validator)
}
