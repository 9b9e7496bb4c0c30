package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/domain/versioning"
	pkgerrors "flowcanvas/pkg/errors"
)

func checkpoint(canvasID string, version int) *versioning.CanvasVersion {
	return &versioning.CanvasVersion{
		CanvasID:  canvasID,
		Version:   version,
		Document:  json.RawMessage(`{"nodes":[],"connectors":[]}`),
		CreatedAt: time.Now(),
	}
}

func TestVersionStore_SaveListGet(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore()

	require.NoError(t, store.Save(ctx, checkpoint("canvas-1", 2)))
	require.NoError(t, store.Save(ctx, checkpoint("canvas-1", 1)))
	require.NoError(t, store.Save(ctx, checkpoint("canvas-1", 3)))
	require.NoError(t, store.Save(ctx, checkpoint("canvas-2", 1)))

	listed, err := store.List(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, 1, listed[0].Version)
	assert.Equal(t, 2, listed[1].Version)
	assert.Equal(t, 3, listed[2].Version)

	got, err := store.Get(ctx, "canvas-1", 2)
	require.NoError(t, err)
	assert.Equal(t, "canvas-1", got.CanvasID)
	assert.Equal(t, 2, got.Version)
}

func TestVersionStore_SaveReplacesSameVersion(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore()

	require.NoError(t, store.Save(ctx, checkpoint("canvas-1", 1)))

	replacement := checkpoint("canvas-1", 1)
	replacement.Description = "replaced"
	require.NoError(t, store.Save(ctx, replacement))

	listed, err := store.List(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "replaced", listed[0].Description)
}

func TestVersionStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore()

	_, err := store.Get(ctx, "canvas-1", 1)
	assert.ErrorIs(t, err, pkgerrors.ErrVersionNotFound)

	require.NoError(t, store.Save(ctx, checkpoint("canvas-1", 1)))
	_, err = store.Get(ctx, "canvas-1", 9)
	assert.ErrorIs(t, err, pkgerrors.ErrVersionNotFound)
}

func TestVersionStore_SaveNil(t *testing.T) {
	store := NewVersionStore()
	assert.Error(t, store.Save(context.Background(), nil))
}

func TestVersionStore_Prune(t *testing.T) {
	ctx := context.Background()
	store := NewVersionStore()

	for v := 1; v <= 5; v++ {
		require.NoError(t, store.Save(ctx, checkpoint("canvas-1", v)))
	}

	require.NoError(t, store.Prune(ctx, "canvas-1", 2))

	listed, err := store.List(ctx, "canvas-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 4, listed[0].Version)
	assert.Equal(t, 5, listed[1].Version)

	// Pruning below the current count is a no-op
	require.NoError(t, store.Prune(ctx, "canvas-1", 10))
	listed, err = store.List(ctx, "canvas-1")
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	require.NoError(t, store.Prune(ctx, "canvas-1", 0))
	listed, err = store.List(ctx, "canvas-1")
	require.NoError(t, err)
	assert.Empty(t, listed)
}
