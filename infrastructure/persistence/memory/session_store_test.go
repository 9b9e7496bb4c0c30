package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowcanvas/domain/config"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

func newStore(t *testing.T) *SessionStore {
	t.Helper()
	return NewSessionStore(config.DefaultDomainConfig(), zap.NewNop())
}

func TestSessionStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	first, err := store.Create(ctx, "First Canvas")
	require.NoError(t, err)
	second, err := store.Create(ctx, "Second Canvas")
	require.NoError(t, err)

	require.NoError(t, store.Acquire(ctx, second.ID().String(), func(c *aggregates.Canvas) error {
		_, err := c.CreateNode("n1", valueobjects.NodeKindRectangle,
			valueobjects.Position{X: 10, Y: 10}, valueobjects.Size{Width: 120, Height: 60}, "n1")
		return err
	}))

	summaries, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, first.ID().String(), summaries[0].ID)
	assert.Equal(t, "First Canvas", summaries[0].Name)
	assert.Equal(t, 0, summaries[0].NodeCount)
	assert.Equal(t, uint64(0), summaries[0].Revision)

	assert.Equal(t, second.ID().String(), summaries[1].ID)
	assert.Equal(t, 1, summaries[1].NodeCount)
	assert.Equal(t, uint64(1), summaries[1].Revision)
}

func TestSessionStore_RevisionTracksSuccessfulWrites(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	canvas, err := store.Create(ctx, "Canvas")
	require.NoError(t, err)
	id := canvas.ID().String()

	rev, err := store.Revision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rev)

	require.NoError(t, store.Acquire(ctx, id, func(c *aggregates.Canvas) error {
		_, err := c.CreateNode("n1", valueobjects.NodeKindRectangle,
			valueobjects.Position{X: 10, Y: 10}, valueobjects.Size{Width: 120, Height: 60}, "n1")
		return err
	}))

	rev, err = store.Revision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	// A failed closure leaves the counter alone
	failed := errors.New("rejected")
	err = store.Acquire(ctx, id, func(c *aggregates.Canvas) error { return failed })
	assert.ErrorIs(t, err, failed)

	rev, err = store.Revision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)

	// Reads never bump it
	require.NoError(t, store.AcquireRead(ctx, id, func(c *aggregates.Canvas) error {
		assert.Equal(t, 1, c.NodeCount())
		return nil
	}))

	rev, err = store.Revision(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rev)
}

func TestSessionStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	canvas, err := store.Create(ctx, "Canvas")
	require.NoError(t, err)
	id := canvas.ID().String()

	require.NoError(t, store.Delete(ctx, id))

	err = store.Acquire(ctx, id, func(c *aggregates.Canvas) error { return nil })
	assert.ErrorIs(t, err, pkgerrors.ErrCanvasNotFound)

	err = store.Delete(ctx, id)
	assert.ErrorIs(t, err, pkgerrors.ErrCanvasNotFound)
}

func TestSessionStore_MissingCanvas(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	err := store.Acquire(ctx, "nope", func(c *aggregates.Canvas) error { return nil })
	assert.ErrorIs(t, err, pkgerrors.ErrCanvasNotFound)

	err = store.AcquireRead(ctx, "nope", func(c *aggregates.Canvas) error { return nil })
	assert.ErrorIs(t, err, pkgerrors.ErrCanvasNotFound)

	_, err = store.Revision(ctx, "nope")
	assert.ErrorIs(t, err, pkgerrors.ErrCanvasNotFound)
}
