package gestures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "flowcanvas/pkg/errors"
)

func TestNodeDrag_BeginSelects(t *testing.T) {
	t.Run("makes the node the sole selection", func(t *testing.T) {
		canvas := newCanvas(t)
		addNode(t, canvas, "n1", 100, 100)
		addNode(t, canvas, "n2", 400, 300)
		require.NoError(t, canvas.SelectNode("n2", false))

		var drag NodeDrag
		require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))

		assert.True(t, drag.Active())
		assert.True(t, canvas.IsNodeSelected("n1"))
		assert.False(t, canvas.IsNodeSelected("n2"))
	})

	t.Run("missing node leaves the machine idle", func(t *testing.T) {
		canvas := newCanvas(t)

		var drag NodeDrag
		err := drag.Begin(canvas, "ghost", pt(0, 0))
		assert.ErrorIs(t, err, pkgerrors.ErrNodeNotFound)
		assert.False(t, drag.Active())
		assert.ErrorIs(t, drag.Move(canvas, pt(10, 10)), pkgerrors.ErrGestureNotActive)
	})

	t.Run("second begin while dragging is rejected", func(t *testing.T) {
		canvas := newCanvas(t)
		addNode(t, canvas, "n1", 100, 100)

		var drag NodeDrag
		require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
		assert.ErrorIs(t, drag.Begin(canvas, "n1", pt(150, 130)), pkgerrors.ErrGestureActive)
	})
}

func TestNodeDrag_MoveTracksTotalDisplacement(t *testing.T) {
	canvas := newCanvas(t)
	node := addNode(t, canvas, "n1", 100, 100)

	var drag NodeDrag
	require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))

	require.NoError(t, drag.Move(canvas, pt(180, 150)))
	assert.Equal(t, pt(130, 120), node.Position())

	// each move targets the recorded origins, so deltas never compound
	require.NoError(t, drag.Move(canvas, pt(160, 135)))
	assert.Equal(t, pt(110, 105), node.Position())

	require.NoError(t, drag.Move(canvas, pt(160, 135)))
	assert.Equal(t, pt(110, 105), node.Position())
}

func TestNodeDrag_CommitIsOneUndoStep(t *testing.T) {
	canvas := newCanvas(t)
	node := addNode(t, canvas, "n1", 100, 100)
	historyBefore := canvas.HistoryLength()

	var drag NodeDrag
	require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
	require.NoError(t, drag.Move(canvas, pt(200, 170)))
	require.NoError(t, drag.Move(canvas, pt(250, 210)))

	result, err := drag.End(canvas, pt(250, 210))
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.False(t, result.Deselected)
	assert.False(t, drag.Active())

	assert.Equal(t, pt(200, 180), node.Position())
	assert.Equal(t, historyBefore+1, canvas.HistoryLength())

	// the whole drag undoes in one step despite the intermediate moves
	require.NoError(t, canvas.Undo())
	restored, err := canvas.GetNode("n1")
	require.NoError(t, err)
	assert.Equal(t, pt(100, 100), restored.Position())
}

func TestNodeDrag_ClickDeselectsAlreadySelectedNode(t *testing.T) {
	canvas := newCanvas(t)
	node := addNode(t, canvas, "n1", 100, 100)
	require.NoError(t, canvas.SelectNode("n1", false))
	historyBefore := canvas.HistoryLength()

	var drag NodeDrag
	require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
	require.NoError(t, drag.Move(canvas, pt(151, 131)))

	result, err := drag.End(canvas, pt(151, 131))
	require.NoError(t, err)
	assert.True(t, result.Deselected)
	assert.False(t, result.Committed)
	assert.False(t, canvas.IsNodeSelected("n1"))

	// the sub-threshold jitter stays applied; clicks never roll back
	assert.Equal(t, pt(101, 101), node.Position())
	assert.Equal(t, historyBefore, canvas.HistoryLength())
}

func TestNodeDrag_ClickOnFreshlySelectedNodeCommits(t *testing.T) {
	canvas := newCanvas(t)
	addNode(t, canvas, "n1", 100, 100)
	historyBefore := canvas.HistoryLength()

	var drag NodeDrag
	require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))

	result, err := drag.End(canvas, pt(150, 130))
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.True(t, canvas.IsNodeSelected("n1"))
	assert.Equal(t, historyBefore+1, canvas.HistoryLength())
}

func TestNodeDrag_ClickThreshold(t *testing.T) {
	t.Run("displacement at the threshold still counts as a click", func(t *testing.T) {
		canvas := newCanvas(t)
		addNode(t, canvas, "n1", 100, 100)
		require.NoError(t, canvas.SelectNode("n1", false))

		var drag NodeDrag
		require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
		require.NoError(t, drag.Move(canvas, pt(150, 132)))

		result, err := drag.End(canvas, pt(150, 132))
		require.NoError(t, err)
		assert.True(t, result.Deselected)
	})

	t.Run("displacement past the threshold commits", func(t *testing.T) {
		canvas := newCanvas(t)
		addNode(t, canvas, "n1", 100, 100)
		require.NoError(t, canvas.SelectNode("n1", false))

		var drag NodeDrag
		require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
		require.NoError(t, drag.Move(canvas, pt(150, 133)))

		result, err := drag.End(canvas, pt(150, 133))
		require.NoError(t, err)
		assert.True(t, result.Committed)
		assert.True(t, canvas.IsNodeSelected("n1"))
	})

	t.Run("an excursion latches even when the pointer returns", func(t *testing.T) {
		canvas := newCanvas(t)
		node := addNode(t, canvas, "n1", 100, 100)
		require.NoError(t, canvas.SelectNode("n1", false))

		var drag NodeDrag
		require.NoError(t, drag.Begin(canvas, "n1", pt(150, 130)))
		require.NoError(t, drag.Move(canvas, pt(200, 130)))
		require.NoError(t, drag.Move(canvas, pt(150, 130)))

		result, err := drag.End(canvas, pt(150, 130))
		require.NoError(t, err)
		assert.True(t, result.Committed)
		assert.True(t, canvas.IsNodeSelected("n1"))
		assert.Equal(t, pt(100, 100), node.Position())
	})
}

func TestNodeDrag_EndWithoutBegin(t *testing.T) {
	canvas := newCanvas(t)
	addNode(t, canvas, "n1", 100, 100)

	var drag NodeDrag
	_, err := drag.End(canvas, pt(0, 0))
	assert.ErrorIs(t, err, pkgerrors.ErrGestureNotActive)
}
