package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

func newTestNode(t *testing.T, id string) *Node {
	t.Helper()
	node, err := NewNode(
		id,
		valueobjects.NodeKindRectangle,
		valueobjects.Position{X: 100, Y: 100},
		valueobjects.Size{Width: 120, Height: 60},
		"Test Node",
	)
	require.NoError(t, err)
	return node
}

func TestNewNode(t *testing.T) {
	t.Run("creates node with defaults", func(t *testing.T) {
		node := newTestNode(t, "n1")

		assert.Equal(t, "n1", node.ID())
		assert.Equal(t, valueobjects.NodeKindRectangle, node.Kind())
		assert.Equal(t, "Test Node", node.Title())
		assert.False(t, node.Selected())
		assert.Equal(t, 1, node.Version())
	})

	t.Run("empty kind falls back to rectangle", func(t *testing.T) {
		node, err := NewNode("n1", "", valueobjects.Position{X: 0, Y: 0}, valueobjects.Size{Width: 10, Height: 10}, "")
		require.NoError(t, err)
		assert.Equal(t, valueobjects.NodeKindRectangle, node.Kind())
	})

	t.Run("rejects empty id", func(t *testing.T) {
		_, err := NewNode("", valueobjects.NodeKindRectangle, valueobjects.Position{}, valueobjects.Size{Width: 10, Height: 10}, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewNode("n1", "hexagon", valueobjects.Position{}, valueobjects.Size{Width: 10, Height: 10}, "")
		assert.Error(t, err)
	})

	t.Run("rejects non-positive size", func(t *testing.T) {
		_, err := NewNode("n1", valueobjects.NodeKindRectangle, valueobjects.Position{}, valueobjects.Size{Width: 0, Height: 10}, "")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidNodeSize)
	})
}

func TestNode_MoveTo(t *testing.T) {
	node := newTestNode(t, "n1")

	err := node.MoveTo(valueobjects.Position{X: 250, Y: 300})
	require.NoError(t, err)
	assert.Equal(t, valueobjects.Position{X: 250, Y: 300}, node.Position())
	assert.Equal(t, 2, node.Version())

	// Moving to the same position is a no-op
	err = node.MoveTo(valueobjects.Position{X: 250, Y: 300})
	require.NoError(t, err)
	assert.Equal(t, 2, node.Version())
}

func TestNode_Resize(t *testing.T) {
	node := newTestNode(t, "n1")

	require.NoError(t, node.Resize(valueobjects.Size{Width: 200, Height: 80}))
	assert.Equal(t, valueobjects.Size{Width: 200, Height: 80}, node.Size())

	err := node.Resize(valueobjects.Size{Width: -5, Height: 80})
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidNodeSize)
	assert.Equal(t, valueobjects.Size{Width: 200, Height: 80}, node.Size(), "failed resize must not mutate")
}

func TestNode_Center(t *testing.T) {
	node := newTestNode(t, "n1")
	center := node.Center()
	assert.InDelta(t, 160.0, center.X, 1e-9)
	assert.InDelta(t, 130.0, center.Y, 1e-9)
}

func TestNode_UpdateFields(t *testing.T) {
	node := newTestNode(t, "n1")

	node.UpdateTitle("Renamed")
	node.UpdateDescription("does things")
	node.UpdateColor("#ff0000")
	require.NoError(t, node.UpdateKind(valueobjects.NodeKindDiamond))

	assert.Equal(t, "Renamed", node.Title())
	assert.Equal(t, "does things", node.Description())
	assert.Equal(t, "#ff0000", node.Color())
	assert.Equal(t, valueobjects.NodeKindDiamond, node.Kind())
}

func TestNode_Metadata(t *testing.T) {
	node := newTestNode(t, "n1")

	require.NoError(t, node.SetMetadata("owner", "team-a"))

	meta := node.Metadata()
	assert.Equal(t, "team-a", meta["owner"])

	// Mutating the returned map must not leak into the node
	meta["owner"] = "hijacked"
	assert.Equal(t, "team-a", node.Metadata()["owner"])
}

func TestNode_Rename(t *testing.T) {
	node := newTestNode(t, "n1")

	require.NoError(t, node.Rename("n2"))
	assert.Equal(t, "n2", node.ID())

	assert.Error(t, node.Rename(""))
}

func TestNode_Clone(t *testing.T) {
	node := newTestNode(t, "n1")
	node.Select()
	require.NoError(t, node.SetMetadata("k", "v"))

	clone := node.Clone()

	assert.Equal(t, node.ID(), clone.ID())
	assert.Equal(t, node.Position(), clone.Position())
	assert.True(t, clone.Selected())

	// Clone is independent
	require.NoError(t, clone.MoveTo(valueobjects.Position{X: 999, Y: 999}))
	require.NoError(t, clone.SetMetadata("k", "changed"))
	assert.Equal(t, valueobjects.Position{X: 100, Y: 100}, node.Position())
	assert.Equal(t, "v", node.Metadata()["k"])
}

func TestNode_JSONRoundTrip(t *testing.T) {
	node := newTestNode(t, "n1")
	node.UpdateColor("#3b82f6")
	node.Select()
	require.NoError(t, node.SetMetadata("layer", "infra"))

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var restored Node
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, "n1", restored.ID())
	assert.Equal(t, node.Kind(), restored.Kind())
	assert.Equal(t, node.Position(), restored.Position())
	assert.Equal(t, node.Size(), restored.Size())
	assert.Equal(t, node.Title(), restored.Title())
	assert.Equal(t, node.Color(), restored.Color())
	assert.True(t, restored.Selected())
	assert.Equal(t, "infra", restored.Metadata()["layer"])
}

func TestNode_JSONUsesCamelCaseKeys(t *testing.T) {
	node := newTestNode(t, "n1")

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Contains(t, doc, "id")
	assert.Contains(t, doc, "position")
	assert.Contains(t, doc, "size")
	assert.NotContains(t, doc, "created_at")
}
