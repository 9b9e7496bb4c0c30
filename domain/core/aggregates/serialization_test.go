package aggregates

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
)

func TestCanvas_JSONRoundTrip(t *testing.T) {
	canvas := newTestCanvas(t)
	for i := 0; i < 5; i++ {
		mustCreateNode(t, canvas, fmt.Sprintf("n%d", i), float64(i*150), float64(i*80), 120, 60)
	}
	offset := 0.3
	for i := 0; i < 4; i++ {
		_, err := canvas.CreateConnector(
			fmt.Sprintf("c%d", i),
			fmt.Sprintf("n%d", i),
			fmt.Sprintf("n%d", i+1),
			ConnectorOptions{StartOffset: &offset, Label: fmt.Sprintf("step %d", i)},
		)
		require.NoError(t, err)
	}
	require.NoError(t, canvas.SetViewport(valueobjects.Viewport{OffsetX: -40, OffsetY: 25, Zoom: 1.5}))

	data, err := canvas.ToJSON()
	require.NoError(t, err)

	restored := newTestCanvas(t)
	require.NoError(t, restored.FromJSON(data))

	assert.Equal(t, canvas.NodeCount(), restored.NodeCount())
	assert.Equal(t, canvas.ConnectorCount(), restored.ConnectorCount())
	assert.Equal(t, canvas.Viewport(), restored.Viewport())

	for _, want := range canvas.GetAllNodes() {
		got, err := restored.GetNode(want.ID())
		require.NoError(t, err)
		assert.Equal(t, want.Position(), got.Position())
		assert.Equal(t, want.Size(), got.Size())
		assert.Equal(t, want.Kind(), got.Kind())
		assert.Equal(t, want.Title(), got.Title())
	}
	for _, want := range canvas.GetAllConnectors() {
		got, err := restored.GetConnector(want.ID())
		require.NoError(t, err)
		assert.Equal(t, want.StartPoint().NodeID(), got.StartPoint().NodeID())
		assert.Equal(t, want.EndPoint().NodeID(), got.EndPoint().NodeID())
		assert.Equal(t, want.StartPoint().Side(), got.StartPoint().Side())
		assert.Equal(t, want.StartPoint().Offset(), got.StartPoint().Offset())
		assert.Equal(t, want.Label(), got.Label())
	}
}

func TestCanvas_ToJSON_PairLayout(t *testing.T) {
	canvas := newTestCanvas(t)
	mustCreateNode(t, canvas, "beta", 0, 0, 10, 10)
	mustCreateNode(t, canvas, "alpha", 50, 0, 10, 10)

	data, err := canvas.ToJSON()
	require.NoError(t, err)

	var doc struct {
		Nodes [][]json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Nodes, 2)

	// Pairs preserve insertion order, not lexical order
	var first, second string
	require.NoError(t, json.Unmarshal(doc.Nodes[0][0], &first))
	require.NoError(t, json.Unmarshal(doc.Nodes[1][0], &second))
	assert.Equal(t, "beta", first)
	assert.Equal(t, "alpha", second)
}

func TestCanvas_FromJSON(t *testing.T) {
	t.Run("replaces existing state", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "old", 0, 0, 10, 10)

		donor := newTestCanvas(t)
		mustCreateNode(t, donor, "new", 10, 10, 20, 20)
		data, err := donor.ToJSON()
		require.NoError(t, err)

		require.NoError(t, canvas.FromJSON(data))
		assert.False(t, canvas.HasNode("old"))
		assert.True(t, canvas.HasNode("new"))
	})

	t.Run("clears selection and pushes a fresh baseline", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "old", 0, 0, 10, 10)
		require.NoError(t, canvas.SelectNode("old", false))

		donor := newTestCanvas(t)
		mustCreateNode(t, donor, "new", 10, 10, 20, 20)
		data, err := donor.ToJSON()
		require.NoError(t, err)

		require.NoError(t, canvas.FromJSON(data))
		assert.Empty(t, canvas.SelectedNodeIDs())

		// Undo steps back to the pre-import state
		require.NoError(t, canvas.Undo())
		assert.True(t, canvas.HasNode("old"))
		require.NoError(t, canvas.Redo())
		assert.True(t, canvas.HasNode("new"))
	})

	t.Run("overlays survive the import", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "old", 0, 0, 10, 10)
		canvas.ApplyLogActions([]valueobjects.LogAction{
			mustLogAction(t, []string{"old"}, valueobjects.ActionHighlight, "success", "", ""),
		})

		donor := newTestCanvas(t)
		data, err := donor.ToJSON()
		require.NoError(t, err)

		require.NoError(t, canvas.FromJSON(data))
		assert.Contains(t, canvas.LogHighlights(), "old")
	})

	t.Run("pair key wins over the embedded id", func(t *testing.T) {
		canvas := newTestCanvas(t)
		doc := `{"nodes":[["outer",{"id":"inner","kind":"rectangle","position":{"x":1,"y":2},"size":{"width":10,"height":10},"title":""}]],"connectors":[]}`

		require.NoError(t, canvas.FromJSON([]byte(doc)))
		assert.True(t, canvas.HasNode("outer"))
		assert.False(t, canvas.HasNode("inner"))
	})

	t.Run("duplicate pair keys keep the last value in the first slot", func(t *testing.T) {
		canvas := newTestCanvas(t)
		doc := `{"nodes":[
			["dup",{"id":"dup","kind":"rectangle","position":{"x":1,"y":1},"size":{"width":10,"height":10},"title":"first"}],
			["other",{"id":"other","kind":"rectangle","position":{"x":9,"y":9},"size":{"width":10,"height":10},"title":""}],
			["dup",{"id":"dup","kind":"circle","position":{"x":2,"y":2},"size":{"width":10,"height":10},"title":"second"}]
		],"connectors":[]}`

		require.NoError(t, canvas.FromJSON([]byte(doc)))
		assert.Equal(t, 2, canvas.NodeCount())

		node, err := canvas.GetNode("dup")
		require.NoError(t, err)
		assert.Equal(t, "second", node.Title())
		assert.Equal(t, valueobjects.NodeKindCircle, node.Kind())

		// The duplicate keeps its original order slot
		assert.Equal(t, "dup", canvas.GetAllNodes()[0].ID())
	})

	t.Run("dangling connector endpoint rejects the whole document", func(t *testing.T) {
		canvas := newTestCanvas(t)
		mustCreateNode(t, canvas, "keep", 0, 0, 10, 10)

		doc := `{"nodes":[["n1",{"id":"n1","kind":"rectangle","position":{"x":0,"y":0},"size":{"width":10,"height":10},"title":""}]],
			"connectors":[["c1",{"id":"c1","kind":"straight","startPoint":{"nodeId":"n1","side":"right","offset":0.5},"endPoint":{"nodeId":"ghost","side":"left","offset":0.5}}]]}`

		err := canvas.FromJSON([]byte(doc))
		assert.ErrorIs(t, err, pkgerrors.ErrDanglingEndpoint)

		// All-or-nothing: prior state is untouched
		assert.True(t, canvas.HasNode("keep"))
		assert.False(t, canvas.HasNode("n1"))
	})

	t.Run("malformed pair shape is rejected", func(t *testing.T) {
		canvas := newTestCanvas(t)

		for _, doc := range []string{
			`{"nodes":[["lonely"]],"connectors":[]}`,
			`{"nodes":[[42,{"id":"n1"}]],"connectors":[]}`,
			`{"nodes":[["",{"id":"n1"}]],"connectors":[]}`,
			`{"nodes":"nope","connectors":[]}`,
		} {
			err := canvas.FromJSON([]byte(doc))
			assert.Error(t, err, doc)
			assert.Zero(t, canvas.NodeCount())
		}
	})

	t.Run("missing viewport and settings fall back to defaults", func(t *testing.T) {
		canvas := newTestCanvas(t)
		require.NoError(t, canvas.SetViewport(valueobjects.Viewport{OffsetX: 5, OffsetY: 5, Zoom: 3}))

		require.NoError(t, canvas.FromJSON([]byte(`{"nodes":[],"connectors":[]}`)))
		assert.Equal(t, valueobjects.DefaultViewport(), canvas.Viewport())
		assert.Equal(t, valueobjects.DefaultCanvasSettings(), canvas.Settings())
	})

	t.Run("imported endpoint positions are recomputed", func(t *testing.T) {
		canvas := newTestCanvas(t)
		doc := `{"nodes":[
			["n1",{"id":"n1","kind":"rectangle","position":{"x":100,"y":100},"size":{"width":120,"height":60},"title":""}],
			["n2",{"id":"n2","kind":"rectangle","position":{"x":300,"y":200},"size":{"width":120,"height":60},"title":""}]
		],"connectors":[
			["c1",{"id":"c1","kind":"straight","startPoint":{"nodeId":"n1","side":"left","offset":0.5},"endPoint":{"nodeId":"n2","side":"right","offset":0.5}}]
		]}`

		require.NoError(t, canvas.FromJSON([]byte(doc)))
		conn, err := canvas.GetConnector("c1")
		require.NoError(t, err)
		assert.Equal(t, valueobjects.Position{X: 100, Y: 130}, conn.StartPoint().AbsolutePosition())
		assert.Equal(t, valueobjects.Position{X: 420, Y: 230}, conn.EndPoint().AbsolutePosition())
	})
}
