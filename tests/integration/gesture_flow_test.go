package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/application/queries"
	"flowcanvas/interfaces/http/rest/handlers"
)

func TestNodeDragOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Drag")
	gestures := "/api/v2/canvases/" + canvasID + "/gestures"

	api.createNode(canvasID, "n1", 100, 100)

	w := api.do("POST", gestures+"/node-drag/start", map[string]interface{}{
		"x": 150.0, "y": 130.0, "node_id": "n1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state handlers.GestureStateResponse
	api.decode(w, &state)
	assert.Equal(t, "node-drag", state.Kind)
	assert.True(t, state.Active)

	w = api.do("POST", gestures+"/node-drag/move", map[string]interface{}{"x": 250.0, "y": 180.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do("POST", gestures+"/node-drag/end", map[string]interface{}{"x": 250.0, "y": 180.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome handlers.GestureEndResponse
	api.decode(w, &outcome)
	assert.Equal(t, "node-drag", outcome.Kind)
	require.NotNil(t, outcome.NodeDrag)
	assert.True(t, outcome.NodeDrag.Committed)

	// the pointer moved +100/+50 from the grab point
	view := api.getCanvas(canvasID)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, 200.0, view.Nodes[0].X)
	assert.Equal(t, 150.0, view.Nodes[0].Y)

	// a committed drag is one undo step
	w = api.do("POST", "/api/v2/canvases/"+canvasID+"/history/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view = api.getCanvas(canvasID)
	assert.Equal(t, 100.0, view.Nodes[0].X)

	t.Run("ending without a gesture is a 422", func(t *testing.T) {
		w := api.do("POST", gestures+"/node-drag/end", map[string]interface{}{"x": 0.0, "y": 0.0})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}

func TestGestureKindMismatch(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Mismatch")
	gestures := "/api/v2/canvases/" + canvasID + "/gestures"

	api.createNode(canvasID, "n1", 100, 100)

	w := api.do("POST", gestures+"/node-drag/start", map[string]interface{}{
		"x": 150.0, "y": 130.0, "node_id": "n1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the URL names a different gesture than the active one
	w = api.do("POST", gestures+"/connect/move", map[string]interface{}{"x": 200.0, "y": 200.0})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// a second start while one is running is also a conflict
	w = api.do("POST", gestures+"/connect/start", map[string]interface{}{
		"x": 150.0, "y": 130.0, "node_id": "n1",
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// the original gesture still resolves
	w = api.do("POST", gestures+"/node-drag/end", map[string]interface{}{"x": 150.0, "y": 130.0})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestConnectGestureOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Connect")
	base := "/api/v2/canvases/" + canvasID
	gestures := base + "/gestures"

	api.createNode(canvasID, "n1", 100, 100)
	api.createNode(canvasID, "n2", 400, 300)

	w := api.do("POST", gestures+"/connect/start", map[string]interface{}{
		"x": 225.0, "y": 115.0, "node_id": "n1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do("POST", gestures+"/connect/move", map[string]interface{}{"x": 300.0, "y": 200.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state handlers.GestureStateResponse
	api.decode(w, &state)
	require.NotNil(t, state.Preview, "a pending connection draws a rubber band")
	assert.Equal(t, 225.0, state.Preview.FromX)
	assert.Equal(t, 115.0, state.Preview.FromY)
	assert.Equal(t, 300.0, state.Preview.ToX)
	assert.Equal(t, 200.0, state.Preview.ToY)

	// drop inside n2
	w = api.do("POST", gestures+"/connect/end", map[string]interface{}{"x": 448.0, "y": 312.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var outcome handlers.GestureEndResponse
	api.decode(w, &outcome)
	require.NotNil(t, outcome.Connect)
	assert.True(t, outcome.Connect.Created)
	assert.NotEmpty(t, outcome.Connect.ConnectorID)

	w = api.do("GET", base+"/connectors", nil)
	var connectors []queries.ConnectorView
	api.decode(w, &connectors)
	require.Len(t, connectors, 1)
	assert.Equal(t, "n1", connectors[0].Start.NodeID)
	assert.Equal(t, "n2", connectors[0].End.NodeID)

	t.Run("dropping on empty canvas creates nothing", func(t *testing.T) {
		w := api.do("POST", gestures+"/connect/start", map[string]interface{}{
			"x": 225.0, "y": 115.0, "node_id": "n1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do("POST", gestures+"/connect/end", map[string]interface{}{"x": 900.0, "y": 900.0})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var outcome handlers.GestureEndResponse
		api.decode(w, &outcome)
		require.NotNil(t, outcome.Connect)
		assert.False(t, outcome.Connect.Created)

		w = api.do("GET", base+"/connectors", nil)
		var connectors []queries.ConnectorView
		api.decode(w, &connectors)
		assert.Len(t, connectors, 1, "still only the first connector")
	})
}

func TestCancelConnectionOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Cancel")
	gestures := "/api/v2/canvases/" + canvasID + "/gestures"

	api.createNode(canvasID, "n1", 100, 100)

	w := api.do("POST", gestures+"/connect/start", map[string]interface{}{
		"x": 225.0, "y": 115.0, "node_id": "n1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// drags cannot be cancelled, only connections
	w = api.do("POST", gestures+"/node-drag/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = api.do("POST", gestures+"/connect/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var state handlers.GestureStateResponse
	api.decode(w, &state)
	assert.False(t, state.Active)

	// nothing is in progress afterwards
	w = api.do("POST", gestures+"/connect/move", map[string]interface{}{"x": 1.0, "y": 1.0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestEndpointDragOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Rewire")
	base := "/api/v2/canvases/" + canvasID
	gestures := base + "/gestures"

	api.createNode(canvasID, "n1", 100, 100)
	api.createNode(canvasID, "n2", 400, 300)
	api.createNode(canvasID, "n3", 700, 500)

	w := api.do("POST", base+"/connectors", map[string]interface{}{
		"connector_id":  "c1",
		"start_node_id": "n1",
		"end_node_id":   "n2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("dropping an endpoint on a node reattaches it", func(t *testing.T) {
		w := api.do("POST", gestures+"/endpoint-drag/start", map[string]interface{}{
			"x": 400.0, "y": 330.0, "connector_id": "c1", "end": "end",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = api.do("POST", gestures+"/endpoint-drag/move", map[string]interface{}{"x": 600.0, "y": 450.0})
		require.Equal(t, http.StatusOK, w.Code)

		w = api.do("POST", gestures+"/endpoint-drag/end", map[string]interface{}{"x": 760.0, "y": 530.0})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var outcome handlers.GestureEndResponse
		api.decode(w, &outcome)
		require.NotNil(t, outcome.EndpointDrag)
		assert.True(t, outcome.EndpointDrag.Reattached)
		assert.Equal(t, "n3", outcome.EndpointDrag.NodeID)

		var connectors []queries.ConnectorView
		w = api.do("GET", base+"/connectors", nil)
		api.decode(w, &connectors)
		require.Len(t, connectors, 1)
		assert.Equal(t, "n3", connectors[0].End.NodeID)
	})

	t.Run("dropping an endpoint on empty canvas deletes the connector", func(t *testing.T) {
		w := api.do("POST", gestures+"/endpoint-drag/start", map[string]interface{}{
			"x": 760.0, "y": 530.0, "connector_id": "c1", "end": "end",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = api.do("POST", gestures+"/endpoint-drag/end", map[string]interface{}{"x": 50.0, "y": 700.0})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var outcome handlers.GestureEndResponse
		api.decode(w, &outcome)
		require.NotNil(t, outcome.EndpointDrag)
		assert.True(t, outcome.EndpointDrag.Deleted)

		var connectors []queries.ConnectorView
		w = api.do("GET", base+"/connectors", nil)
		api.decode(w, &connectors)
		assert.Empty(t, connectors)
	})

	t.Run("start needs the connector id and end", func(t *testing.T) {
		w := api.do("POST", gestures+"/endpoint-drag/start", map[string]interface{}{
			"x": 0.0, "y": 0.0, "connector_id": "c9",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})
}
