package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
	"flowcanvas/infrastructure/config"
	"flowcanvas/infrastructure/di"
	"flowcanvas/interfaces/http/rest"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:        ":0",
		Environment:          "development",
		GestureEventsPerSec:  500,
		GestureBurst:         1000,
		CacheTTLSeconds:      30,
		LogStoreLimit:        100,
		MaxVersionsPerCanvas: 10,
	}
}

// testAPI drives the real router backed by a real container; only the
// listener is missing.
type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	container, err := di.InitializeContainer(testConfig())
	require.NoError(t, err)

	router := rest.NewRouter(rest.Deps{
		Config:         container.Config,
		CommandBus:     container.CommandBus,
		QueryBus:       container.QueryBus,
		Canvases:       container.Canvases,
		Gestures:       container.Gestures,
		Store:          container.Store,
		LogStore:       container.LogStore,
		GestureLimiter: container.GestureLimiter,
		JWTValidator:   container.JWTValidator,
		Logger:         container.Logger,
	})
	t.Cleanup(func() {
		router.Close()
		container.Close()
	})

	return &testAPI{t: t, handler: router.Setup()}
}

func (api *testAPI) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	api.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(api.t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	return w
}

func (api *testAPI) doRaw(method, path string, body []byte) *httptest.ResponseRecorder {
	api.t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	return w
}

// decode unwraps the response envelope into out
func (api *testAPI) decode(w *httptest.ResponseRecorder, out interface{}) {
	api.t.Helper()
	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(api.t, json.Unmarshal(w.Body.Bytes(), &envelope), "body: %s", w.Body.String())
	require.True(api.t, envelope.Success, "body: %s", w.Body.String())
	if out != nil {
		require.NoError(api.t, json.Unmarshal(envelope.Data, out))
	}
}

func (api *testAPI) createCanvas(name string) string {
	api.t.Helper()
	w := api.do("POST", "/api/v2/canvases", map[string]string{"name": name})
	require.Equal(api.t, http.StatusCreated, w.Code, w.Body.String())
	var view queries.CanvasView
	api.decode(w, &view)
	require.NotEmpty(api.t, view.ID)
	return view.ID
}

func (api *testAPI) createNode(canvasID, nodeID string, x, y float64) {
	api.t.Helper()
	w := api.do("POST", "/api/v2/canvases/"+canvasID+"/nodes", map[string]interface{}{
		"node_id": nodeID,
		"kind":    "rectangle",
		"x":       x,
		"y":       y,
		"title":   nodeID,
	})
	require.Equal(api.t, http.StatusCreated, w.Code, w.Body.String())
}

func (api *testAPI) getCanvas(canvasID string) queries.CanvasView {
	api.t.Helper()
	w := api.do("GET", "/api/v2/canvases/"+canvasID, nil)
	require.Equal(api.t, http.StatusOK, w.Code, w.Body.String())
	var view queries.CanvasView
	api.decode(w, &view)
	return view
}

func TestCanvasLifecycle(t *testing.T) {
	api := newTestAPI(t)

	canvasID := api.createCanvas("Deploy Pipeline")

	w := api.do("GET", "/api/v2/canvases", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []ports.CanvasSummary
	api.decode(w, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, canvasID, summaries[0].ID)
	assert.Equal(t, "Deploy Pipeline", summaries[0].Name)

	w = api.do("PATCH", "/api/v2/canvases/"+canvasID, map[string]interface{}{
		"name": "Release Pipeline",
		"viewport": map[string]interface{}{
			"offset_x": 50.0,
			"offset_y": 25.0,
			"zoom":     1.5,
		},
		"settings": map[string]interface{}{
			"snap_to_grid": true,
			"grid_size":    10.0,
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view queries.CanvasView
	api.decode(w, &view)
	assert.Equal(t, "Release Pipeline", view.Name)
	assert.Equal(t, 1.5, view.Viewport.Zoom)
	assert.True(t, view.Settings.SnapToGrid)
	assert.Equal(t, 10.0, view.Settings.GridSize)

	w = api.do("DELETE", "/api/v2/canvases/"+canvasID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do("GET", "/api/v2/canvases/"+canvasID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNodeAndConnectorEditing(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Editing")
	base := "/api/v2/canvases/" + canvasID

	api.createNode(canvasID, "n1", 100, 100)
	api.createNode(canvasID, "n2", 400, 300)

	w := api.do("GET", base+"/nodes/n1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var node queries.NodeView
	api.decode(w, &node)
	assert.Equal(t, "n1", node.ID)
	assert.Equal(t, 100.0, node.X)
	assert.Equal(t, 120.0, node.Width, "default size applies")

	// appearance change and move in one PATCH
	w = api.do("PATCH", base+"/nodes/n1", map[string]interface{}{
		"title": "Build",
		"color": "#ff8800",
		"x":     140.0,
		"y":     160.0,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	api.decode(w, &node)
	assert.Equal(t, "Build", node.Title)
	assert.Equal(t, 140.0, node.X)
	assert.Equal(t, 160.0, node.Y)

	w = api.do("POST", base+"/connectors", map[string]interface{}{
		"connector_id":  "c1",
		"start_node_id": "n1",
		"end_node_id":   "n2",
		"kind":          "curved",
		"label":         "on success",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = api.do("GET", base+"/connectors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var connectors []queries.ConnectorView
	api.decode(w, &connectors)
	require.Len(t, connectors, 1)
	assert.Equal(t, "c1", connectors[0].ID)
	assert.Equal(t, "curved", connectors[0].Kind)
	assert.Equal(t, "n1", connectors[0].Start.NodeID)
	assert.Equal(t, "n2", connectors[0].End.NodeID)

	// filtering by node returns only attached connectors
	w = api.do("GET", base+"/connectors?node_id=n2", nil)
	api.decode(w, &connectors)
	assert.Len(t, connectors, 1)

	w = api.do("POST", base+"/nodes/n1/rename", map[string]string{"new_id": "build"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the connector endpoint follows the rename
	w = api.do("GET", base+"/connectors", nil)
	api.decode(w, &connectors)
	require.Len(t, connectors, 1)
	assert.Equal(t, "build", connectors[0].Start.NodeID)

	// deleting a node cascades to its connectors
	w = api.do("DELETE", base+"/nodes/build", nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do("GET", base+"/connectors", nil)
	api.decode(w, &connectors)
	assert.Empty(t, connectors)
}

func TestValidationFailuresOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Strict")
	base := "/api/v2/canvases/" + canvasID

	t.Run("unknown node kind is a 400", func(t *testing.T) {
		w := api.do("POST", base+"/nodes", map[string]interface{}{
			"node_id": "n1",
			"kind":    "hexagon",
			"x":       0.0,
			"y":       0.0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("connector to a missing node is a 404", func(t *testing.T) {
		api.createNode(canvasID, "n1", 0, 0)
		w := api.do("POST", base+"/connectors", map[string]interface{}{
			"start_node_id": "n1",
			"end_node_id":   "ghost",
		})
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	t.Run("empty node PATCH is a 400", func(t *testing.T) {
		w := api.do("PATCH", base+"/nodes/n1", map[string]interface{}{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("move with one coordinate is a 400", func(t *testing.T) {
		w := api.do("PATCH", base+"/nodes/n1", map[string]interface{}{"x": 10.0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHistoryOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("History")
	base := "/api/v2/canvases/" + canvasID

	api.createNode(canvasID, "n1", 100, 100)

	// a one-shot move is its own undo step
	w := api.do("PATCH", base+"/nodes/n1", map[string]interface{}{"x": 300.0, "y": 200.0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var history struct {
		Status   *queries.HistoryStatusView `json:"status"`
		Versions []queries.VersionSummary   `json:"versions"`
	}
	w = api.do("GET", base+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &history)
	require.NotNil(t, history.Status)
	assert.True(t, history.Status.CanUndo)
	assert.False(t, history.Status.CanRedo)

	w = api.do("POST", base+"/history/undo", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var status queries.HistoryStatusView
	api.decode(w, &status)
	assert.True(t, status.CanRedo)

	view := api.getCanvas(canvasID)
	require.Len(t, view.Nodes, 1)
	assert.Equal(t, 100.0, view.Nodes[0].X, "undo reverts the move")

	w = api.do("POST", base+"/history/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view = api.getCanvas(canvasID)
	assert.Equal(t, 300.0, view.Nodes[0].X, "redo restores the move")

	// undo back past the node creation
	w = api.do("POST", base+"/history/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = api.do("POST", base+"/history/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view = api.getCanvas(canvasID)
	assert.Empty(t, view.Nodes)

	// no more history behind the baseline
	w = api.do("POST", base+"/history/undo", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestImportExportRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	sourceID := api.createCanvas("Source")
	sourceBase := "/api/v2/canvases/" + sourceID

	api.createNode(sourceID, "n1", 100, 100)
	api.createNode(sourceID, "n2", 400, 300)
	w := api.do("POST", sourceBase+"/connectors", map[string]interface{}{
		"connector_id":  "c1",
		"start_node_id": "n1",
		"end_node_id":   "n2",
		"label":         "link",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// export is the bare document, not an envelope
	w = api.do("GET", sourceBase+"/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	document := w.Body.Bytes()
	assert.NotContains(t, string(document), `"success"`)

	targetID := api.createCanvas("Target")
	w = api.doRaw("POST", "/api/v2/canvases/"+targetID+"/import", document)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view := api.getCanvas(targetID)
	require.Len(t, view.Nodes, 2)
	require.Len(t, view.Connectors, 1)
	assert.Equal(t, "c1", view.Connectors[0].ID)
	assert.Equal(t, "link", view.Connectors[0].Label)

	t.Run("document with a dangling endpoint is rejected", func(t *testing.T) {
		broken := map[string]interface{}{
			"nodes": [][]interface{}{
				{"a", map[string]interface{}{"id": "a", "kind": "rectangle", "position": map[string]float64{"x": 0, "y": 0}, "size": map[string]float64{"width": 100, "height": 50}, "title": "A"}},
			},
			"connectors": [][]interface{}{
				{"c", map[string]interface{}{"id": "c", "kind": "straight", "startPoint": map[string]interface{}{"nodeId": "a", "side": "right", "offset": 0.5}, "endPoint": map[string]interface{}{"nodeId": "missing", "side": "left", "offset": 0.5}}},
			},
		}
		w := api.do("POST", "/api/v2/canvases/"+targetID+"/import", broken)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		// failed import leaves the previous state alone
		view := api.getCanvas(targetID)
		assert.Len(t, view.Nodes, 2)
	})
}

func TestSelectionAndHitTest(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Pointer")
	base := "/api/v2/canvases/" + canvasID

	api.createNode(canvasID, "n1", 100, 100)
	api.createNode(canvasID, "n2", 400, 300)

	w := api.do("POST", base+"/selection", map[string]interface{}{"node_ids": []string{"n1"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	view := api.getCanvas(canvasID)
	assert.Equal(t, []string{"n1"}, view.Selection.NodeIDs)

	// additive selection keeps the previous ids
	w = api.do("POST", base+"/selection", map[string]interface{}{"node_ids": []string{"n2"}, "additive": true})
	require.Equal(t, http.StatusOK, w.Code)
	view = api.getCanvas(canvasID)
	assert.ElementsMatch(t, []string{"n1", "n2"}, view.Selection.NodeIDs)

	w = api.do("POST", base+"/selection", map[string]interface{}{"clear": true})
	require.Equal(t, http.StatusOK, w.Code)
	view = api.getCanvas(canvasID)
	assert.Empty(t, view.Selection.NodeIDs)

	t.Run("hit test resolves the node under the point", func(t *testing.T) {
		w := api.do("GET", base+"/hit-test?x=160&y=130", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var hit queries.HitTestResult
		api.decode(w, &hit)
		assert.Equal(t, queries.HitNode, hit.Kind)
		assert.Equal(t, "n1", hit.ID)
	})

	t.Run("empty space misses", func(t *testing.T) {
		w := api.do("GET", base+"/hit-test?x=900&y=900", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var hit queries.HitTestResult
		api.decode(w, &hit)
		assert.Equal(t, queries.HitNone, hit.Kind)
	})

	t.Run("padded hit test widens the target", func(t *testing.T) {
		// (90, 90) sits outside the node but inside its 16px skirt
		w := api.do("GET", base+"/hit-test?x=90&y=90", nil)
		var hit queries.HitTestResult
		api.decode(w, &hit)
		assert.Equal(t, queries.HitNone, hit.Kind)

		w = api.do("GET", base+"/hit-test?x=90&y=90&padded=true", nil)
		api.decode(w, &hit)
		assert.Equal(t, queries.HitNode, hit.Kind)
		assert.Equal(t, "n1", hit.ID)
	})

	t.Run("missing coordinates are a 400", func(t *testing.T) {
		w := api.do("GET", base+"/hit-test?x=10", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOverlayProjection(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Overlay")
	base := "/api/v2/canvases/" + canvasID

	api.createNode(canvasID, "n1", 100, 100)
	api.createNode(canvasID, "n2", 400, 300)

	w := api.do("POST", base+"/overlays/apply", map[string]interface{}{
		"actions": []map[string]interface{}{
			{"id": "n1", "action": "highlight", "style": "success"},
			{"id": []string{"n2"}, "action": "annotate", "annotation": "42 requests queued"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var overlay queries.OverlayView
	api.decode(w, &overlay)
	require.Contains(t, overlay.Highlights, "n1")
	require.Contains(t, overlay.Highlights, "n2")
	assert.Equal(t, "42 requests queued", overlay.Annotations["n2"])

	// a later application replaces the whole overlay
	w = api.do("POST", base+"/overlays/apply", map[string]interface{}{
		"actions": []map[string]interface{}{
			{"id": "n2", "action": "focus"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &overlay)
	assert.NotContains(t, overlay.Highlights, "n1")
	assert.Contains(t, overlay.Highlights, "n2")
	assert.Empty(t, overlay.Annotations)

	w = api.do("DELETE", base+"/overlays", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = api.do("GET", base+"/overlays", nil)
	require.Equal(t, http.StatusOK, w.Code)
	api.decode(w, &overlay)
	assert.Empty(t, overlay.Highlights)
	assert.Empty(t, overlay.Annotations)
}

func TestAPIVersionHeaders(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Headers")

	w := api.do("GET", "/api/v2/canvases/"+canvasID, nil)
	assert.Equal(t, "v2", w.Header().Get("X-API-Version"))
	assert.Empty(t, w.Header().Get("X-API-Deprecated"))

	w = api.do("GET", "/api/v1/canvases/"+canvasID, nil)
	assert.Equal(t, "v1", w.Header().Get("X-API-Version"))
	assert.Equal(t, "true", w.Header().Get("X-API-Deprecated"))
}

func TestLegacyV1Reads(t *testing.T) {
	api := newTestAPI(t)
	canvasID := api.createCanvas("Legacy")
	api.createNode(canvasID, "n1", 100, 100)

	// v1 responds with the bare view, no envelope
	w := api.do("GET", "/api/v1/canvases/"+canvasID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view queries.CanvasView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "Legacy", view.Name)
	require.Len(t, view.Nodes, 1)

	w = api.do("GET", "/api/v1/canvases/"+canvasID+"/nodes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var nodes []queries.NodeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nodes))
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)

	w = api.do("GET", "/api/v1/canvases/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	api := newTestAPI(t)

	w := api.do("GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = api.do("GET", "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ready")
}
