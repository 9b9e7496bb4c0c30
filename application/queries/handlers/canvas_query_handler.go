package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/application/queries"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/valueobjects"
)

// CanvasQueryHandler serves all canvas-scoped read queries
type CanvasQueryHandler struct {
	store  ports.CanvasStore
	logger *zap.Logger
}

// NewCanvasQueryHandler creates a new canvas query handler
func NewCanvasQueryHandler(store ports.CanvasStore, logger *zap.Logger) *CanvasQueryHandler {
	return &CanvasQueryHandler{
		store:  store,
		logger: logger,
	}
}

// HandleGetCanvas executes the get canvas query
func (h *CanvasQueryHandler) HandleGetCanvas(ctx context.Context, query queries.GetCanvasQuery) (*queries.CanvasView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var view *queries.CanvasView
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		view = queries.NewCanvasView(canvas)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// HandleListCanvases executes the list canvases query
func (h *CanvasQueryHandler) HandleListCanvases(ctx context.Context, query queries.ListCanvasesQuery) ([]ports.CanvasSummary, error) {
	return h.store.List(ctx)
}

// HandleGetNode executes the get node query
func (h *CanvasQueryHandler) HandleGetNode(ctx context.Context, query queries.GetNodeQuery) (*queries.NodeView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var view queries.NodeView
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		node, err := canvas.GetNode(query.NodeID)
		if err != nil {
			return err
		}
		view = queries.NewNodeView(node)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// HandleGetConnectors executes the get connectors query
func (h *CanvasQueryHandler) HandleGetConnectors(ctx context.Context, query queries.GetConnectorsQuery) ([]queries.ConnectorView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	views := []queries.ConnectorView{}
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		for _, conn := range canvas.GetAllConnectors() {
			if query.NodeID != "" && !conn.IsConnectedToNode(query.NodeID) {
				continue
			}
			views = append(views, queries.NewConnectorView(conn))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// HandleHitTest executes the hit test query. Endpoint hover wins over node
// bodies, mirroring gesture dispatch priority.
func (h *CanvasQueryHandler) HandleHitTest(ctx context.Context, query queries.HitTestQuery) (*queries.HitTestResult, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	result := &queries.HitTestResult{Kind: queries.HitNone}
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		point := valueobjects.Position{X: query.X, Y: query.Y}
		cfg := canvas.Config()

		if conn, end, ok := canvas.ConnectorEndpointNear(point, cfg.EndpointHoverRadius); ok {
			result.Kind = queries.HitConnectorEndpoint
			result.ID = conn.ID()
			result.End = string(end)
			return nil
		}

		if query.Padded {
			if node, ok := canvas.NodeAtPointPadded(point, cfg.SkirtPadding); ok {
				result.Kind = queries.HitNode
				result.ID = node.ID()
			}
			return nil
		}
		if node, ok := canvas.NodeAtPoint(point); ok {
			result.Kind = queries.HitNode
			result.ID = node.ID()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// HandleGetOverlays executes the get overlays query
func (h *CanvasQueryHandler) HandleGetOverlays(ctx context.Context, query queries.GetOverlaysQuery) (*queries.OverlayView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var view queries.OverlayView
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		view = queries.NewOverlayView(canvas)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// HandleGetHistoryStatus executes the get history status query
func (h *CanvasQueryHandler) HandleGetHistoryStatus(ctx context.Context, query queries.GetHistoryStatusQuery) (*queries.HistoryStatusView, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var view queries.HistoryStatusView
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		view = queries.NewHistoryStatusView(canvas)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// HandleExport executes the export canvas query
func (h *CanvasQueryHandler) HandleExport(ctx context.Context, query queries.ExportCanvasQuery) (json.RawMessage, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var document json.RawMessage
	err := h.store.AcquireRead(ctx, query.CanvasID, func(canvas *aggregates.Canvas) error {
		data, err := canvas.ToJSON()
		if err != nil {
			return err
		}
		document = data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return document, nil
}
