package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"flowcanvas/application/gestures"
	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/core/entities"
	"flowcanvas/domain/core/valueobjects"
	pkgerrors "flowcanvas/pkg/errors"
	"flowcanvas/pkg/extensions"
)

// GestureKind names the pointer gesture a session is currently running.
type GestureKind string

const (
	GestureNone         GestureKind = ""
	GestureNodeDrag     GestureKind = "node-drag"
	GestureEndpointDrag GestureKind = "endpoint-drag"
	GestureConnect      GestureKind = "connect"
)

// GestureOutcome is the terminal report of a gesture. Exactly one of
// the result pointers is set, matching Kind.
type GestureOutcome struct {
	Kind         GestureKind
	NodeDrag     *gestures.NodeDragResult
	EndpointDrag *gestures.EndpointDragResult
	Connect      *gestures.ConnectResult
}

// gestureSession holds the per-canvas machines. At most one of them is
// active at a time; the session serializes its own pointer stream.
type gestureSession struct {
	mu       sync.Mutex
	active   GestureKind
	nodeDrag gestures.NodeDrag
	endpoint gestures.EndpointDrag
	connect  gestures.ConnectionCreate
}

// GestureService hosts the pointer-gesture machines for live canvases.
// It is the layer that decides which machine a pointer stream feeds and
// enforces the one-active-gesture rule per canvas; the machines
// themselves only know their own protocol. High-frequency events go
// straight through here rather than through the command bus.
type GestureService struct {
	store    ports.CanvasStore
	eventBus ports.EventBus
	hooks    *extensions.HookManager
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*gestureSession
}

// NewGestureService creates a new gesture service.
func NewGestureService(store ports.CanvasStore, eventBus ports.EventBus, logger *zap.Logger) *GestureService {
	return &GestureService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
		sessions: make(map[string]*gestureSession),
	}
}

// UseHooks installs an extension hook manager. Gestures that commit a
// model change fire HookGestureCommitted with their outcome.
func (s *GestureService) UseHooks(hooks *extensions.HookManager) {
	s.hooks = hooks
}

func (s *GestureService) session(canvasID string) *gestureSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[canvasID]
	if !ok {
		sess = &gestureSession{}
		s.sessions[canvasID] = sess
	}
	return sess
}

// Release drops the gesture session for a canvas, for example after the
// canvas is deleted. An in-progress gesture is abandoned without
// touching the model.
func (s *GestureService) Release(canvasID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, canvasID)
}

// ActiveGesture reports which gesture, if any, is running on a canvas.
func (s *GestureService) ActiveGesture(canvasID string) GestureKind {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.active
}

// StartNodeDrag begins dragging a node body.
func (s *GestureService) StartNodeDrag(ctx context.Context, canvasID, nodeID string, x, y float64) error {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.active != GestureNone {
		return pkgerrors.ErrGestureActive
	}

	err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
		if err := sess.nodeDrag.Begin(canvas, nodeID, valueobjects.Position{X: x, Y: y}); err != nil {
			return err
		}
		s.flushEvents(ctx, canvas)
		return nil
	})
	if err != nil {
		return err
	}

	sess.active = GestureNodeDrag
	s.logger.Debug("Node drag started",
		zap.String("canvasID", canvasID),
		zap.String("nodeID", nodeID),
	)
	return nil
}

// StartEndpointDrag begins dragging one end of a connector.
func (s *GestureService) StartEndpointDrag(ctx context.Context, canvasID, connectorID string, end entities.ConnectorEnd, x, y float64) error {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.active != GestureNone {
		return pkgerrors.ErrGestureActive
	}

	err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
		return sess.endpoint.Begin(canvas, connectorID, end, valueobjects.Position{X: x, Y: y})
	})
	if err != nil {
		return err
	}

	sess.active = GestureEndpointDrag
	s.logger.Debug("Endpoint drag started",
		zap.String("canvasID", canvasID),
		zap.String("connectorID", connectorID),
		zap.String("end", string(end)),
	)
	return nil
}

// StartConnection begins growing a new connector out of a node.
func (s *GestureService) StartConnection(ctx context.Context, canvasID, sourceNodeID string, x, y float64) error {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.active != GestureNone {
		return pkgerrors.ErrGestureActive
	}

	err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
		return sess.connect.Begin(canvas, sourceNodeID, valueobjects.Position{X: x, Y: y})
	})
	if err != nil {
		return err
	}

	sess.active = GestureConnect
	s.logger.Debug("Connection creation started",
		zap.String("canvasID", canvasID),
		zap.String("sourceNodeID", sourceNodeID),
	)
	return nil
}

// Move feeds a pointer move to whichever gesture is active. Node drags
// reposition the node on every move; the other gestures only advance
// their previews and never touch the model here.
func (s *GestureService) Move(ctx context.Context, canvasID string, x, y float64) error {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	pointer := valueobjects.Position{X: x, Y: y}
	switch sess.active {
	case GestureNodeDrag:
		return s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
			if err := sess.nodeDrag.Move(canvas, pointer); err != nil {
				return err
			}
			s.flushEvents(ctx, canvas)
			return nil
		})
	case GestureEndpointDrag:
		return sess.endpoint.Move(pointer)
	case GestureConnect:
		return sess.connect.Move(pointer)
	default:
		return pkgerrors.ErrGestureNotActive
	}
}

// End feeds the terminal pointer-up to the active gesture and returns
// its outcome. The session is idle again afterwards regardless of how
// the gesture resolved.
func (s *GestureService) End(ctx context.Context, canvasID string, x, y float64) (GestureOutcome, error) {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	pointer := valueobjects.Position{X: x, Y: y}
	kind := sess.active
	sess.active = GestureNone

	outcome := GestureOutcome{Kind: kind}
	switch kind {
	case GestureNodeDrag:
		err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
			result, err := sess.nodeDrag.End(canvas, pointer)
			if err != nil {
				return err
			}
			outcome.NodeDrag = &result
			s.flushEvents(ctx, canvas)
			return nil
		})
		if err != nil {
			// pointer-up is terminal even on failure; drop the wedged machines
			s.Release(canvasID)
			return GestureOutcome{}, err
		}
		s.logger.Debug("Node drag ended",
			zap.String("canvasID", canvasID),
			zap.String("nodeID", outcome.NodeDrag.NodeID),
			zap.Bool("committed", outcome.NodeDrag.Committed),
			zap.Bool("deselected", outcome.NodeDrag.Deselected),
		)
		if outcome.NodeDrag.Committed {
			s.fireCommitted(ctx, canvasID, outcome)
		}
		return outcome, nil

	case GestureEndpointDrag:
		err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
			result, err := sess.endpoint.End(canvas, pointer)
			if err != nil {
				return err
			}
			outcome.EndpointDrag = &result
			s.flushEvents(ctx, canvas)
			return nil
		})
		if err != nil {
			s.Release(canvasID)
			return GestureOutcome{}, err
		}
		s.logger.Debug("Endpoint drag ended",
			zap.String("canvasID", canvasID),
			zap.String("connectorID", outcome.EndpointDrag.ConnectorID),
			zap.Bool("reattached", outcome.EndpointDrag.Reattached),
			zap.Bool("deleted", outcome.EndpointDrag.Deleted),
		)
		if outcome.EndpointDrag.Reattached || outcome.EndpointDrag.Deleted {
			s.fireCommitted(ctx, canvasID, outcome)
		}
		return outcome, nil

	case GestureConnect:
		err := s.store.Acquire(ctx, canvasID, func(canvas *aggregates.Canvas) error {
			result, err := sess.connect.End(canvas, pointer)
			if err != nil {
				return err
			}
			outcome.Connect = &result
			s.flushEvents(ctx, canvas)
			return nil
		})
		if err != nil {
			s.Release(canvasID)
			return GestureOutcome{}, err
		}
		s.logger.Debug("Connection creation ended",
			zap.String("canvasID", canvasID),
			zap.Bool("created", outcome.Connect.Created),
			zap.String("connectorID", outcome.Connect.ConnectorID),
		)
		if outcome.Connect.Created {
			s.fireCommitted(ctx, canvasID, outcome)
		}
		return outcome, nil

	default:
		return GestureOutcome{}, pkgerrors.ErrGestureNotActive
	}
}

// CancelConnection abandons an in-progress connection creation without
// creating anything. Only the connect gesture has an explicit cancel;
// drags always resolve through End.
func (s *GestureService) CancelConnection(canvasID string) error {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.active != GestureConnect {
		return pkgerrors.ErrGestureNotActive
	}
	sess.connect.Cancel()
	sess.active = GestureNone
	s.logger.Debug("Connection creation cancelled", zap.String("canvasID", canvasID))
	return nil
}

// PreviewLine returns the preview segment of the active gesture, if it
// has one. Node drags move the real node and have no separate preview.
func (s *GestureService) PreviewLine(canvasID string) (from, to valueobjects.Position, ok bool) {
	sess := s.session(canvasID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	switch sess.active {
	case GestureEndpointDrag:
		return sess.endpoint.PreviewLine()
	case GestureConnect:
		return sess.connect.PreviewLine()
	default:
		return valueobjects.Position{}, valueobjects.Position{}, false
	}
}

func (s *GestureService) fireCommitted(ctx context.Context, canvasID string, outcome GestureOutcome) {
	if s.hooks == nil {
		return
	}
	if err := s.hooks.Execute(ctx, extensions.HookGestureCommitted, outcome); err != nil {
		s.logger.Warn("Gesture hook failed",
			zap.String("canvasID", canvasID),
			zap.String("kind", string(outcome.Kind)),
			zap.Error(err),
		)
	}
}

func (s *GestureService) flushEvents(ctx context.Context, canvas *aggregates.Canvas) {
	pending := canvas.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := s.eventBus.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish domain events",
			zap.String("canvasID", canvas.ID().String()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}
	canvas.MarkEventsAsCommitted()
}
