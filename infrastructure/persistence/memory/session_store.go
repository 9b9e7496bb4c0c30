package memory

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/config"
	"flowcanvas/domain/core/aggregates"
	pkgerrors "flowcanvas/pkg/errors"
)

// SessionStore implements the CanvasStore interface with in-process
// sessions. Each canvas lives behind its own lock so writers on one
// canvas never block readers or writers on another.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*canvasSession
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// canvasSession pairs a live aggregate with its access lock and a
// revision counter. The revision bumps only when a write closure
// succeeds; failed commands leave the aggregate untouched, so the
// counter stays an accurate cache key.
type canvasSession struct {
	mu       sync.RWMutex
	canvas   *aggregates.Canvas
	revision uint64
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(cfg *config.DomainConfig, logger *zap.Logger) *SessionStore {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &SessionStore{
		sessions: make(map[string]*canvasSession),
		cfg:      cfg,
		logger:   logger,
	}
}

// Create registers a new canvas under a fresh session
func (s *SessionStore) Create(ctx context.Context, name string) (*aggregates.Canvas, error) {
	canvas, err := aggregates.NewCanvasWithConfig(name, s.cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[canvas.ID().String()] = &canvasSession{canvas: canvas}
	s.mu.Unlock()

	s.logger.Info("Canvas session created",
		zap.String("canvasId", canvas.ID().String()),
		zap.String("name", canvas.Name()))

	return canvas, nil
}

// Acquire runs fn with exclusive access to the canvas
func (s *SessionStore) Acquire(ctx context.Context, id string, fn func(*aggregates.Canvas) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess.canvas); err != nil {
		return err
	}
	sess.revision++
	return nil
}

// AcquireRead runs fn with shared read access to the canvas
func (s *SessionStore) AcquireRead(ctx context.Context, id string, fn func(*aggregates.Canvas) error) error {
	sess, err := s.session(id)
	if err != nil {
		return err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()

	return fn(sess.canvas)
}

// List returns summaries of all live canvases
func (s *SessionStore) List(ctx context.Context) ([]ports.CanvasSummary, error) {
	s.mu.RLock()
	sessions := make([]*canvasSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	summaries := make([]ports.CanvasSummary, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.RLock()
		summaries = append(summaries, ports.CanvasSummary{
			ID:             sess.canvas.ID().String(),
			Name:           sess.canvas.Name(),
			NodeCount:      sess.canvas.NodeCount(),
			ConnectorCount: sess.canvas.ConnectorCount(),
			Revision:       sess.revision,
			CreatedAt:      sess.canvas.CreatedAt(),
			UpdatedAt:      sess.canvas.UpdatedAt(),
		})
		sess.mu.RUnlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})

	return summaries, nil
}

// Revision returns the session revision counter for a canvas
func (s *SessionStore) Revision(ctx context.Context, id string) (uint64, error) {
	sess, err := s.session(id)
	if err != nil {
		return 0, err
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	return sess.revision, nil
}

// Delete removes a canvas and its session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return pkgerrors.ErrCanvasNotFound
	}
	delete(s.sessions, id)

	s.logger.Info("Canvas session deleted", zap.String("canvasId", id))
	return nil
}

func (s *SessionStore) session(id string) (*canvasSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.ErrCanvasNotFound
	}
	return sess, nil
}
