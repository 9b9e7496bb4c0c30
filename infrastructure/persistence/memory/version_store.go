package memory

import (
	"context"
	"sort"
	"sync"

	"flowcanvas/domain/versioning"
	pkgerrors "flowcanvas/pkg/errors"
)

// VersionStore implements the VersionStore interface in memory. Checkpoints
// are kept per canvas ordered by version number.
type VersionStore struct {
	mu       sync.RWMutex
	byCanvas map[string][]*versioning.CanvasVersion
}

// NewVersionStore creates a new VersionStore
func NewVersionStore() *VersionStore {
	return &VersionStore{
		byCanvas: make(map[string][]*versioning.CanvasVersion),
	}
}

// Save stores a checkpoint. Saving a version number that already exists
// replaces the stored checkpoint.
func (s *VersionStore) Save(ctx context.Context, version *versioning.CanvasVersion) error {
	if version == nil {
		return pkgerrors.NewValidationError("version must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoints := s.byCanvas[version.CanvasID]
	for i, existing := range checkpoints {
		if existing.Version == version.Version {
			checkpoints[i] = version
			return nil
		}
	}

	checkpoints = append(checkpoints, version)
	sort.Slice(checkpoints, func(a, b int) bool {
		return checkpoints[a].Version < checkpoints[b].Version
	})
	s.byCanvas[version.CanvasID] = checkpoints

	return nil
}

// List returns all checkpoints for a canvas, oldest first
func (s *VersionStore) List(ctx context.Context, canvasID string) ([]*versioning.CanvasVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoints := s.byCanvas[canvasID]
	result := make([]*versioning.CanvasVersion, len(checkpoints))
	copy(result, checkpoints)
	return result, nil
}

// Get retrieves one checkpoint by its version number
func (s *VersionStore) Get(ctx context.Context, canvasID string, version int) (*versioning.CanvasVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, checkpoint := range s.byCanvas[canvasID] {
		if checkpoint.Version == version {
			return checkpoint, nil
		}
	}
	return nil, pkgerrors.ErrVersionNotFound
}

// Prune drops the oldest checkpoints beyond keep
func (s *VersionStore) Prune(ctx context.Context, canvasID string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	checkpoints := s.byCanvas[canvasID]
	if len(checkpoints) <= keep {
		return nil
	}

	if keep == 0 {
		delete(s.byCanvas, canvasID)
		return nil
	}

	trimmed := make([]*versioning.CanvasVersion, keep)
	copy(trimmed, checkpoints[len(checkpoints)-keep:])
	s.byCanvas[canvasID] = trimmed

	return nil
}
