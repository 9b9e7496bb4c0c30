package sagas

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"flowcanvas/application/ports"
	"flowcanvas/domain/core/aggregates"
	"flowcanvas/domain/versioning"
)

// ImportOrchestrator runs canvas document imports as a compensated saga:
// the document is dry-run validated first, the current state is captured
// as a restore point, and only then is the live canvas replaced. If the
// post-import checkpoint cannot be recorded the restore point is applied,
// so a canvas never ends up imported but untracked.
type ImportOrchestrator struct {
	store      ports.CanvasStore
	versions   ports.VersionStore
	versioning *versioning.VersioningService
	eventBus   ports.EventBus
	logger     *zap.Logger
}

// NewImportOrchestrator creates a new import orchestrator
func NewImportOrchestrator(
	store ports.CanvasStore,
	versions ports.VersionStore,
	versioningService *versioning.VersioningService,
	eventBus ports.EventBus,
	logger *zap.Logger,
) *ImportOrchestrator {
	return &ImportOrchestrator{
		store:      store,
		versions:   versions,
		versioning: versioningService,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// importState threads the working data through the saga steps
type importState struct {
	canvasID     string
	document     []byte
	restorePoint []byte
	nodeCount    int
	connCount    int
}

// Run imports a document into the canvas
func (o *ImportOrchestrator) Run(ctx context.Context, canvasID string, document []byte) error {
	saga := NewSaga("canvas-import", o.logger)

	saga.AddStep(SagaStep{
		Name: "validate-document",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*importState)

			// Dry-run the parse on a scratch canvas so structural errors
			// surface before the live canvas is touched.
			scratch, err := aggregates.NewCanvas("import-validation")
			if err != nil {
				return nil, err
			}
			if err := scratch.FromJSON(state.document); err != nil {
				return nil, err
			}

			state.nodeCount = scratch.NodeCount()
			state.connCount = scratch.ConnectorCount()
			return state, nil
		},
	})

	saga.AddStep(SagaStep{
		Name: "capture-restore-point",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*importState)

			err := o.store.AcquireRead(ctx, state.canvasID, func(canvas *aggregates.Canvas) error {
				snapshot, err := canvas.ToJSON()
				if err != nil {
					return err
				}
				state.restorePoint = snapshot
				return nil
			})
			if err != nil {
				return nil, err
			}
			return state, nil
		},
	})

	saga.AddStep(SagaStep{
		Name: "apply-document",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*importState)

			err := o.store.Acquire(ctx, state.canvasID, func(canvas *aggregates.Canvas) error {
				if err := canvas.FromJSON(state.document); err != nil {
					return err
				}
				o.flushEvents(ctx, canvas)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return state, nil
		},
		Compensate: func(ctx context.Context, data interface{}) error {
			state := data.(*importState)
			if state.restorePoint == nil {
				return nil
			}
			return o.store.Acquire(ctx, state.canvasID, func(canvas *aggregates.Canvas) error {
				return canvas.FromJSON(state.restorePoint)
			})
		},
	})

	saga.AddStep(SagaStep{
		Name:       "record-checkpoint",
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			state := data.(*importState)
			if !o.versioning.AutoVersionEnabled() {
				return state, nil
			}

			var version *versioning.CanvasVersion
			err := o.store.AcquireRead(ctx, state.canvasID, func(canvas *aggregates.Canvas) error {
				v, err := o.versioning.CreateVersion(canvas, "", fmt.Sprintf("import of %d nodes, %d connectors", state.nodeCount, state.connCount))
				if err != nil {
					return err
				}
				version = v
				return nil
			})
			if err != nil {
				return nil, err
			}

			if err := o.versions.Save(ctx, version); err != nil {
				return nil, err
			}
			if max := o.versioning.MaxVersions(); max > 0 {
				if err := o.versions.Prune(ctx, state.canvasID, max); err != nil {
					return nil, err
				}
			}
			return state, nil
		},
	})

	result, err := saga.Execute(ctx, &importState{canvasID: canvasID, document: document})
	if err != nil {
		return err
	}

	final := result.(*importState)
	o.logger.Info("Canvas imported",
		zap.String("canvasID", canvasID),
		zap.Int("nodeCount", final.nodeCount),
		zap.Int("connectorCount", final.connCount),
	)
	return nil
}

func (o *ImportOrchestrator) flushEvents(ctx context.Context, canvas *aggregates.Canvas) {
	pending := canvas.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}
	if err := o.eventBus.PublishBatch(ctx, pending); err != nil {
		o.logger.Warn("Failed to publish import events", zap.Error(err))
	}
	canvas.MarkEventsAsCommitted()
}
