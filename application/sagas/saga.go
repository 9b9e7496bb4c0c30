package sagas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SagaStep is one unit of a multi-step operation. Execute receives the
// previous step's output and returns its own. Compensate, when set,
// undoes the step if a later one fails. MaxRetries and RetryDelay
// default to 1 attempt and 1s between attempts.
type SagaStep struct {
	Name       string
	Execute    func(ctx context.Context, data interface{}) (interface{}, error)
	Compensate func(ctx context.Context, data interface{}) error
	MaxRetries int
	RetryDelay time.Duration
}

// SagaState tracks where an execution is in its lifecycle
type SagaState string

const (
	SagaStatePending      SagaState = "PENDING"
	SagaStateRunning      SagaState = "RUNNING"
	SagaStateCompleted    SagaState = "COMPLETED"
	SagaStateFailed       SagaState = "FAILED"
	SagaStateCompensating SagaState = "COMPENSATING"
	SagaStateCompensated  SagaState = "COMPENSATED"
)

// Saga runs steps in order and unwinds completed ones on failure. An
// instance is single-use: compensations accumulate during Execute.
type Saga struct {
	id            string
	name          string
	steps         []SagaStep
	compensations []func(ctx context.Context) error
	state         SagaState
	currentStep   int
	logger        *zap.Logger
}

// NewSaga creates a pending saga with no steps
func NewSaga(name string, logger *zap.Logger) *Saga {
	return &Saga{
		id:            uuid.New().String(),
		name:          name,
		steps:         make([]SagaStep, 0),
		compensations: make([]func(ctx context.Context) error, 0),
		state:         SagaStatePending,
		logger:        logger,
	}
}

// AddStep appends a step, returning the saga for chaining
func (s *Saga) AddStep(step SagaStep) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Execute runs the steps in order, threading each step's output into
// the next. On a step failure every completed step's compensation runs
// in reverse order before the error is returned.
func (s *Saga) Execute(ctx context.Context, initialData interface{}) (interface{}, error) {
	s.state = SagaStateRunning
	s.logger.Info("Saga started",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("steps", len(s.steps)),
	)

	var data interface{} = initialData

	for i, step := range s.steps {
		s.currentStep = i

		result, err := s.runStep(ctx, step, data)
		if err != nil {
			s.state = SagaStateFailed
			s.logger.Error("Saga step failed, compensating",
				zap.String("saga_id", s.id),
				zap.String("step", step.Name),
				zap.Error(err),
			)

			s.compensate(ctx)
			s.state = SagaStateCompensated
			return nil, fmt.Errorf("saga %s failed at step %s: %w", s.name, step.Name, err)
		}

		data = result

		if step.Compensate != nil {
			compensate := step.Compensate
			stepData := data
			s.compensations = append(s.compensations, func(ctx context.Context) error {
				return compensate(ctx, stepData)
			})
		}
	}

	s.state = SagaStateCompleted
	s.logger.Info("Saga completed",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
	)

	return data, nil
}

// runStep executes one step, retrying up to its attempt budget. The
// wait between attempts aborts when the context is cancelled.
func (s *Saga) runStep(ctx context.Context, step SagaStep, data interface{}) (interface{}, error) {
	maxRetries := step.MaxRetries
	if maxRetries == 0 {
		maxRetries = 1
	}

	retryDelay := step.RetryDelay
	if retryDelay == 0 {
		retryDelay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
		}

		result, err := step.Execute(ctx, data)
		if err == nil {
			return result, nil
		}

		lastErr = err
		s.logger.Warn("Saga step attempt failed",
			zap.String("saga_id", s.id),
			zap.String("step", step.Name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	return nil, fmt.Errorf("step %s failed after %d attempts: %w", step.Name, maxRetries, lastErr)
}

// compensate runs registered compensations in reverse order. A failing
// compensation is logged and the rest still run.
func (s *Saga) compensate(ctx context.Context) {
	s.state = SagaStateCompensating
	s.logger.Info("Compensating saga",
		zap.String("saga_id", s.id),
		zap.String("saga_name", s.name),
		zap.Int("compensations", len(s.compensations)),
	)

	for i := len(s.compensations) - 1; i >= 0; i-- {
		if err := s.compensations[i](ctx); err != nil {
			s.logger.Error("Saga compensation step failed",
				zap.String("saga_id", s.id),
				zap.Int("compensation", i+1),
				zap.Error(err),
			)
		}
	}
}

// GetState returns the saga's lifecycle state
func (s *Saga) GetState() SagaState {
	return s.state
}

// GetID returns the saga's unique id
func (s *Saga) GetID() string {
	return s.id
}

// GetCurrentStep returns the index of the step being executed
func (s *Saga) GetCurrentStep() int {
	return s.currentStep
}
