package sagas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaga_RunsStepsInOrder(t *testing.T) {
	saga := NewSaga("checkout", zap.NewNop())

	var trace []string
	saga.AddStep(SagaStep{
		Name: "reserve",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			trace = append(trace, "reserve")
			return data.(int) + 1, nil
		},
	})
	saga.AddStep(SagaStep{
		Name: "charge",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			trace = append(trace, "charge")
			return data.(int) + 1, nil
		},
	})

	result, err := saga.Execute(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, result, "each step sees the previous step's output")
	assert.Equal(t, []string{"reserve", "charge"}, trace)
	assert.Equal(t, SagaStateCompleted, saga.GetState())
	assert.NotEmpty(t, saga.GetID())
}

func TestSaga_CompensatesCompletedStepsInReverse(t *testing.T) {
	saga := NewSaga("checkout", zap.NewNop())

	var trace []string
	step := func(name string) SagaStep {
		return SagaStep{
			Name: name,
			Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
				trace = append(trace, name)
				return data, nil
			},
			Compensate: func(ctx context.Context, data interface{}) error {
				trace = append(trace, "undo-"+name)
				return nil
			},
		}
	}
	saga.AddStep(step("reserve"))
	saga.AddStep(step("charge"))
	saga.AddStep(SagaStep{
		Name: "notify",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			return nil, errors.New("smtp down")
		},
	})

	_, err := saga.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed at step notify")

	// only the steps that ran get undone, newest first
	assert.Equal(t, []string{"reserve", "charge", "undo-charge", "undo-reserve"}, trace)
	assert.Equal(t, SagaStateCompensated, saga.GetState())
}

func TestSaga_FailedCompensationDoesNotStopTheRest(t *testing.T) {
	saga := NewSaga("checkout", zap.NewNop())

	var undone []string
	saga.AddStep(SagaStep{
		Name:    "first",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) { return data, nil },
		Compensate: func(ctx context.Context, data interface{}) error {
			undone = append(undone, "first")
			return nil
		},
	})
	saga.AddStep(SagaStep{
		Name:    "second",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) { return data, nil },
		Compensate: func(ctx context.Context, data interface{}) error {
			return errors.New("undo failed")
		},
	})
	saga.AddStep(SagaStep{
		Name: "third",
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			return nil, errors.New("boom")
		},
	})

	_, err := saga.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, []string{"first"}, undone)
	assert.Equal(t, SagaStateCompensated, saga.GetState())
}

func TestSaga_RetriesFlakyStep(t *testing.T) {
	saga := NewSaga("flaky", zap.NewNop())

	attempts := 0
	saga.AddStep(SagaStep{
		Name:       "unstable",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			attempts++
			if attempts < 3 {
				return nil, errors.New("transient")
			}
			return data, nil
		},
	})

	_, err := saga.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, SagaStateCompleted, saga.GetState())
}

func TestSaga_RetryStopsAtLimit(t *testing.T) {
	saga := NewSaga("flaky", zap.NewNop())

	attempts := 0
	saga.AddStep(SagaStep{
		Name:       "unstable",
		MaxRetries: 2,
		RetryDelay: time.Millisecond,
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			attempts++
			return nil, errors.New("still down")
		},
	})

	_, err := saga.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed after 2 attempts")
	assert.Equal(t, 2, attempts)
}

func TestSaga_RetryHonoursContextCancellation(t *testing.T) {
	saga := NewSaga("flaky", zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	saga.AddStep(SagaStep{
		Name:       "unstable",
		MaxRetries: 5,
		RetryDelay: time.Minute,
		Execute: func(ctx context.Context, data interface{}) (interface{}, error) {
			cancel()
			return nil, errors.New("transient")
		},
	})

	_, err := saga.Execute(ctx, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "the retry wait aborts instead of sleeping a minute")
}
