package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowcanvas/pkg/common"
)

type testCommand struct {
	invalid bool
}

func (c testCommand) Validate() error {
	if c.invalid {
		return errors.New("bad command")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recordingLogger struct {
	infos  [][]interface{}
	errors [][]interface{}
}

func (l *recordingLogger) Info(msg string, keysAndValues ...interface{}) {
	l.infos = append(l.infos, append([]interface{}{msg}, keysAndValues...))
}

func (l *recordingLogger) Error(msg string, keysAndValues ...interface{}) {
	l.errors = append(l.errors, append([]interface{}{msg}, keysAndValues...))
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()

	var handled Command
	require.NoError(t, b.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		handled = cmd
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), testCommand{}))
	assert.Equal(t, testCommand{}, handled)

	t.Run("unregistered command", func(t *testing.T) {
		err := b.Send(context.Background(), otherCommand{})
		assert.ErrorIs(t, err, ErrHandlerNotFound)
	})

	t.Run("invalid command never reaches the handler", func(t *testing.T) {
		handled = nil
		err := b.Send(context.Background(), testCommand{invalid: true})
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Nil(t, handled)
	})

	t.Run("handler errors pass through unwrapped", func(t *testing.T) {
		sentinel := errors.New("domain said no")
		require.NoError(t, b.Register(otherCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return sentinel
		})))
		assert.ErrorIs(t, b.Send(context.Background(), otherCommand{}), sentinel)
	})

	t.Run("double registration", func(t *testing.T) {
		err := b.Register(testCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return nil
		}))
		assert.Error(t, err)
	})
}

func TestValidationMiddleware(t *testing.T) {
	handler := ValidationMiddleware()(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), testCommand{}))
	assert.ErrorIs(t, handler.Handle(context.Background(), testCommand{invalid: true}), ErrValidationFailed)
}

func TestLoggingMiddleware(t *testing.T) {
	logger := &recordingLogger{}
	handler := LoggingMiddleware(logger)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), testCommand{}))
	require.Len(t, logger.infos, 2)
	assert.Contains(t, logger.infos[0], "testCommand")
	assert.NotContains(t, logger.infos[0], "user")

	t.Run("attributes the acting user", func(t *testing.T) {
		logger := &recordingLogger{}
		handler := LoggingMiddleware(logger)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return nil
		}))

		ctx := common.WithUserID(context.Background(), "user-7")
		require.NoError(t, handler.Handle(ctx, testCommand{}))
		require.Len(t, logger.infos, 2)
		assert.Contains(t, logger.infos[0], "user")
		assert.Contains(t, logger.infos[0], "user-7")
	})

	t.Run("failures log at error level", func(t *testing.T) {
		logger := &recordingLogger{}
		handler := LoggingMiddleware(logger)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			return errors.New("boom")
		}))

		require.Error(t, handler.Handle(context.Background(), testCommand{}))
		assert.Len(t, logger.infos, 1, "only the start line")
		assert.Len(t, logger.errors, 1)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := &recordingLogger{}
	handler := RecoveryMiddleware(logger)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		panic("handler exploded")
	}))

	err := handler.Handle(context.Background(), testCommand{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutionFailed)
	assert.Contains(t, err.Error(), "handler exploded")
	assert.Len(t, logger.errors, 1)
}

type recordingRecorder struct {
	names     []string
	successes []bool
}

func (r *recordingRecorder) Record(name string, elapsed time.Duration, success bool) {
	r.names = append(r.names, name)
	r.successes = append(r.successes, success)
}

func TestTimingMiddleware(t *testing.T) {
	recorder := &recordingRecorder{}
	ok := TimingMiddleware(recorder)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	}))
	failing := TimingMiddleware(recorder)(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return errors.New("boom")
	}))

	require.NoError(t, ok.Handle(context.Background(), testCommand{}))
	require.Error(t, failing.Handle(context.Background(), testCommand{}))

	assert.Equal(t, []string{"testCommand", "testCommand"}, recorder.names)
	assert.Equal(t, []bool{true, false}, recorder.successes)
}

func TestPipeline_Order(t *testing.T) {
	var trace []string
	tag := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				trace = append(trace, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	pipeline := NewPipeline(tag("outer"), tag("inner"))
	handler := pipeline.Execute(CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		trace = append(trace, "handler")
		return nil
	}))

	require.NoError(t, handler.Handle(context.Background(), testCommand{}))
	assert.Equal(t, []string{"outer", "inner", "handler"}, trace)
}
