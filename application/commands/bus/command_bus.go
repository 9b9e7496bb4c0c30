package bus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"flowcanvas/pkg/common"
)

var (
	ErrHandlerNotFound  = errors.New("command handler not found")
	ErrValidationFailed = errors.New("command validation failed")
	ErrExecutionFailed  = errors.New("command execution failed")
)

// Command is a mutation request. Validate runs before dispatch so
// handlers only ever see well-formed commands.
type Command interface {
	Validate() error
}

// CommandHandler executes one command type
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc adapts a function to the CommandHandler interface
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// CommandBus routes commands to handlers keyed by concrete type
type CommandBus struct {
	mu       sync.RWMutex
	handlers map[reflect.Type]CommandHandler
}

// NewCommandBus creates an empty command bus
func NewCommandBus() *CommandBus {
	return &CommandBus{handlers: make(map[reflect.Type]CommandHandler)}
}

// Register binds a handler to the command's concrete type. Registering
// a type twice is a wiring bug and fails loudly.
func (b *CommandBus) Register(cmdType Command, handler CommandHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t := reflect.TypeOf(cmdType)
	if _, taken := b.handlers[t]; taken {
		return fmt.Errorf("command type %s already has a handler", t.Name())
	}
	b.handlers[t] = handler
	return nil
}

// Send validates the command and dispatches it. Handler errors pass
// through untouched so the HTTP layer can classify domain errors.
func (b *CommandBus) Send(ctx context.Context, cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	b.mu.RLock()
	handler, registered := b.handlers[reflect.TypeOf(cmd)]
	b.mu.RUnlock()
	if !registered {
		return fmt.Errorf("%w: %T", ErrHandlerNotFound, cmd)
	}

	return handler.Handle(ctx, cmd)
}

// Logger is the slice of the process logger the middlewares need
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// DurationRecorder receives per-command timing samples
type DurationRecorder interface {
	Record(name string, elapsed time.Duration, success bool)
}

// Middleware wraps a handler with a cross-cutting concern
type Middleware func(next CommandHandler) CommandHandler

// LoggingMiddleware logs command execution, attributed to the acting
// user when the context carries one
func LoggingMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			fields := []interface{}{"type", reflect.TypeOf(cmd).Name()}
			if userID, ok := common.GetUserID(ctx); ok {
				fields = append(fields, "user", userID)
			}
			logger.Info("Executing command", fields...)

			err := next.Handle(ctx, cmd)
			if err != nil {
				logger.Error("Command failed", append(fields, "error", err)...)
			} else {
				logger.Info("Command succeeded", fields...)
			}

			return err
		})
	}
}

// ValidationMiddleware revalidates commands. Send already validates;
// this guards paths that invoke a pipeline handler directly.
func ValidationMiddleware() Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			if err := cmd.Validate(); err != nil {
				return fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			return next.Handle(ctx, cmd)
		})
	}
}

// TimingMiddleware records handler durations per command type
func TimingMiddleware(recorder DurationRecorder) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
			start := time.Now()
			err := next.Handle(ctx, cmd)
			recorder.Record(reflect.TypeOf(cmd).Name(), time.Since(start), err == nil)
			return err
		})
	}
}

// RecoveryMiddleware converts handler panics into errors
func RecoveryMiddleware(logger Logger) Middleware {
	return func(next CommandHandler) CommandHandler {
		return CommandHandlerFunc(func(ctx context.Context, cmd Command) (err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("Command handler panicked", "type", reflect.TypeOf(cmd).Name(), "panic", r)
					err = fmt.Errorf("%w: panic: %v", ErrExecutionFailed, r)
				}
			}()
			return next.Handle(ctx, cmd)
		})
	}
}

// Pipeline is an ordered middleware chain shared by every registration
type Pipeline struct {
	middlewares []Middleware
}

// NewPipeline creates a pipeline. The first middleware runs outermost.
func NewPipeline(middlewares ...Middleware) *Pipeline {
	return &Pipeline{middlewares: middlewares}
}

// Execute wraps handler with the chain
func (p *Pipeline) Execute(handler CommandHandler) CommandHandler {
	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i](handler)
	}
	return handler
}
