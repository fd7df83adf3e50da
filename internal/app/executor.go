package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotebot/internal/platform/logging"
)

// Mutating use cases run as an Operation: validate the input, perform the
// change in memory, verify it, archive (persist) it, then respond. The first
// failing step ends the run, so nothing is archived unless every earlier step
// passed.

// ExecutionStep names one stage of an Operation.
type ExecutionStep string

const (
	StepValidate ExecutionStep = "validate"
	StepPerform  ExecutionStep = "perform"
	StepVerify   ExecutionStep = "verify"
	StepArchive  ExecutionStep = "archive"
	StepRespond  ExecutionStep = "respond"
)

// ExecutionError records which step failed. It unwraps to the step's error,
// so domain.IsValidation and friends still see through it.
type ExecutionError struct {
	Step    ExecutionStep
	Message string
	Cause   error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s failed: %s", e.Step, e.Message)
	}

	return fmt.Sprintf("%s failed: %s: %v", e.Step, e.Message, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// stepMessages is the ExecutionError message for each wrapped step.
var stepMessages = map[ExecutionStep]string{
	StepValidate: "input validation failed",
	StepPerform:  "operation failed",
	StepVerify:   "verification failed",
	StepArchive:  "state persistence failed",
}

// Executor runs Operations with per-step debug logging.
type Executor struct {
	logger *slog.Logger
}

// NewExecutor uses slog.Default when logger is nil.
func NewExecutor(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Executor{logger: logger}
}

// Operation holds the step functions. Nil steps are skipped and pass the
// zero value along.
type Operation[I, P, V, O any] struct {
	// Name is logged as "operation".
	Name string

	Validate func(ctx context.Context, input I) error
	Perform  func(ctx context.Context, input I) (P, error)
	Verify   func(ctx context.Context, input I, performed P) (V, error)
	Archive  func(ctx context.Context, input I, verified V) error
	Respond  func(ctx context.Context, input I, verified V) (O, error)
}

// runStep calls fn when it is set. Failures are logged at level and wrapped
// in an ExecutionError, except for respond which returns the error as is.
func runStep[T any](ctx context.Context, logger *slog.Logger, step ExecutionStep, level slog.Level, fn func() (T, error)) (T, error) {
	var zero T

	if fn == nil {
		return zero, nil
	}

	logger.DebugContext(ctx, "step started", slog.String("step", string(step)))

	out, err := fn()
	if err != nil {
		logger.Log(ctx, level, "step failed", slog.String("step", string(step)), slog.Any("error", err))

		if step == StepRespond {
			return zero, err
		}

		return zero, &ExecutionError{Step: step, Message: stepMessages[step], Cause: err}
	}

	return out, nil
}

// Execute runs op against input.
func Execute[I, P, V, O any](ctx context.Context, exec *Executor, op Operation[I, P, V, O], input I) (O, error) {
	var zero O

	logger := logging.FromContextOr(ctx, exec.logger).With(slog.String("operation", op.Name))
	start := time.Now()

	var validate func() (struct{}, error)
	if op.Validate != nil {
		validate = func() (struct{}, error) { return struct{}{}, op.Validate(ctx, input) }
	}

	if _, err := runStep(ctx, logger, StepValidate, slog.LevelWarn, validate); err != nil {
		return zero, err
	}

	var perform func() (P, error)
	if op.Perform != nil {
		perform = func() (P, error) { return op.Perform(ctx, input) }
	}

	performed, err := runStep(ctx, logger, StepPerform, slog.LevelError, perform)
	if err != nil {
		return zero, err
	}

	var verify func() (V, error)
	if op.Verify != nil {
		verify = func() (V, error) { return op.Verify(ctx, input, performed) }
	}

	verified, err := runStep(ctx, logger, StepVerify, slog.LevelError, verify)
	if err != nil {
		return zero, err
	}

	var archive func() (struct{}, error)
	if op.Archive != nil {
		archive = func() (struct{}, error) { return struct{}{}, op.Archive(ctx, input, verified) }
	}

	if _, err := runStep(ctx, logger, StepArchive, slog.LevelError, archive); err != nil {
		return zero, err
	}

	var respond func() (O, error)
	if op.Respond != nil {
		respond = func() (O, error) { return op.Respond(ctx, input, verified) }
	}

	out, err := runStep(ctx, logger, StepRespond, slog.LevelWarn, respond)
	if err != nil {
		return zero, err
	}

	logger.InfoContext(ctx, "operation completed", slog.Duration("duration", time.Since(start)))

	return out, nil
}

// IsExecutionError reports whether err came out of a failed step.
func IsExecutionError(err error) bool {
	var execErr *ExecutionError

	return errors.As(err, &execErr)
}

// GetExecutionStep returns the failed step recorded in err.
func GetExecutionStep(err error) (ExecutionStep, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}
