package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_RunsStepsInOrder(t *testing.T) {
	var steps []string

	op := Operation[string, int, int, string]{
		Name: "count",
		Validate: func(context.Context, string) error {
			steps = append(steps, "validate")
			return nil
		},
		Perform: func(_ context.Context, in string) (int, error) {
			steps = append(steps, "perform")
			return len(in), nil
		},
		Verify: func(_ context.Context, _ string, n int) (int, error) {
			steps = append(steps, "verify")
			return n * 2, nil
		},
		Archive: func(context.Context, string, int) error {
			steps = append(steps, "archive")
			return nil
		},
		Respond: func(_ context.Context, in string, n int) (string, error) {
			steps = append(steps, "respond")
			return in + "!", nil
		},
	}

	out, err := Execute(context.Background(), NewExecutor(discardLogger()), op, "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc!", out)
	assert.Equal(t, []string{"validate", "perform", "verify", "archive", "respond"}, steps)
}

func TestExecute_StopsAtFailingStep(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name string
		op   Operation[int, int, int, int]
		step ExecutionStep
	}{
		{
			name: "validate",
			op: Operation[int, int, int, int]{
				Validate: func(context.Context, int) error { return boom },
				Archive:  func(context.Context, int, int) error { panic("archive must not run") },
			},
			step: StepValidate,
		},
		{
			name: "perform",
			op: Operation[int, int, int, int]{
				Perform: func(context.Context, int) (int, error) { return 0, boom },
				Archive: func(context.Context, int, int) error { panic("archive must not run") },
			},
			step: StepPerform,
		},
		{
			name: "verify",
			op: Operation[int, int, int, int]{
				Verify:  func(context.Context, int, int) (int, error) { return 0, boom },
				Archive: func(context.Context, int, int) error { panic("archive must not run") },
			},
			step: StepVerify,
		},
		{
			name: "archive",
			op: Operation[int, int, int, int]{
				Archive: func(context.Context, int, int) error { return boom },
			},
			step: StepArchive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.op.Name = tt.name

			_, err := Execute(context.Background(), NewExecutor(nil), tt.op, 1)

			require.Error(t, err)
			require.ErrorIs(t, err, boom)
			assert.True(t, IsExecutionError(err))

			step, ok := GetExecutionStep(err)
			require.True(t, ok)
			assert.Equal(t, tt.step, step)
		})
	}
}

func TestExecutionError_Message(t *testing.T) {
	err := &ExecutionError{Step: StepArchive, Message: "state persistence failed", Cause: errors.New("disk full")}

	assert.Equal(t, "archive failed: state persistence failed: disk full", err.Error())
	assert.Equal(t, "verify failed: mismatch", (&ExecutionError{Step: StepVerify, Message: "mismatch"}).Error())
}

func TestGetExecutionStep_PlainError(t *testing.T) {
	step, ok := GetExecutionStep(errors.New("plain"))

	assert.False(t, ok)
	assert.Empty(t, step)
	assert.False(t, IsExecutionError(errors.New("plain")))
}
