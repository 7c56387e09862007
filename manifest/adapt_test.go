package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/flowcraft-dev/flowcraft-go/flowruntime"
	"github.com/stretchr/testify/require"
)

func handleWithArgs(args []any) *flowruntime.NodeHandle {
	ctx := blueprint.NewContext(blueprint.Metadata{})
	return flowruntime.NewNodeHandle(ctx, nil, args, nil)
}

func TestBuildStepFuncs_ContextAndArgsAndError(t *testing.T) {
	ValidateOrder := func(ctx context.Context, total int) (string, error) {
		if total < 0 {
			return "", errors.New("negative total")
		}
		return "validated", nil
	}

	steps, err := BuildStepFuncs(map[string]any{"ValidateOrder": ValidateOrder})
	require.NoError(t, err)

	out, err := steps["ValidateOrder"](context.Background(), handleWithArgs([]any{int64(10)}))
	require.NoError(t, err)
	require.Equal(t, "validated", out)

	_, err = steps["ValidateOrder"](context.Background(), handleWithArgs([]any{int64(-1)}))
	require.Error(t, err)
}

func TestBuildStepFuncs_NoReturnValues(t *testing.T) {
	called := false
	LogEvent := func(ctx context.Context, msg string) {
		called = true
		_ = msg
	}
	steps, err := BuildStepFuncs(map[string]any{"LogEvent": LogEvent})
	require.NoError(t, err)
	_, err = steps["LogEvent"](context.Background(), handleWithArgs([]any{"hi"}))
	require.NoError(t, err)
	require.True(t, called)
}

func TestBuildStepFuncs_RejectsNonFunction(t *testing.T) {
	_, err := BuildStepFuncs(map[string]any{"NotAFunc": 42})
	require.Error(t, err)
}

func TestBuildStepFuncs_TooFewArgsIsRuntimeError(t *testing.T) {
	Needs2 := func(ctx context.Context, a, b int) error { return nil }
	steps, err := BuildStepFuncs(map[string]any{"Needs2": Needs2})
	require.NoError(t, err)
	_, err = steps["Needs2"](context.Background(), handleWithArgs([]any{int64(1)}))
	require.Error(t, err)
}
