package flowruntime

import (
	"context"
	"testing"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

func TestHydrate_UnknownUsesIsFatal(t *testing.T) {
	bp := &blueprint.Blueprint{
		Nodes: []blueprint.NodeDefinition{
			{ID: "start", Uses: blueprint.UsesStart},
			{ID: "n1", Uses: "DoSomething"},
		},
	}
	err := hydrate(bp, map[string]StepFunc{})
	require.ErrorIs(t, err, ErrUnknownUses)
}

func TestHydrate_RegisteredStepPasses(t *testing.T) {
	bp := &blueprint.Blueprint{
		Nodes: []blueprint.NodeDefinition{
			{ID: "start", Uses: blueprint.UsesStart},
			{ID: "n1", Uses: "DoSomething"},
		},
	}
	steps := map[string]StepFunc{
		"DoSomething": func(ctx context.Context, h *NodeHandle) (any, error) { return nil, nil },
	}
	require.NoError(t, hydrate(bp, steps))
}

func TestHydrate_BuiltinKindsNeverNeedRegistration(t *testing.T) {
	bp := &blueprint.Blueprint{
		Nodes: []blueprint.NodeDefinition{
			{ID: "start", Uses: blueprint.UsesStart},
			{ID: "loop", Uses: blueprint.UsesLoopController},
			{ID: "gather", Uses: blueprint.UsesGather},
			{ID: "merge", Uses: blueprint.UsesJoin},
			{ID: "sleep", Uses: blueprint.UsesSleep},
		},
	}
	require.NoError(t, hydrate(bp, map[string]StepFunc{}))
}
