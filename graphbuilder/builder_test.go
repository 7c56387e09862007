package graphbuilder

import (
	"testing"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

// subBP is a trivial two-node subflow: start -> Validate.
func subBP() *blueprint.Blueprint {
	bp := &blueprint.Blueprint{
		ID:          "ValidateFlow",
		StartNodeID: "start",
		Nodes: []blueprint.NodeDefinition{
			{ID: "start", Uses: blueprint.UsesStart, OriginalID: "start"},
			{ID: "Validate_1", Uses: "Validate", OriginalID: "Validate_1"},
		},
		Edges: []blueprint.EdgeDefinition{{Source: "start", Target: "Validate_1"}},
	}
	bp.PredecessorCountMap, bp.OriginalPredecessorIDMap = blueprint.ComputePredecessorMaps(bp.Nodes, bp.Edges)
	return bp
}

// rootBP calls ValidateFlow as a subflow between two steps:
// start -> A -> subflow_1(ValidateFlow) -> B
func rootBP() *blueprint.Blueprint {
	bp := &blueprint.Blueprint{
		ID:          "RootFlow",
		StartNodeID: "start",
		Nodes: []blueprint.NodeDefinition{
			{ID: "start", Uses: blueprint.UsesStart, OriginalID: "start"},
			{ID: "A_1", Uses: "A", OriginalID: "A_1"},
			{ID: "subflow_1", Uses: blueprint.UsesSubflow, OriginalID: "subflow_1", Params: map[string]any{"blueprintId": "ValidateFlow"}},
			{ID: "B_1", Uses: "B", OriginalID: "B_1"},
		},
		Edges: []blueprint.EdgeDefinition{
			{Source: "start", Target: "A_1"},
			{Source: "A_1", Target: "subflow_1"},
			{Source: "subflow_1", Target: "B_1"},
		},
	}
	bp.PredecessorCountMap, bp.OriginalPredecessorIDMap = blueprint.ComputePredecessorMaps(bp.Nodes, bp.Edges)
	return bp
}

func TestFlatten_InlinesSubflow(t *testing.T) {
	b := New(map[string]*blueprint.Blueprint{
		"RootFlow":     rootBP(),
		"ValidateFlow": subBP(),
	})

	flat, err := b.Flatten("RootFlow")
	require.NoError(t, err)
	require.NoError(t, flat.Validate())

	for _, n := range flat.Nodes {
		require.NotEqual(t, blueprint.UsesSubflow, n.Uses, "no subflow node should survive flattening")
	}

	_, ok := flat.NodeByID("subflow_1__input_mapper")
	require.True(t, ok)
	_, ok = flat.NodeByID("subflow_1__output_mapper")
	require.True(t, ok)
	_, ok = flat.NodeByID("subflow_1__Validate_1")
	require.True(t, ok)

	// B_1 is now produced by the output-mapper, and originalPredecessorIdMap
	// does not unwind through it to Validate_1 (invariant 8's exception: the
	// output-mapper IS the producer for external consumers, so it appears
	// directly rather than being unwound).
	require.Equal(t, []string{"subflow_1__output_mapper"}, flat.OriginalPredecessorIDMap["B_1"])
}

func TestFlatten_IdempotentOnAlreadyFlat(t *testing.T) {
	b := New(map[string]*blueprint.Blueprint{
		"RootFlow":     rootBP(),
		"ValidateFlow": subBP(),
	})

	first, err := b.Flatten("RootFlow")
	require.NoError(t, err)

	b2 := New(map[string]*blueprint.Blueprint{"RootFlow": first})
	second, err := b2.Flatten("RootFlow")
	require.NoError(t, err)

	require.ElementsMatch(t, first.Nodes, second.Nodes)
	require.ElementsMatch(t, first.Edges, second.Edges)
}

func TestFlatten_DetectsRecursiveCycle(t *testing.T) {
	cyclic := rootBP()
	// Point ValidateFlow's subflow call back at RootFlow to form a cycle.
	sub := subBP()
	sub.Nodes = append(sub.Nodes, blueprint.NodeDefinition{
		ID: "subflow_2", Uses: blueprint.UsesSubflow, Params: map[string]any{"blueprintId": "RootFlow"},
	})
	sub.Edges = append(sub.Edges, blueprint.EdgeDefinition{Source: "Validate_1", Target: "subflow_2"})
	sub.PredecessorCountMap, sub.OriginalPredecessorIDMap = blueprint.ComputePredecessorMaps(sub.Nodes, sub.Edges)

	b := New(map[string]*blueprint.Blueprint{
		"RootFlow":     cyclic,
		"ValidateFlow": sub,
	})

	_, err := b.Flatten("RootFlow")
	require.Error(t, err)
}
