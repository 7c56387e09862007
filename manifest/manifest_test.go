package manifest

import (
	"strings"
	"testing"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ProducesValidGoSource(t *testing.T) {
	reg := blueprint.Registry{
		"ValidateOrder": {ImportPath: "example.com/app/steps", ExportName: "ValidateOrder"},
		"ChargeCard":    {ImportPath: "example.com/app/steps", ExportName: "ChargeCard"},
	}
	bps := map[string]*blueprint.Blueprint{
		"OrderFlow": {
			ID:          "OrderFlow",
			StartNodeID: "start",
			Nodes:       []blueprint.NodeDefinition{{ID: "start", Uses: blueprint.UsesStart}},
		},
	}

	src, err := Generate("manifest", reg, bps)
	require.NoError(t, err)
	require.Contains(t, src, `"ValidateOrder": pkg0.ValidateOrder,`)
	require.Contains(t, src, `"ChargeCard":    pkg0.ChargeCard,`)
	require.Contains(t, src, `pkg0 "example.com/app/steps"`)
	require.Contains(t, src, `"OrderFlow": manifest.MustDecodeBlueprint(`)
	require.True(t, strings.HasPrefix(src, "// Code generated by flowcraft build."))
}

func TestGenerate_DeterministicAcrossInvocations(t *testing.T) {
	reg := blueprint.Registry{
		"B": {ImportPath: "example.com/app/steps", ExportName: "B"},
		"A": {ImportPath: "example.com/app/steps", ExportName: "A"},
	}
	bps := map[string]*blueprint.Blueprint{}

	first, err := Generate("manifest", reg, bps)
	require.NoError(t, err)
	second, err := Generate("manifest", reg, bps)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMustDecodeBlueprint_RoundTrips(t *testing.T) {
	bp := blueprint.Blueprint{
		ID:          "Flow",
		StartNodeID: "start",
		Nodes:       []blueprint.NodeDefinition{{ID: "start", Uses: blueprint.UsesStart}},
	}
	reg := blueprint.Registry{}
	bps := map[string]*blueprint.Blueprint{"Flow": &bp}
	src, err := Generate("manifest", reg, bps)
	require.NoError(t, err)

	start := strings.Index(src, "`")
	end := strings.LastIndex(src, "`")
	require.Greater(t, end, start)
	embedded := src[start+1 : end]

	decoded := MustDecodeBlueprint(embedded)
	require.Equal(t, "Flow", decoded.ID)
	require.Equal(t, "start", decoded.StartNodeID)
}

func TestMustDecodeBlueprint_PanicsOnBadJSON(t *testing.T) {
	require.Panics(t, func() { MustDecodeBlueprint("not json") })
}
