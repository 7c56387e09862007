package flowanalyzer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
	"github.com/stretchr/testify/require"
)

// parseFlow parses src (a single file containing exactly one function named
// name) and returns its *ast.FuncDecl plus the shared FileSet, ready for
// AnalyzeFlow.
func parseFlow(t *testing.T, src, name string) (*token.FileSet, *ast.FuncDecl) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "flow.go", src, parser.ParseComments)
	require.NoError(t, err)
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if ok && fn.Name.Name == name {
			return fset, fn
		}
	}
	t.Fatalf("function %q not found", name)
	return nil, nil
}

var stdAliases = importAliases{durable: "durable", flowctx: "flowctx"}

func TestAnalyzeFlow_Sequential(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func OrderFlow(ctx context.Context) error {
	ValidateOrder(ctx)
	ChargeCard(ctx)
	return nil
}
`
	fset, fn := parseFlow(t, src, "OrderFlow")
	reg := Registry{"ValidateOrder": blueprint.ExportStep, "ChargeCard": blueprint.ExportStep}
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, reg, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())

	require.Len(t, bp.Nodes, 3)
	require.Equal(t, "start", bp.Nodes[0].ID)
	require.Equal(t, "ValidateOrder_1", bp.Nodes[1].ID)
	require.Equal(t, "ChargeCard_1", bp.Nodes[2].ID)
	require.Len(t, bp.Edges, 2)
	require.Equal(t, blueprint.EdgeDefinition{Source: "start", Target: "ValidateOrder_1"}, bp.Edges[0])
	require.Equal(t, blueprint.EdgeDefinition{Source: "ValidateOrder_1", Target: "ChargeCard_1"}, bp.Edges[1])
}

func TestAnalyzeFlow_EmptyBody(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func EmptyFlow(ctx context.Context) error {
	return nil
}
`
	fset, fn := parseFlow(t, src, "EmptyFlow")
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, Registry{}, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())
	require.Len(t, bp.Nodes, 1)
	require.Empty(t, bp.Edges)
	require.Equal(t, "start", bp.StartNodeID)
}

func TestAnalyzeFlow_IfWithoutElse(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func CheckFlow(ctx context.Context, expedite bool) error {
	if expedite {
		RushShip(ctx)
	}
	Notify(ctx)
	return nil
}
`
	fset, fn := parseFlow(t, src, "CheckFlow")
	reg := Registry{"RushShip": blueprint.ExportStep, "Notify": blueprint.ExportStep}
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, reg, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())

	// start fans out to RushShip (true branch) and, tagged with the negated
	// condition, straight to Notify (the implicit else); RushShip also
	// reaches Notify. Notify ends
	// up with two incoming edges and no join=all config, so default
	// first-arrival semantics apply.
	require.Equal(t, 2, bp.PredecessorCountMap["Notify_1"])
	require.ElementsMatch(t, []string{"start", "RushShip_1"}, bp.OriginalPredecessorIDMap["Notify_1"])
}

func TestAnalyzeFlow_EmptyLoopBody(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func PollFlow(ctx context.Context, done bool) error {
	for !done {
	}
	return nil
}
`
	fset, fn := parseFlow(t, src, "PollFlow")
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, Registry{}, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())

	require.Len(t, bp.Nodes, 2) // start, loop_controller_1
	controller := bp.Nodes[1]
	require.Equal(t, blueprint.UsesLoopController, controller.Uses)
	// The body is empty so the controller's own "true" edge loops back to
	// itself; the loop's false-exit is never materialized because the flow
	// returns immediately afterward with nothing to connect it to.
	require.Len(t, bp.Edges, 2)
	require.Contains(t, bp.Edges, blueprint.EdgeDefinition{Source: "start", Target: controller.ID})
	require.Contains(t, bp.Edges, blueprint.EdgeDefinition{Source: controller.ID, Target: controller.ID, Action: "true"})
}

func TestAnalyzeFlow_TryWithEmptyCatch(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func RiskyFlow(ctx context.Context) error {
	durable.Try(func() error {
		ChargeCard(ctx)
		return nil
	}, func(err error) {})
	Finish(ctx)
	return nil
}
`
	fset, fn := parseFlow(t, src, "RiskyFlow")
	reg := Registry{"ChargeCard": blueprint.ExportStep, "Finish": blueprint.ExportStep}
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, reg, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())

	// An empty catch attaches no fallback config and adds no catch node.
	chargeNode, ok := bp.NodeByID("ChargeCard_1")
	require.True(t, ok)
	require.Nil(t, chargeNode.Config)
	_, ok = bp.NodeByID("catch_entry_1")
	require.False(t, ok)

	// Finish is reached from the try branch only.
	require.Equal(t, 1, bp.PredecessorCountMap["Finish_1"])
}

func TestAnalyzeFlow_GatherEmpty(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func NoopGatherFlow(ctx context.Context) error {
	durable.Gather()
	return nil
}
`
	fset, fn := parseFlow(t, src, "NoopGatherFlow")
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, Registry{}, stdAliases)
	require.Len(t, diags.All(), 1)
	require.Equal(t, blueprint.SeverityWarning, diags.All()[0].Severity)
	require.Equal(t, "gather over an empty set of calls", diags.All()[0].Message)
	require.NoError(t, bp.Validate())
	require.Len(t, bp.Nodes, 1)
	require.Empty(t, bp.Edges)
}

func TestAnalyzeFlow_GatherTwoBranches(t *testing.T) {
	src := `package flows

import "context"

// flowcraft:flow
func ScatterFlow(ctx context.Context) error {
	durable.Gather(
		func() (any, error) { return FetchA(ctx) },
		func() (any, error) { return FetchB(ctx) },
	)
	return nil
}
`
	fset, fn := parseFlow(t, src, "ScatterFlow")
	reg := Registry{"FetchA": blueprint.ExportStep, "FetchB": blueprint.ExportStep}
	bp, diags := AnalyzeFlow(fset, "flow.go", fn, reg, stdAliases)
	require.Empty(t, diags.All())
	require.NoError(t, bp.Validate())

	gather, ok := bp.NodeByID("gather_1")
	require.True(t, ok)
	require.Equal(t, blueprint.JoinAll, gather.Config.JoinStrategy)
	require.Equal(t, 2, bp.PredecessorCountMap["gather_1"])
	require.ElementsMatch(t, []string{"FetchA_1", "FetchB_1"}, bp.OriginalPredecessorIDMap["gather_1"])

	container, ok := bp.NodeByID("parallel_container_1")
	require.True(t, ok)
	require.Equal(t, blueprint.UsesParallelRoot, container.Uses)
	require.ElementsMatch(t, []string{"start"}, bp.OriginalPredecessorIDMap["FetchA_1"])
}
