// Package graphbuilder flattens the per-flow blueprints the flow analyzer
// produces into a single, subflow-free Blueprint per entry flow: every
// subflow call is inlined, wrapped in a synthesized input-mapper and
// output-mapper pair so the inlined subgraph has exactly one entry and one
// exit, the way spec §4.3 describes.
package graphbuilder

import (
	"fmt"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// Builder flattens blueprints drawn from a fixed set of named flows (the
// project's Registry-backed blueprint map, keyed by flow name).
type Builder struct {
	blueprints map[string]*blueprint.Blueprint
}

// New creates a Builder over the given flow-name-to-blueprint map. The map
// is read, never mutated; Flatten always works on a private copy.
func New(blueprints map[string]*blueprint.Blueprint) *Builder {
	return &Builder{blueprints: blueprints}
}

// Flatten inlines every subflow reachable from rootName's blueprint and
// returns the resulting subflow-free Blueprint. Calling Flatten again on a
// blueprint that already has no subflow nodes is a no-op beyond
// recomputing the two predecessor maps, satisfying the idempotent-flatten
// property.
func (b *Builder) Flatten(rootName string) (*blueprint.Blueprint, error) {
	root, ok := b.blueprints[rootName]
	if !ok {
		return nil, fmt.Errorf("graphbuilder: unknown flow %q", rootName)
	}
	working := cloneBlueprint(root)

	if err := b.inlineAll(working, map[string]bool{rootName: true}); err != nil {
		return nil, err
	}

	working.PredecessorCountMap, working.OriginalPredecessorIDMap = blueprint.ComputePredecessorMaps(working.Nodes, working.Edges)
	return working, nil
}

// inlineAll repeatedly inlines the first remaining subflow node until none
// are left. visiting tracks the chain of flow names currently being expanded
// (an ancestor stack, not a "already processed" set): targetName is added
// before recursing into whatever new subflow calls its own body introduces,
// and only removed once that entire subtree is fully resolved. That recursive
// scoping is what lets a cycle through two or more non-root flows (B calling
// C calling B, with neither being the root) be caught, not just a cycle that
// happens to route back through the root flow's own name.
func (b *Builder) inlineAll(bp *blueprint.Blueprint, visiting map[string]bool) error {
	for {
		idx := indexOfSubflow(bp.Nodes)
		if idx < 0 {
			return nil
		}
		callNode := bp.Nodes[idx]
		targetName, _ := callNode.Params["blueprintId"].(string)
		if visiting[targetName] {
			return fmt.Errorf("graphbuilder: subflow cycle detected through %q", targetName)
		}
		sub, ok := b.blueprints[targetName]
		if !ok {
			return fmt.Errorf("graphbuilder: subflow %q not found", targetName)
		}
		visiting[targetName] = true
		b.inlineOne(bp, callNode, sub, targetName)
		if err := b.inlineAll(bp, visiting); err != nil {
			return err
		}
		delete(visiting, targetName)
	}
}

// inlineOne replaces callNode (a "subflow" node in bp) with a prefixed copy
// of sub's nodes and edges, bracketed by an input-mapper that receives
// callNode's former predecessors and an output-mapper that becomes the
// producer for callNode's former consumers.
func (b *Builder) inlineOne(bp *blueprint.Blueprint, callNode blueprint.NodeDefinition, sub *blueprint.Blueprint, targetName string) {
	prefix := callNode.ID + "__"
	removeNode(bp, callNode.ID)

	idMap := make(map[string]string, len(sub.Nodes))
	copiedNodes := make([]blueprint.NodeDefinition, 0, len(sub.Nodes))
	for _, n := range sub.Nodes {
		newID := prefix + n.ID
		idMap[n.ID] = newID
		cp := cloneNode(n)
		cp.ID = newID
		if cp.OriginalID == "" {
			cp.OriginalID = n.ID
		}
		if cp.Config != nil && cp.Config.Fallback != "" {
			cp.Config.Fallback = prefix + cp.Config.Fallback
		}
		copiedNodes = append(copiedNodes, cp)
	}

	copiedEdges := make([]blueprint.EdgeDefinition, 0, len(sub.Edges))
	for _, e := range sub.Edges {
		copiedEdges = append(copiedEdges, blueprint.EdgeDefinition{
			Source: prefix + e.Source, Target: prefix + e.Target,
			Action: e.Action, Condition: e.Condition, SourceLocation: e.SourceLocation,
		})
	}

	inputMapperID := prefix + "input_mapper"
	inputMapper := blueprint.NodeDefinition{
		ID: inputMapperID, Uses: blueprint.UsesInputMapper, OriginalID: inputMapperID,
		Params: map[string]any{"blueprintId": targetName, "args": callNode.Params["args"]},
	}
	outputMapperID := prefix + "output_mapper"
	outputMapper := blueprint.NodeDefinition{ID: outputMapperID, Uses: blueprint.UsesOutputMapper, OriginalID: outputMapperID}

	for i := range bp.Edges {
		if bp.Edges[i].Target == callNode.ID {
			bp.Edges[i].Target = inputMapperID
		}
		if bp.Edges[i].Source == callNode.ID {
			bp.Edges[i].Source = outputMapperID
		}
	}

	copiedEdges = append(copiedEdges, blueprint.EdgeDefinition{Source: inputMapperID, Target: idMap[sub.StartNodeID]})

	hasOutgoing := make(map[string]bool, len(copiedNodes))
	for _, e := range copiedEdges {
		hasOutgoing[e.Source] = true
	}
	for _, n := range copiedNodes {
		if !hasOutgoing[n.ID] {
			copiedEdges = append(copiedEdges, blueprint.EdgeDefinition{Source: n.ID, Target: outputMapperID})
		}
	}

	bp.Nodes = append(bp.Nodes, inputMapper)
	bp.Nodes = append(bp.Nodes, copiedNodes...)
	bp.Nodes = append(bp.Nodes, outputMapper)
	bp.Edges = append(bp.Edges, copiedEdges...)
}

func indexOfSubflow(nodes []blueprint.NodeDefinition) int {
	for i, n := range nodes {
		if n.Uses == blueprint.UsesSubflow {
			return i
		}
	}
	return -1
}

func removeNode(bp *blueprint.Blueprint, id string) {
	out := bp.Nodes[:0]
	for _, n := range bp.Nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	bp.Nodes = out
}
