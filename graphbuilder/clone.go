package graphbuilder

import "github.com/flowcraft-dev/flowcraft-go/blueprint"

func cloneBlueprint(bp *blueprint.Blueprint) *blueprint.Blueprint {
	cp := &blueprint.Blueprint{ID: bp.ID, StartNodeID: bp.StartNodeID}
	cp.Nodes = make([]blueprint.NodeDefinition, len(bp.Nodes))
	for i, n := range bp.Nodes {
		cp.Nodes[i] = cloneNode(n)
	}
	cp.Edges = append([]blueprint.EdgeDefinition(nil), bp.Edges...)
	return cp
}

func cloneNode(n blueprint.NodeDefinition) blueprint.NodeDefinition {
	cp := n
	if n.Config != nil {
		cfg := *n.Config
		if n.Config.Extra != nil {
			cfg.Extra = make(map[string]any, len(n.Config.Extra))
			for k, v := range n.Config.Extra {
				cfg.Extra[k] = v
			}
		}
		cp.Config = &cfg
	}
	return cp
}
