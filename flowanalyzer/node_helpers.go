package flowanalyzer

import "github.com/flowcraft-dev/flowcraft-go/blueprint"

func newControllerNode(id string, params map[string]any, loc *blueprint.SourceLocation) blueprint.NodeDefinition {
	return blueprint.NodeDefinition{ID: id, Uses: blueprint.UsesLoopController, Params: params, SourceLocation: loc}
}
