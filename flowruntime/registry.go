package flowruntime

import (
	"context"
	"fmt"

	"github.com/flowcraft-dev/flowcraft-go/blueprint"
)

// StepFunc is the fixed-signature adapter every user step is wired through.
// manifest.BuildStepFuncs produces one of these per generated Registry
// entry, closing over the real exported function and passing h.Args() as
// that function's actual parameter list.
type StepFunc func(ctx context.Context, h *NodeHandle) (any, error)

func isBuiltinUses(uses string) bool {
	switch uses {
	case blueprint.UsesStart, blueprint.UsesSubflow, blueprint.UsesLoopController,
		blueprint.UsesJoin, blueprint.UsesGather, blueprint.UsesSleep, blueprint.UsesWait,
		blueprint.UsesWebhook, blueprint.UsesInputMapper, blueprint.UsesOutputMapper,
		blueprint.UsesConditionalJoin, blueprint.UsesParallelRoot, blueprint.UsesNoop:
		return true
	default:
		return false
	}
}

// hydrate verifies that every non-builtin node in bp has a StepFunc in
// steps, per spec §4.4 ("Unknown uses is a fatal error").
func hydrate(bp *blueprint.Blueprint, steps map[string]StepFunc) error {
	for _, n := range bp.Nodes {
		if isBuiltinUses(n.Uses) {
			continue
		}
		if _, ok := steps[n.Uses]; !ok {
			return fmt.Errorf("%w: %q (node %s)", ErrUnknownUses, n.Uses, n.ID)
		}
	}
	return nil
}
