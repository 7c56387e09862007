package blueprint

// ComputePredecessorMaps derives PredecessorCountMap and
// OriginalPredecessorIDMap from a node/edge set. Both the flow analyzer and
// the graph builder call this after they finish rewriting edges, so the two
// maps are always derived rather than maintained by hand.
//
// OriginalPredecessorIDMap traverses transparently through nodes for which
// IsInternal is true (invariant 8): an internal node contributes its own
// predecessors' ids in its place, except that it never unwinds past a node
// that isn't internal. An output-mapper is the exception: it is listed
// itself, as the producer for its consumers, rather than unwound.
func ComputePredecessorMaps(nodes []NodeDefinition, edges []EdgeDefinition) (map[string]int, map[string][]string) {
	counts := make(map[string]int, len(nodes))
	direct := make(map[string][]string, len(nodes))
	byID := make(map[string]NodeDefinition, len(nodes))
	for _, n := range nodes {
		counts[n.ID] = 0
		byID[n.ID] = n
	}
	for _, e := range edges {
		counts[e.Target]++
		direct[e.Target] = append(direct[e.Target], e.Source)
	}

	original := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		original[n.ID] = resolveOriginalPredecessors(n.ID, direct, byID, map[string]bool{})
	}
	return counts, original
}

func resolveOriginalPredecessors(id string, direct map[string][]string, byID map[string]NodeDefinition, visiting map[string]bool) []string {
	var out []string
	for _, pred := range direct[id] {
		n, ok := byID[pred]
		if ok && n.IsInternal() && n.Uses != UsesOutputMapper {
			if visiting[pred] {
				continue
			}
			visiting[pred] = true
			out = append(out, resolveOriginalPredecessors(pred, direct, byID, visiting)...)
			continue
		}
		out = append(out, pred)
	}
	return out
}
