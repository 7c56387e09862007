package blueprint

// Blueprint is the fully serializable, language-agnostic representation of a
// compiled workflow: nodes, edges, the start node, and the two predecessor
// maps the builder computes once and the executor/tooling read many times.
//
// Blueprint values are built during analysis, frozen, and never mutated
// afterwards (spec §3 Lifecycles).
type Blueprint struct {
	ID    string           `json:"id"`
	Nodes []NodeDefinition `json:"nodes"`
	Edges []EdgeDefinition `json:"edges"`

	StartNodeID string `json:"startNodeId"`

	// PredecessorCountMap[id] equals the number of edges whose target is id
	// (invariant 7).
	PredecessorCountMap map[string]int `json:"predecessorCountMap"`

	// OriginalPredecessorIDMap[id] contains only user-defined producers,
	// transparently traversing internal mappers/containers except that an
	// output-mapper is itself the producer for consumers outside its
	// sub-workflow (invariant 8).
	OriginalPredecessorIDMap map[string][]string `json:"originalPredecessorIdMap"`
}

// NodeByID looks up a node definition by id. Returns false if absent.
func (b *Blueprint) NodeByID(id string) (NodeDefinition, bool) {
	for _, n := range b.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeDefinition{}, false
}

// OutgoingEdges returns, in declaration order, every edge whose Source is id.
func (b *Blueprint) OutgoingEdges(id string) []EdgeDefinition {
	var out []EdgeDefinition
	for _, e := range b.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns, in declaration order, every edge whose Target is id.
func (b *Blueprint) IncomingEdges(id string) []EdgeDefinition {
	var in []EdgeDefinition
	for _, e := range b.Edges {
		if e.Target == id {
			in = append(in, e)
		}
	}
	return in
}

// Validate checks the structural invariants from spec §3 that can be
// verified without running the graph (1, 2, 3 reachability, 6 join
// validity, 7 predecessor-count correctness). It does not check invariant 4
// (degree shape) or 5/8 (internal-transparency); the latter the builder
// guarantees by construction and graphbuilder/builder_test.go exercises
// directly.
func (b *Blueprint) Validate() error {
	seen := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		if seen[n.ID] {
			return &ValidationError{Message: "duplicate node id: " + n.ID}
		}
		seen[n.ID] = true
	}

	for _, e := range b.Edges {
		if !seen[e.Source] {
			return &ValidationError{Message: "edge references unknown source: " + e.Source}
		}
		if !seen[e.Target] {
			return &ValidationError{Message: "edge references unknown target: " + e.Target}
		}
	}

	if b.StartNodeID == "" || !seen[b.StartNodeID] {
		return &ValidationError{Message: "start node does not exist in blueprint: " + b.StartNodeID}
	}

	if err := b.validateReachability(); err != nil {
		return err
	}

	counts := make(map[string]int, len(b.Nodes))
	for _, e := range b.Edges {
		counts[e.Target]++
	}
	for id, want := range b.PredecessorCountMap {
		if counts[id] != want {
			return &ValidationError{Message: "predecessorCountMap mismatch for " + id}
		}
	}

	for _, n := range b.Nodes {
		if n.Config != nil && n.Config.JoinStrategy == JoinAll {
			if len(b.IncomingEdges(n.ID)) < 2 {
				return &ValidationError{Message: "join=all node has fewer than 2 incoming edges: " + n.ID}
			}
		}
	}

	return nil
}

func (b *Blueprint) validateReachability() error {
	adj := make(map[string][]string, len(b.Nodes))
	for _, e := range b.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}
	// A fallback target is reached by failure routing rather than a normal
	// edge; it still counts as reachable so a try/catch's catch branch isn't
	// flagged as dead code.
	for _, n := range b.Nodes {
		if n.Config != nil && n.Config.Fallback != "" {
			adj[n.ID] = append(adj[n.ID], n.Config.Fallback)
		}
	}

	visited := map[string]bool{b.StartNodeID: true}
	queue := []string{b.StartNodeID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, n := range b.Nodes {
		if !visited[n.ID] {
			return &ValidationError{Message: "node not reachable from start: " + n.ID}
		}
	}
	return nil
}

// ValidationError reports a structural invariant violation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "blueprint: " + e.Message }
