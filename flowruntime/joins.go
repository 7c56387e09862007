package flowruntime

import "sync"

// joinTracker tracks, per node, how many predecessors have arrived and
// what each of them produced. Mutated from multiple goroutines only while a
// parallel-container's branches are in flight, so every method locks.
type joinTracker struct {
	mu       sync.Mutex
	arrived  map[string]int
	buffered map[string]map[string]any // nodeID -> predecessorNodeID -> output
	started  map[string]bool          // nodes already dispatched (join=any dedup, and all-join single-fire)
}

func newJoinTracker() *joinTracker {
	return &joinTracker{
		arrived:  make(map[string]int),
		buffered: make(map[string]map[string]any),
		started:  make(map[string]bool),
	}
}

// arrive records that fromNodeID produced output destined for targetNodeID.
// required is predecessorCountMap[targetNodeID]; joinAll selects join
// semantics. Returns (runnable, combinedInput).
func (j *joinTracker) arrive(targetNodeID, fromNodeID string, output any, required int, joinAll bool) (bool, any) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if joinAll {
		if j.buffered[targetNodeID] == nil {
			j.buffered[targetNodeID] = make(map[string]any)
		}
		j.buffered[targetNodeID][fromNodeID] = output
		j.arrived[targetNodeID]++
		if j.arrived[targetNodeID] < required || j.started[targetNodeID] {
			return false, nil
		}
		j.started[targetNodeID] = true
		return true, j.buffered[targetNodeID]
	}

	// joinStrategy: any — first arrival wins, later ones discarded.
	if j.started[targetNodeID] {
		return false, nil
	}
	j.started[targetNodeID] = true
	return true, output
}

// reset clears targetNodeID's arrival bookkeeping once it has actually been
// dispatched. Without this, a node reachable via a loop back-edge (the
// loop-controller itself, or any join inside a loop body) would only ever
// fire on its first round: join=any's started flag and join=all's arrived
// count are otherwise permanent for the life of the execution, which is
// correct for a one-shot diamond join but wrong for a node a later iteration
// revisits.
func (j *joinTracker) reset(targetNodeID string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.arrived, targetNodeID)
	delete(j.buffered, targetNodeID)
	delete(j.started, targetNodeID)
}

// orderInputs renders a join=all node's buffered predecessor outputs as a
// slice ordered by the blueprint's declared incoming-edge order (not
// arrival order), matching the scatter-gather example's [a, b] result.
func orderInputs(order []string, buffered map[string]any) []any {
	out := make([]any, 0, len(order))
	for _, id := range order {
		out = append(out, buffered[id])
	}
	return out
}
