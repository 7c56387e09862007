package blueprint

// NodeResult is produced by one node execution and drives edge selection.
//
// If Action is non-empty, the executor selects the outgoing edge whose
// Action matches. If Action is empty, the executor selects the unique edge
// with neither Action nor Condition (the default edge). A non-nil Err halts
// that node's branch unless the node has a configured fallback.
type NodeResult struct {
	Output any
	Action string
	Err    error
}
