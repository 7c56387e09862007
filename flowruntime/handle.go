package flowruntime

import "github.com/flowcraft-dev/flowcraft-go/blueprint"

// NodeHandle is what spec §4.4 calls "a handle that exposes the context
// (get/set/has/keys) plus the current input... plus the shared
// dependency-injection record plus immutable execution metadata". It is the
// only thing a StepFunc ever touches besides context.Context.
type NodeHandle struct {
	ctx   *blueprint.Context
	input any
	args  []any
	deps  map[string]any
}

// NewNodeHandle builds a NodeHandle directly, for callers outside this
// package that invoke a StepFunc themselves (such as a test of
// manifest.BuildStepFuncs' adapters) rather than going through an Executor
// run.
func NewNodeHandle(ctx *blueprint.Context, input any, args []any, deps map[string]any) *NodeHandle {
	return &NodeHandle{ctx: ctx, input: input, args: args, deps: deps}
}

// Get reads a context key.
func (h *NodeHandle) Get(key string) (any, bool) { return h.ctx.Get(key) }

// Set writes a context key, visible to every later node (spec §4.4:
// "mutations made by a node are visible to its successors").
func (h *NodeHandle) Set(key string, value any) { h.ctx.Set(key, value) }

// Has reports whether key is present in the context.
func (h *NodeHandle) Has(key string) bool { return h.ctx.Has(key) }

// Keys returns the context's keys in insertion order.
func (h *NodeHandle) Keys() []string { return h.ctx.Keys() }

// Input is the previous node's output.
func (h *NodeHandle) Input() any { return h.input }

// Args returns the step call's arguments, evaluated in declared order
// against the current context.
func (h *NodeHandle) Args() []any { return h.args }

// Dep looks up a value from the ambient dependency-injection record (e.g. an
// HTTP client, a model client) the executor was constructed with.
func (h *NodeHandle) Dep(name string) (any, bool) {
	v, ok := h.deps[name]
	return v, ok
}

// Meta returns the execution's immutable metadata, with CurrentNodeID
// refreshed for the node currently executing.
func (h *NodeHandle) Meta() blueprint.Metadata { return h.ctx.Meta }

// Context exposes the underlying blueprint.Context directly, for built-in
// handlers (mappers, loop controller) that need Snapshot/full access.
func (h *NodeHandle) Context() *blueprint.Context { return h.ctx }
