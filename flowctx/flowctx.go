// Package flowctx lets a flow body read and write the execution's shared
// Context without the compiler treating it as a durable step. Calls into
// this package are recognised syntactically by the analyzer and compile
// away entirely; they never become graph nodes.
package flowctx

import "context"

type ctxKey string

// Get reads a value previously stored in the execution's Context. It has no
// durability implications: the analyzer lowers calls of this exact shape to
// a pure read with no graph node.
func Get(ctx context.Context, key string) (any, bool) {
	v := ctx.Value(ctxKey(key))
	return v, v != nil
}

// Set stores a value in the execution's Context for later steps to read,
// returning the context carrying it. Recognised by the analyzer as a pure
// write; produces no graph node.
func Set(ctx context.Context, key string, value any) context.Context {
	return context.WithValue(ctx, ctxKey(key), value)
}
