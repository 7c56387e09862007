package blueprint

import "time"

// Metadata is the immutable-per-transition execution record a Context
// carries alongside its key/value data.
type Metadata struct {
	ExecutionID   string    `json:"executionId"`
	BlueprintID   string    `json:"blueprintId"`
	CurrentNodeID string    `json:"currentNodeId"`
	StartedAt     time.Time `json:"startedAt"`
	Environment   map[string]string `json:"environment,omitempty"`
}

// Context is an ordered mapping from string keys to opaque values, shared by
// reference across every node in one execution. Order is preserved (unlike a
// bare Go map) so that JSON emission and diagnostics are deterministic.
type Context struct {
	keys   []string
	values map[string]any
	Meta   Metadata
}

// NewContext creates an empty Context stamped with the given metadata.
func NewContext(meta Metadata) *Context {
	return &Context{values: make(map[string]any), Meta: meta}
}

// Get returns the value stored at key and whether it was present.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Set stores value at key, preserving first-insertion order for new keys.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, exists := c.values[key]; !exists {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Keys returns the context's keys in insertion order.
func (c *Context) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Snapshot returns a shallow copy of the key/value data, e.g. for mapper
// nodes copying keys across a sub-workflow boundary without aliasing the
// parent's key-order slice.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.keys))
	for _, k := range c.keys {
		out[k] = c.values[k]
	}
	return out
}
