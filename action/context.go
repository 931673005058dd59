package action

import "sync"

// Context is the per-execution key/value map actions use to hand values to
// later steps in the same plan. It is created fresh for every Plan
// execution and discarded afterward: it is owned by a single execute call
// and never shared across executions.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext returns an empty, ready-to-use action Context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under key, overwriting any existing entry.
func (c *Context) Set(key string, value any) {
	if key == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get retrieves the value stored under key. The boolean reports whether the
// key was present.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}
