package config

import "sync"

// Cell holds the process-wide override. It is shared by every in-flight call
// and is only written by the database switch operation.
type Cell struct {
	mu sync.RWMutex
	o  Override
}

// NewCell returns a Cell holding o.
func NewCell(o Override) *Cell {
	return &Cell{o: o}
}

// Load returns a copy of the current override.
func (c *Cell) Load() Override {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.o
}

// SetDatabase replaces the database field.
func (c *Cell) SetDatabase(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.o.Database = name
}

// Resolver resolves per-call configuration against fixed defaults and the
// shared process override.
type Resolver struct {
	defaults Config
	process  *Cell
}

// NewResolver returns a Resolver. A nil cell is treated as an empty override.
func NewResolver(defaults Config, process *Cell) *Resolver {
	if process == nil {
		process = NewCell(Override{})
	}
	return &Resolver{defaults: defaults, process: process}
}

// Resolve returns the effective configuration for a call. call may be nil.
func (r *Resolver) Resolve(call *Override) Config {
	var o Override
	if call != nil {
		o = *call
	}
	return Resolve(r.defaults, r.process.Load(), o)
}

// Process returns the shared process override cell.
func (r *Resolver) Process() *Cell {
	return r.process
}
