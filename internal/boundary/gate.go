package boundary

import "sync"

// Gate runs a setup function exactly once, however many entry points call
// Ensure and in whatever order. A panicking setup still counts as run.
type Gate struct {
	once  sync.Once
	setup func()
}

// NewGate returns a gate around setup.
func NewGate(setup func()) *Gate {
	return &Gate{setup: setup}
}

// Ensure runs setup on first call. Later calls are no-ops.
func (g *Gate) Ensure() {
	g.once.Do(g.setup)
}
