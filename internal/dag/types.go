package dag

import "errors"

// ErrCycle is wrapped by every cycle error.
var ErrCycle = errors.New("cycle detected")

// Graph is a collection of nodes and their dependencies. It is not safe for
// concurrent mutation.
type Graph struct {
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
	// order remembers insertion order so results are deterministic.
	order []string
}

// node is un-exported to enforce interaction through string IDs.
type node struct {
	id string
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
