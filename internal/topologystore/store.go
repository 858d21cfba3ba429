// Package topologystore defines the registry of everything the builder places
// in a simulated graph.
//
// # Why Topology Store Exists
//
// Node ids are issued by the graph description, not by a global counter, so
// something has to guarantee that they are unique across units, memories and
// branch scopes. The store is that single authority. It also records the
// edges of the graph so the application can report the topology it built.
//
// # Lifecycle
//
//  1. Created once per simulation.
//  2. Populated by the builder while the graph is assembled.
//  3. Read-only while the kernel runs (reports, traces).
package topologystore

import (
	"context"
	"errors"

	"github.com/specialistvlad/dfsim/internal/nodeid"
)

// ErrNotFound is returned when a lookup misses.
var ErrNotFound = errors.New("not found in topology")

// Entry describes one registered node.
type Entry struct {
	ID      int
	Address nodeid.Address
	Class   string
	Unit    string
}

// Edge is a producer/consumer relation between two registered nodes.
type Edge struct {
	From  nodeid.Address
	Slot  int
	To    nodeid.Address
	Input int
	// Remote is set when the edge crosses the mesh.
	Remote bool
}

// Store is the graph-wide node registry.
//
// Implementations MUST be safe for concurrent use.
type Store interface {
	// Register adds an entry. An entry whose id is already registered is
	// rejected with an error wrapping node.ErrDuplicateID.
	Register(ctx context.Context, e Entry) error

	// Lookup returns the entry with the given id.
	Lookup(ctx context.Context, id int) (Entry, bool)

	// Resolve returns the entry registered under a canonical address.
	Resolve(ctx context.Context, addr nodeid.Address) (Entry, bool)

	// All returns every entry ordered by id.
	All(ctx context.Context) []Entry

	// AddEdge records an edge. Both ends must be registered.
	AddEdge(ctx context.Context, e Edge) error

	// Edges returns the recorded edges in insertion order.
	Edges(ctx context.Context) []Edge
}
