// Package inmemorytopology provides a simple, thread-safe, in-memory
// implementation of the topologystore.Store interface.
package inmemorytopology

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/topologystore"
)

// Store implements topologystore.Store with maps guarded by a RWMutex.
type Store struct {
	mu     sync.RWMutex
	byID   map[int]topologystore.Entry
	byAddr map[string]int
	edges  []topologystore.Edge
}

// New creates an empty store.
func New() topologystore.Store {
	return &Store{
		byID:   make(map[int]topologystore.Entry),
		byAddr: make(map[string]int),
	}
}

// Register adds an entry, rejecting duplicate ids and addresses.
func (s *Store) Register(ctx context.Context, e topologystore.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.byID[e.ID]; ok {
		return fmt.Errorf("id %d of %s already used by %s: %w", e.ID, e.Address, prev.Address, node.ErrDuplicateID)
	}
	key := e.Address.String()
	if _, ok := s.byAddr[key]; ok {
		return fmt.Errorf("address %s registered twice: %w", key, node.ErrDuplicateID)
	}
	s.byID[e.ID] = e
	s.byAddr[key] = e.ID
	return nil
}

// Lookup returns the entry with the given id.
func (s *Store) Lookup(ctx context.Context, id int) (topologystore.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[id]
	return e, ok
}

// Resolve returns the entry registered under addr.
func (s *Store) Resolve(ctx context.Context, addr nodeid.Address) (topologystore.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byAddr[addr.String()]
	if !ok {
		return topologystore.Entry{}, false
	}
	return s.byID[id], true
}

// All returns every entry ordered by id.
func (s *Store) All(ctx context.Context) []topologystore.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]topologystore.Entry, 0, len(s.byID))
	for _, e := range s.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AddEdge records an edge between two registered nodes.
func (s *Store) AddEdge(ctx context.Context, e topologystore.Edge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, end := range []nodeid.Address{e.From, e.To} {
		if _, ok := s.byAddr[end.String()]; !ok {
			return fmt.Errorf("edge end %s: %w", end, topologystore.ErrNotFound)
		}
	}
	s.edges = append(s.edges, e)
	return nil
}

// Edges returns a snapshot of the recorded edges.
func (s *Store) Edges(ctx context.Context) []topologystore.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]topologystore.Edge, len(s.edges))
	copy(out, s.edges)
	return out
}
