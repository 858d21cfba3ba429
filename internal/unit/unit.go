// Package unit models a process unit: a set of vertices sharing one
// execution core.
package unit

import (
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/scheduler"
)

// Config describes a unit and its position in the mesh.
type Config struct {
	ID   int
	Name string
	X, Y int
}

// Stats summarizes the core usage of a unit.
type Stats struct {
	Nodes    int
	Grants   uint64
	Queued   uint64
	BusyTime time.Duration
}

// Unit owns its vertices and their shared core.
type Unit struct {
	cfg   Config
	k     *kernel.Kernel
	core  *scheduler.Arbiter
	nodes map[int]node.Node
}

// New returns an empty unit.
func New(k *kernel.Kernel, cfg Config) *Unit {
	return &Unit{
		cfg:   cfg,
		k:     k,
		core:  scheduler.New(k, cfg.Name+".core"),
		nodes: make(map[int]node.Node),
	}
}

func (u *Unit) ID() int      { return u.cfg.ID }
func (u *Unit) Name() string { return u.cfg.Name }
func (u *Unit) X() int       { return u.cfg.X }
func (u *Unit) Y() int       { return u.cfg.Y }

// Kernel returns the kernel the unit's routines run on.
func (u *Unit) Kernel() *kernel.Kernel {
	return u.k
}

// Core returns the execution core shared by the unit's vertices.
func (u *Unit) Core() *scheduler.Arbiter { return u.core }

// AddNode places n on the unit.
func (u *Unit) AddNode(n node.Node) error {
	if _, ok := u.nodes[n.ID()]; ok {
		return fmt.Errorf("unit %s: node %d (%s): %w", u.cfg.Name, n.ID(), n.Name(), node.ErrDuplicateID)
	}
	u.nodes[n.ID()] = n
	return nil
}

// Node returns the vertex with the given id.
func (u *Unit) Node(id int) (node.Node, error) {
	n, ok := u.nodes[id]
	if !ok {
		return nil, fmt.Errorf("unit %s: node %d: %w", u.cfg.Name, id, node.ErrUnknownNode)
	}
	return n, nil
}

// Nodes returns the vertices ordered by id.
func (u *Unit) Nodes() []node.Node {
	out := make([]node.Node, 0, len(u.nodes))
	for _, n := range u.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Connect subscribes input of dstID to output slot of srcID.
func (u *Unit) Connect(srcID, slot, dstID, input int) error {
	src, err := u.Node(srcID)
	if err != nil {
		return err
	}
	dst, err := u.Node(dstID)
	if err != nil {
		return err
	}
	return node.Link(src, slot, dst, input)
}

// Stats returns the core usage collected so far.
func (u *Unit) Stats() Stats {
	s := u.core.Stats()
	return Stats{
		Nodes:    len(u.nodes),
		Grants:   s.Grants,
		Queued:   s.Queued,
		BusyTime: s.BusyTime,
	}
}

// Dump describes every vertex of the unit, one per line.
func (u *Unit) Dump() []string {
	lines := make([]string, 0, len(u.nodes))
	for _, n := range u.Nodes() {
		lines = append(lines, node.Describe(n))
	}
	return lines
}
