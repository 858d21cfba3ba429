package noc

import (
	"fmt"
	"time"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/unit"
)

// Config describes the mesh.
type Config struct {
	Width, Height  int
	HopLatency     time.Duration
	RoutingLatency time.Duration
	Diagonal       bool
}

// Mesh is a grid of interconnects, one per unit.
type Mesh struct {
	k      *kernel.Kernel
	cfg    Config
	grid   map[[2]int]*Interconnect
	byUnit map[int]*Interconnect
	order  []*Interconnect
}

// NewMesh returns an empty mesh.
func NewMesh(k *kernel.Kernel, cfg Config) (*Mesh, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("mesh: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	return &Mesh{
		k:      k,
		cfg:    cfg,
		grid:   make(map[[2]int]*Interconnect),
		byUnit: make(map[int]*Interconnect),
	}, nil
}

// Config returns the mesh configuration.
func (m *Mesh) Config() Config { return m.cfg }

// Attach gives u an interconnect at the unit's position.
func (m *Mesh) Attach(u *unit.Unit) (*Interconnect, error) {
	x, y := u.X(), u.Y()
	if x < 0 || y < 0 || x >= m.cfg.Width || y >= m.cfg.Height {
		return nil, fmt.Errorf("mesh: unit %s at (%d,%d) is outside the %dx%d grid", u.Name(), x, y, m.cfg.Width, m.cfg.Height)
	}
	if other, ok := m.grid[[2]int{x, y}]; ok {
		return nil, fmt.Errorf("mesh: unit %s at (%d,%d) collides with %s", u.Name(), x, y, other.name)
	}
	if _, ok := m.byUnit[u.ID()]; ok {
		return nil, fmt.Errorf("mesh: unit %s attached twice", u.Name())
	}
	ic := newInterconnect(m, u.Name()+".noc", x, y)
	m.grid[[2]int{x, y}] = ic
	m.byUnit[u.ID()] = ic
	m.order = append(m.order, ic)
	return ic, nil
}

// Interconnect returns the interconnect of u.
func (m *Mesh) Interconnect(u *unit.Unit) (*Interconnect, error) {
	ic, ok := m.byUnit[u.ID()]
	if !ok {
		return nil, fmt.Errorf("mesh: unit %s is not attached", u.Name())
	}
	return ic, nil
}

// Interconnects returns every interconnect in attach order.
func (m *Mesh) Interconnects() []*Interconnect {
	return m.order
}

func (m *Mesh) at(x, y int) *Interconnect {
	return m.grid[[2]int{x, y}]
}

// Connect subscribes input of to, placed on dst, to output slot of from,
// placed on src. Edges between units travel through the mesh; edges within a
// unit are linked directly.
func (m *Mesh) Connect(src *unit.Unit, from node.Node, slot int, dst *unit.Unit, to node.Node, input int) error {
	if src.ID() == dst.ID() {
		return node.Link(from, slot, to, input)
	}
	in, err := m.Interconnect(src)
	if err != nil {
		return err
	}
	out, err := m.Interconnect(dst)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= from.Outputs() {
		return fmt.Errorf("%s slot %d: %w", from.Name(), slot, node.ErrUnknownSlot)
	}
	obs, err := to.Input(input)
	if err != nil {
		return fmt.Errorf("connect %s[%d] -> %s: %w", from.Name(), slot, to.Name(), err)
	}

	dx, dy := out.x-in.x, out.y-in.y
	if err := m.checkPath(in, dx, dy); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", in.name, out.name, err)
	}

	destSlot := out.reserveSlot()
	out.Register(obs, destSlot)
	_, route := in.AddRoute(Descriptor{
		Link:     NextHop(dx, dy, m.cfg.Diagonal),
		DX:       dx,
		DY:       dy,
		DestSlot: destSlot,
	})
	from.Register(route, slot)
	return nil
}

// checkPath walks the hops a transaction would take and makes sure every
// position on the way has an interconnect.
func (m *Mesh) checkPath(from *Interconnect, dx, dy int) error {
	x, y := from.x, from.y
	for {
		d := NextHop(dx, dy, m.cfg.Diagonal)
		if d == Target {
			return nil
		}
		ox, oy := d.Offset()
		x, y = x+ox, y+oy
		if m.at(x, y) == nil {
			return fmt.Errorf("no unit at (%d,%d): %w", x, y, ErrNoRoute)
		}
		if ox != 0 {
			dx -= ox
		}
		if oy != 0 {
			dy -= oy
		}
	}
}
