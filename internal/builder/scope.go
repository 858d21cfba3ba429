package builder

import (
	"fmt"

	"github.com/specialistvlad/dfsim/internal/branch"
	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/topologystore"
	"github.com/specialistvlad/dfsim/internal/unit"
)

// member is a node placed inside a branch scope.
type member struct {
	node  node.Node
	addr  nodeid.Address
	ports ports
}

func (b *builder) buildScopes(n *branch.Node, br *config.Branch, u *unit.Unit, addr nodeid.Address) error {
	for _, side := range []branch.Side{branch.Then, branch.Else} {
		s := br.Then
		if side == branch.Else {
			s = br.Else
		}
		if s == nil {
			continue
		}
		if err := b.buildScope(n, branchPorts(br), side, s, u, addr.Child(side.String())); err != nil {
			return fmt.Errorf("%s: %w", addr.Child(side.String()), err)
		}
	}
	return nil
}

func (b *builder) buildScope(n *branch.Node, own ports, side branch.Side, s *config.Scope, u *unit.Unit, addr nodeid.Address) error {
	local := make(map[string]member)
	add := func(name string, m member) error {
		if _, ok := local[name]; ok {
			return fmt.Errorf("node name %q declared twice", name)
		}
		if err := b.registerTopology(m.node, u, m.addr); err != nil {
			return err
		}
		if err := u.AddNode(m.node); err != nil {
			return err
		}
		if err := n.AddNode(side, m.node); err != nil {
			return err
		}
		local[name] = m
		return nil
	}
	lookup := func(name string) (member, error) {
		m, ok := local[name]
		if !ok {
			return member{}, fmt.Errorf("%q: %w", name, node.ErrUnknownNode)
		}
		return m, nil
	}

	for _, v := range s.Vertices {
		if v.Unit != u.Name() {
			return fmt.Errorf("vertex %q on unit %q: scope members stay on unit %s", v.Name, v.Unit, u.Name())
		}
		vaddr := addr.Node(v.Name, v.ID)
		op, pt, err := b.newVertex(v, u, vaddr)
		if err != nil {
			return err
		}
		if err := add(v.Name, member{node: op, addr: vaddr, ports: pt}); err != nil {
			return err
		}
	}

	for _, cb := range s.Branches {
		if cb.Unit != u.Name() {
			return fmt.Errorf("branch %q on unit %q: scope members stay on unit %s", cb.Name, cb.Unit, u.Name())
		}
		baddr := addr.Node(cb.Name, cb.ID)
		nested, err := b.newBranch(cb, baddr)
		if err != nil {
			return err
		}
		if err := add(cb.Name, member{node: nested, addr: baddr, ports: branchPorts(cb)}); err != nil {
			return err
		}
		if err := b.buildScopes(nested, cb, u, baddr); err != nil {
			return err
		}
	}

	for _, c := range s.Connects {
		from, err := lookup(c.From)
		if err != nil {
			return err
		}
		to, err := lookup(c.To)
		if err != nil {
			return err
		}
		if err := checkKinds(from.ports, c.Slot, to.ports, c.Input); err != nil {
			return fmt.Errorf("connect %s -> %s: %w", c.From, c.To, err)
		}
		if err := n.Connect(side, from.node.ID(), c.Slot, to.node.ID(), c.Input); err != nil {
			return err
		}
		if err := b.sim.Topology.AddEdge(b.ctx, topologystore.Edge{From: from.addr, Slot: c.Slot, To: to.addr, Input: c.Input}); err != nil {
			return err
		}
	}

	for _, bg := range s.Begins {
		to, err := lookup(bg.To)
		if err != nil {
			return err
		}
		if err := checkKinds(own, bg.Slot, to.ports, bg.Input); err != nil {
			return fmt.Errorf("begin -> %s: %w", bg.To, err)
		}
		if err := n.BindBegin(side, to.node.ID(), bg.Input, bg.Slot); err != nil {
			return err
		}
	}

	for _, e := range s.Ends {
		from, err := lookup(e.From)
		if err != nil {
			return err
		}
		if err := checkKinds(from.ports, e.Slot, own, e.Edge); err != nil {
			return fmt.Errorf("end %s: %w", e.From, err)
		}
		if err := n.BindEnd(side, from.node.ID(), e.Slot, e.Edge); err != nil {
			return err
		}
	}
	return nil
}
