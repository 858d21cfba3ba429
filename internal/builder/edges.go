package builder

import (
	"fmt"

	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/topologystore"
)

// resolve finds the node an edge endpoint names. A plain name refers to a
// top-level node; "<memory>.<slot>" refers to a memory value (source side)
// or result (sink side), and returns its slot.
func (b *builder) resolve(raw string, source bool) (*placed, int, bool, error) {
	addr, err := nodeid.Parse(raw)
	if err != nil {
		return nil, 0, false, err
	}

	head := addr.Path[0]
	p, ok := b.nodes[head.Name]
	if !ok {
		return nil, 0, false, fmt.Errorf("%q: %w", raw, node.ErrUnknownNode)
	}
	if head.HasID() && head.ID != p.node.ID() {
		return nil, 0, false, fmt.Errorf("%q: %s has id %d", raw, head.Name, p.node.ID())
	}

	switch len(addr.Path) {
	case 1:
		return p, 0, false, nil
	case 2:
		slots, kind := p.results, "result"
		if source {
			slots, kind = p.values, "value"
		}
		if slots == nil {
			return nil, 0, false, fmt.Errorf("%q: %s is not a memory", raw, head.Name)
		}
		slot, ok := slots[addr.Last().Name]
		if !ok {
			return nil, 0, false, fmt.Errorf("%q: no %s %q: %w", raw, kind, addr.Last().Name, node.ErrUnknownSlot)
		}
		return p, slot, true, nil
	default:
		return nil, 0, false, fmt.Errorf("%q: endpoints are <node> or <memory>.<slot>", raw)
	}
}

func (b *builder) addEdge(e *config.Edge) error {
	from, slot, named, err := b.resolve(e.From, true)
	if err != nil {
		return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
	if !named {
		slot = e.Slot
	}
	to, input, named, err := b.resolve(e.To, false)
	if err != nil {
		return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
	if !named {
		input = e.Input
		if input == config.ConditionInput {
			input = node.ConditionInput
		}
	}

	if err := checkKinds(from.ports, slot, to.ports, input); err != nil {
		return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
	if err := b.sim.Mesh.Connect(from.unit, from.node, slot, to.unit, to.node, input); err != nil {
		return fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
	return b.sim.Topology.AddEdge(b.ctx, topologystore.Edge{
		From:   from.addr,
		Slot:   slot,
		To:     to.addr,
		Input:  input,
		Remote: from.unit.ID() != to.unit.ID(),
	})
}
