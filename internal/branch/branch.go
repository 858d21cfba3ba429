// Package branch implements the if/then/else vertex. A branch waits for all
// of its inputs plus a condition, forwards the inputs into exactly one of its
// two scopes, waits for that scope's results and republishes them.
package branch

import (
	"fmt"
	"time"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/observer"
	"github.com/specialistvlad/dfsim/internal/value"
)

// Config describes a branch. Inputs lists the kind of every incoming edge;
// the branch has as many outputs as inputs.
type Config struct {
	ID      int
	Name    string
	Cluster int
	Cost    time.Duration
	Inputs  []value.Kind
}

// Stats counts how often each scope ran.
type Stats struct {
	Then uint64
	Else uint64
}

// Node is a branch vertex.
type Node struct {
	node.Task

	k      *kernel.Kernel
	kinds  []value.Kind
	cond   []byte
	condIn *observer.Value
	begin  [][]byte
	snap   [][]byte
	end    [][]byte

	ready  *kernel.Barrier
	scopes [2]*scope
}

// New builds the branch and spawns its routine on k.
func New(k *kernel.Kernel, cfg Config) (*Node, error) {
	if len(cfg.Inputs) == 0 {
		return nil, fmt.Errorf("branch %s: no inputs", cfg.Name)
	}

	b := &Node{
		Task: node.NewTask(node.Attrs{
			ID:      cfg.ID,
			Name:    cfg.Name,
			Cluster: cfg.Cluster,
			Cost:    cfg.Cost,
			Class:   "branch",
		}),
		k:     k,
		kinds: cfg.Inputs,
		cond:  value.New(value.Int),
		ready: k.NewBarrier(cfg.Name + ".begin"),
	}

	for i, kind := range cfg.Inputs {
		buf := value.New(kind)
		b.begin = append(b.begin, buf)
		b.snap = append(b.snap, value.New(kind))
		sig := k.NewSignal(fmt.Sprintf("%s.in%d", cfg.Name, i))
		b.AddInput(observer.NewValue(sig, buf))
		b.ready.Add(sig)
	}
	b.end = make([][]byte, len(cfg.Inputs))

	condSig := k.NewSignal(cfg.Name + ".condition")
	b.condIn = observer.NewValue(condSig, b.cond)
	b.ready.Add(condSig)

	b.scopes[Then] = newScope(k, cfg.Name, Then)
	b.scopes[Else] = newScope(k, cfg.Name, Else)

	k.Spawn(cfg.Name, b.run)
	return b, nil
}

// Outputs returns the number of end slots, one per incoming edge.
func (b *Node) Outputs() int { return len(b.end) }

// Input returns the observer of an incoming edge, or the condition observer
// for node.ConditionInput.
func (b *Node) Input(i int) (observer.Observer, error) {
	if i == node.ConditionInput {
		return b.condIn, nil
	}
	return b.Task.Input(i)
}

// Stats returns how often each scope ran.
func (b *Node) Stats() Stats {
	return Stats{Then: b.scopes[Then].runs, Else: b.scopes[Else].runs}
}

// Members returns the nodes of one scope in insertion order.
func (b *Node) Members(side Side) []node.Node {
	s := b.scopes[side]
	out := make([]node.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id])
	}
	return out
}

// AddNode places n inside the scope of side.
func (b *Node) AddNode(side Side, n node.Node) error {
	return b.scopes[side].add(n)
}

// Connect wires two members of the same scope.
func (b *Node) Connect(side Side, fromID, slot, toID, input int) error {
	s := b.scopes[side]
	from, err := s.member(fromID)
	if err != nil {
		return err
	}
	to, err := s.member(toID)
	if err != nil {
		return err
	}
	return node.Link(from, slot, to, input)
}

// BindBegin feeds branch input slot into input of member toID whenever the
// scope is activated.
func (b *Node) BindBegin(side Side, toID, input, slot int) error {
	s := b.scopes[side]
	if slot < 0 || slot >= len(b.begin) {
		return fmt.Errorf("%s: begin slot %d: %w", s.name, slot, node.ErrUnknownSlot)
	}
	to, err := s.member(toID)
	if err != nil {
		return err
	}
	obs, err := to.Input(input)
	if err != nil {
		return fmt.Errorf("%s: bind begin %d -> %s: %w", s.name, slot, to.Name(), err)
	}
	s.bindBegin(obs, slot)
	return nil
}

// BindEnd makes output slot of member fromID the value of edge when the
// scope completes.
func (b *Node) BindEnd(side Side, fromID, slot, edge int) error {
	s := b.scopes[side]
	if edge < 0 || edge >= len(b.end) {
		return fmt.Errorf("%s: end edge %d: %w", s.name, edge, node.ErrUnknownSlot)
	}
	from, err := s.member(fromID)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= from.Outputs() {
		return fmt.Errorf("%s: %s slot %d: %w", s.name, from.Name(), slot, node.ErrUnknownSlot)
	}
	sig := b.k.NewSignal(fmt.Sprintf("%s.end%d", s.name, edge))
	obs := observer.NewRouting(sig, &b.end[edge], b.kinds[edge].Size())
	s.endObs.Add(obs)
	s.end.Add(sig)
	from.Register(obs, slot)
	return nil
}

func (b *Node) run(p *kernel.Process) {
	for {
		p.Wait(b.ready)
		for i := range b.begin {
			copy(b.snap[i], b.begin[i])
			b.end[i] = b.snap[i]
		}

		s := b.scopes[Else]
		if value.Truth(b.cond) {
			s = b.scopes[Then]
		}
		s.dispatch(b.snap)

		if s.end.Len() > 0 {
			p.Wait(s.end)
		}
		for _, id := range s.endObs.IDs() {
			obs, _ := s.endObs.Get(id)
			obs.ResetChanged()
		}
		for edge, data := range b.end {
			b.Notify(edge, data)
		}
	}
}
