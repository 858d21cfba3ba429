package branch

import (
	"fmt"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/observer"
)

// Side selects one of the two scopes of a branch.
type Side int

const (
	Then Side = iota
	Else
)

func (s Side) String() string {
	if s == Then {
		return "then"
	}
	return "else"
}

// scope is the body of one side of a branch. Its publisher feeds the
// members bound to branch inputs; its end observers collect the values the
// members hand back.
type scope struct {
	side    Side
	name    string
	pub     node.Publisher
	slots   []int
	members map[int]node.Node
	order   []int
	end     *kernel.Barrier
	endObs  *observer.Pool[*observer.Routing]
	runs    uint64
}

func newScope(k *kernel.Kernel, owner string, side Side) *scope {
	name := owner + "." + side.String()
	return &scope{
		side:    side,
		name:    name,
		members: make(map[int]node.Node),
		end:     k.NewBarrier(name + ".end"),
		endObs:  observer.NewPool[*observer.Routing](),
	}
}

func (s *scope) add(n node.Node) error {
	if _, ok := s.members[n.ID()]; ok {
		return fmt.Errorf("%s: node %d (%s): %w", s.name, n.ID(), n.Name(), node.ErrDuplicateID)
	}
	s.members[n.ID()] = n
	s.order = append(s.order, n.ID())
	return nil
}

func (s *scope) member(id int) (node.Node, error) {
	n, ok := s.members[id]
	if !ok {
		return nil, fmt.Errorf("%s: node %d: %w", s.name, id, node.ErrUnknownNode)
	}
	return n, nil
}

// bindBegin registers obs on the scope publisher at slot and remembers the
// slot for dispatch.
func (s *scope) bindBegin(obs observer.Observer, slot int) {
	s.pub.Register(obs, slot)
	for _, existing := range s.slots {
		if existing == slot {
			return
		}
	}
	s.slots = append(s.slots, slot)
}

func (s *scope) dispatch(data [][]byte) {
	s.runs++
	for _, slot := range s.slots {
		s.pub.Notify(slot, data[slot])
	}
}
