package builder

import (
	"fmt"

	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/value"
)

// ports holds the value kind of every input and output slot of a node.
type ports struct {
	in  map[int]value.Kind
	out map[int]value.Kind
}

func portsOf(in, out []value.Kind) ports {
	p := ports{in: make(map[int]value.Kind, len(in)), out: make(map[int]value.Kind, len(out))}
	for i, k := range in {
		p.in[i] = k
	}
	for i, k := range out {
		p.out[i] = k
	}
	return p
}

// checkKinds rejects an edge from output slot of src into input of dst when
// the two carry different kinds. Slots either side does not know are left to
// the wiring to report. A branch condition takes any kind.
func checkKinds(src ports, slot int, dst ports, input int) error {
	if input == node.ConditionInput {
		return nil
	}
	from, ok := src.out[slot]
	if !ok {
		return nil
	}
	to, ok := dst.in[input]
	if !ok {
		return nil
	}
	if from != to {
		return fmt.Errorf("slot %d carries %s, input %d takes %s: %w", slot, from, input, to, node.ErrKindMismatch)
	}
	return nil
}
