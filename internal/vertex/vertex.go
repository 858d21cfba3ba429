// Package vertex is the catalog of concrete operators. Each kind maps to the
// value kinds of its inputs and outputs and a compute function over them.
package vertex

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/value"
)

// ErrUnknownKind is returned for a kind the catalog does not have.
var ErrUnknownKind = errors.New("unknown vertex kind")

type entry struct {
	in      []value.Kind
	out     []value.Kind
	compute node.ComputeFunc
}

var (
	ints1 = []value.Kind{value.Int}
	ints2 = []value.Kind{value.Int, value.Int}
	bool1 = []value.Kind{value.Bool}
	bool2 = []value.Kind{value.Bool, value.Bool}
)

func intOp(f func(a, b int64) int64) node.ComputeFunc {
	return func(in, out [][]byte) {
		value.PutInt(out[0], f(value.Int64(in[0]), value.Int64(in[1])))
	}
}

var catalog = map[string]entry{
	"add":    {in: ints2, out: ints1, compute: intOp(func(a, b int64) int64 { return a + b })},
	"sub":    {in: ints2, out: ints1, compute: intOp(func(a, b int64) int64 { return a - b })},
	"bitand": {in: ints2, out: ints1, compute: intOp(func(a, b int64) int64 { return a & b })},
	"bitor":  {in: ints2, out: ints1, compute: intOp(func(a, b int64) int64 { return a | b })},
	"geq": {in: ints2, out: bool1, compute: func(in, out [][]byte) {
		value.PutBool(out[0], value.Int64(in[0]) >= value.Int64(in[1]))
	}},
	"lor": {in: bool2, out: bool1, compute: func(in, out [][]byte) {
		value.PutBool(out[0], value.Truth(in[0]) || value.Truth(in[1]))
	}},
	// postdec yields the value it received and the value after decrementing.
	"postdec": {in: ints1, out: ints2, compute: func(in, out [][]byte) {
		x := value.Int64(in[0])
		value.PutInt(out[0], x)
		value.PutInt(out[1], x-1)
	}},
	"ternary": {in: []value.Kind{value.Int, value.Int, value.Bool}, out: ints1, compute: func(in, out [][]byte) {
		if value.Truth(in[2]) {
			copy(out[0], in[0])
		} else {
			copy(out[0], in[1])
		}
	}},
	"pass": {in: ints1, out: ints1, compute: func(in, out [][]byte) {
		copy(out[0], in[0])
	}},
}

// Kinds returns the catalog's kinds in alphabetical order.
func Kinds() []string {
	kinds := make([]string, 0, len(catalog))
	for k := range catalog {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Signature returns the value kinds of the inputs and outputs of kind.
func Signature(kind string) (in, out []value.Kind, err error) {
	e, ok := catalog[kind]
	if !ok {
		return nil, nil, fmt.Errorf("%q: %w", kind, ErrUnknownKind)
	}
	return e.in, e.out, nil
}

// Spec returns the operator spec of kind with the given attributes.
func Spec(kind string, a node.Attrs) (node.OperatorSpec, error) {
	e, ok := catalog[kind]
	if !ok {
		return node.OperatorSpec{}, fmt.Errorf("%s: %q: %w", a.Name, kind, ErrUnknownKind)
	}
	return node.OperatorSpec{
		ID:      a.ID,
		Name:    a.Name,
		Cluster: a.Cluster,
		Cost:    a.Cost,
		Class:   kind,
		Inputs:  e.in,
		Outputs: e.out,
		Compute: e.compute,
	}, nil
}

// New builds an operator of kind on core.
func New(k *kernel.Kernel, core node.Core, kind string, a node.Attrs) (*node.Operator, error) {
	spec, err := Spec(kind, a)
	if err != nil {
		return nil, err
	}
	return node.NewOperator(k, core, spec)
}
