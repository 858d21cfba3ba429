package node

import (
	"fmt"
	"time"

	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/observer"
	"github.com/specialistvlad/dfsim/internal/value"
)

// Core is the execution resource an operator computes on.
type Core interface {
	Request(grant *kernel.Signal) (queued bool)
	Release(cost time.Duration)
}

// ComputeFunc reads the input buffers and writes the output buffers.
type ComputeFunc func(in, out [][]byte)

// OperatorSpec describes a concrete operator.
type OperatorSpec struct {
	ID      int
	Name    string
	Cluster int
	Cost    time.Duration
	Class   string
	Inputs  []value.Kind
	Outputs []value.Kind
	Compute ComputeFunc
}

// Operator is a vertex that fires once all of its inputs have arrived.
type Operator struct {
	Task

	core    Core
	in      [][]byte
	out     [][]byte
	compute ComputeFunc

	ready   *kernel.Barrier
	grant   *kernel.Signal
	granted *kernel.Barrier

	activations uint64
}

// NewOperator builds the operator and spawns its routine on k.
func NewOperator(k *kernel.Kernel, core Core, spec OperatorSpec) (*Operator, error) {
	if len(spec.Inputs) == 0 {
		return nil, fmt.Errorf("operator %s: no inputs", spec.Name)
	}
	if spec.Compute == nil {
		return nil, fmt.Errorf("operator %s: no compute function", spec.Name)
	}
	if core == nil {
		return nil, fmt.Errorf("operator %s: no core", spec.Name)
	}

	o := &Operator{
		Task: NewTask(Attrs{
			ID:      spec.ID,
			Name:    spec.Name,
			Cluster: spec.Cluster,
			Cost:    spec.Cost,
			Class:   spec.Class,
		}),
		core:    core,
		compute: spec.Compute,
	}

	o.ready = k.NewBarrier(spec.Name + ".inputs")
	for i, kind := range spec.Inputs {
		buf := value.New(kind)
		o.in = append(o.in, buf)
		sig := k.NewSignal(fmt.Sprintf("%s.in%d", spec.Name, i))
		o.AddInput(observer.NewValue(sig, buf))
		o.ready.Add(sig)
	}
	for _, kind := range spec.Outputs {
		o.out = append(o.out, value.New(kind))
	}
	o.grant = k.NewSignal(spec.Name + ".grant")
	o.granted = k.NewBarrier(spec.Name+".core", o.grant)

	k.Spawn(spec.Name, o.run)
	return o, nil
}

// Outputs returns the number of output slots.
func (o *Operator) Outputs() int { return len(o.out) }

// Output returns the buffer of output slot i.
func (o *Operator) Output(i int) []byte { return o.out[i] }

// Activations returns how many times the operator computed.
func (o *Operator) Activations() uint64 { return o.activations }

// Publish notifies the observers of output slot i with its current value.
func (o *Operator) Publish(slot int) {
	if slot < 0 || slot >= len(o.out) {
		panic(fmt.Sprintf("operator %s: publish on slot %d, has %d outputs", o.name, slot, len(o.out)))
	}
	o.Notify(slot, o.out[slot])
}

func (o *Operator) run(p *kernel.Process) {
	for {
		p.Wait(o.ready)
		o.core.Request(o.grant)
		p.Wait(o.granted)
		o.compute(o.in, o.out)
		o.activations++
		o.core.Release(o.cost)
		for slot := range o.out {
			o.Publish(slot)
		}
	}
}
