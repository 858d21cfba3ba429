// Package node defines the vertices of a simulated dataflow graph: the
// publisher every vertex embeds, the common task attributes, and the generic
// operator that waits for its inputs, computes on a shared core and
// republishes its outputs.
package node

import (
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/dfsim/internal/observer"
)

var (
	// ErrDuplicateID is returned when a node id is already taken.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrUnknownNode is returned when a node id is not known.
	ErrUnknownNode = errors.New("unknown node")
	// ErrUnknownSlot is returned for an output slot a node does not have.
	ErrUnknownSlot = errors.New("unknown output slot")
	// ErrKindMismatch is returned when an edge joins slots of different value kinds.
	ErrKindMismatch = errors.New("value kind mismatch")
)

// ConditionInput addresses the condition input of a branch.
const ConditionInput = -1

// Node is a vertex of the graph as seen by the assembly code.
type Node interface {
	ID() int
	Name() string
	Class() string
	Cluster() int
	Cost() time.Duration

	// Outputs returns the number of output slots.
	Outputs() int
	// Input returns the observer that feeds input slot i.
	Input(i int) (observer.Observer, error)

	Register(obs observer.Observer, slot int)
	Unregister(obs observer.Observer, slot int)
}

// Task carries the attributes shared by every vertex.
type Task struct {
	Publisher

	id      int
	name    string
	cluster int
	cost    time.Duration
	class   string

	inputs *observer.Pool[*observer.Value]
}

// Attrs are the static attributes of a task.
type Attrs struct {
	ID      int
	Name    string
	Cluster int
	Cost    time.Duration
	Class   string
}

// NewTask returns a task without inputs.
func NewTask(a Attrs) Task {
	return Task{
		id:      a.ID,
		name:    a.Name,
		cluster: a.Cluster,
		cost:    a.Cost,
		class:   a.Class,
		inputs:  observer.NewPool[*observer.Value](),
	}
}

func (t *Task) ID() int             { return t.id }
func (t *Task) Name() string        { return t.name }
func (t *Task) Class() string       { return t.class }
func (t *Task) Cluster() int        { return t.cluster }
func (t *Task) Cost() time.Duration { return t.cost }

// AddInput stores an input observer and returns its slot.
func (t *Task) AddInput(v *observer.Value) int {
	return t.inputs.Add(v)
}

// Input returns the observer of input slot i.
func (t *Task) Input(i int) (observer.Observer, error) {
	v, err := t.inputs.Get(i)
	if err != nil {
		return nil, fmt.Errorf("node %s input %d: %w", t.name, i, err)
	}
	return v, nil
}

// InputCount returns the number of input slots.
func (t *Task) InputCount() int {
	return t.inputs.Len()
}

// Link subscribes input of dst to output slot of src.
func Link(src Node, slot int, dst Node, input int) error {
	if slot < 0 || slot >= src.Outputs() {
		return fmt.Errorf("%s slot %d: %w", src.Name(), slot, ErrUnknownSlot)
	}
	obs, err := dst.Input(input)
	if err != nil {
		return fmt.Errorf("connect %s[%d] -> %s: %w", src.Name(), slot, dst.Name(), err)
	}
	src.Register(obs, slot)
	return nil
}

// Describe renders a one-line summary used by graph reports.
func Describe(n Node) string {
	return fmt.Sprintf("%s #%d class=%s cluster=%d cost=%v outputs=%d", n.Name(), n.ID(), n.Class(), n.Cluster(), n.Cost(), n.Outputs())
}
