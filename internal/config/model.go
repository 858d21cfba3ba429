package config

import (
	"time"

	"github.com/specialistvlad/dfsim/internal/value"
)

// ConditionInput is the Input of an edge that feeds a branch condition.
const ConditionInput = -1

// Model is the unified, format-agnostic representation of a simulated
// accelerator: its mesh, its processing units and the dataflow graph placed
// on them.
type Model struct {
	Mesh     *Mesh
	Units    []*Unit
	Memories []*Memory
	Vertices []*Vertex
	Branches []*Branch
	Edges    []*Edge
}

// Mesh is the interconnect grid. A nil mesh means a single-unit design.
type Mesh struct {
	Width          int
	Height         int
	HopLatency     time.Duration
	RoutingLatency time.Duration
	Diagonal       bool
}

// Unit is one processing unit with its own core.
type Unit struct {
	Name string
	ID   int
	X, Y int
}

// Memory is a source/sink node.
type Memory struct {
	Name    string
	ID      int
	Unit    string
	Values  []*MemoryValue
	Results []*MemoryResult
}

// MemoryValue is a source published at time zero.
type MemoryValue struct {
	Name string
	ID   int
	Kind value.Kind
	Init int64
}

// MemoryResult is an observed sink slot.
type MemoryResult struct {
	Name string
	ID   int
	Kind value.Kind
}

// Vertex is an operator from the catalog.
type Vertex struct {
	Kind    string
	Name    string
	ID      int
	Unit    string
	Cluster int
	Cost    time.Duration
}

// Branch is an if/then/else vertex. Vertices and branches declared inside
// its scopes inherit its unit.
type Branch struct {
	Name    string
	ID      int
	Unit    string
	Cluster int
	Cost    time.Duration
	Inputs  []value.Kind
	Then    *Scope
	Else    *Scope
}

// Scope is the body of one side of a branch.
type Scope struct {
	Vertices []*Vertex
	Branches []*Branch
	Connects []*Connect
	Begins   []*Begin
	Ends     []*End
}

// Connect links two members of the same scope by name.
type Connect struct {
	From  string
	Slot  int
	To    string
	Input int
}

// Begin feeds branch input Slot into Input of scope member To.
type Begin struct {
	Slot  int
	To    string
	Input int
}

// End makes output Slot of scope member From the branch output Edge.
type End struct {
	From string
	Slot int
	Edge int
}

// Edge links two top-level nodes. From and To are node names, or
// "<memory>.<value>" for memory slots.
type Edge struct {
	From  string
	Slot  int
	To    string
	Input int
}
