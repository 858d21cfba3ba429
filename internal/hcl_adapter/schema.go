package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Unknown blocks are rejected.
type fileRoot struct {
	Mesh     []*meshBlock   `hcl:"mesh,block"`
	Units    []*unitBlock   `hcl:"unit,block"`
	Memories []*memoryBlock `hcl:"memory,block"`
	Vertices []*vertexBlock `hcl:"vertex,block"`
	Branches []*branchBlock `hcl:"branch,block"`
	Edges    []*edgeBlock   `hcl:"edge,block"`
}

type meshBlock struct {
	Width          int    `hcl:"width"`
	Height         int    `hcl:"height"`
	HopLatency     string `hcl:"hop_latency,optional"`
	RoutingLatency string `hcl:"routing_latency,optional"`
	Diagonal       bool   `hcl:"diagonal,optional"`
}

type unitBlock struct {
	Name string `hcl:"name,label"`
	ID   int    `hcl:"id"`
	X    int    `hcl:"x,optional"`
	Y    int    `hcl:"y,optional"`
}

type memoryBlock struct {
	Name    string         `hcl:"name,label"`
	ID      int            `hcl:"id"`
	Unit    string         `hcl:"unit"`
	Values  []*valueBlock  `hcl:"value,block"`
	Results []*resultBlock `hcl:"result,block"`
}

// valueBlock keeps type and init as raw expressions: the type is a bare
// keyword and the initial value is coerced to it.
type valueBlock struct {
	Name string         `hcl:"name,label"`
	ID   int            `hcl:"id"`
	Type hcl.Expression `hcl:"type"`
	Init hcl.Expression `hcl:"init,optional"`
}

type resultBlock struct {
	Name string         `hcl:"name,label"`
	ID   int            `hcl:"id"`
	Type hcl.Expression `hcl:"type"`
}

type vertexBlock struct {
	Kind    string `hcl:"kind,label"`
	Name    string `hcl:"name,label"`
	ID      int    `hcl:"id"`
	Unit    string `hcl:"unit,optional"`
	Cluster int    `hcl:"cluster,optional"`
	Cost    string `hcl:"cost,optional"`
}

type branchBlock struct {
	Name    string         `hcl:"name,label"`
	ID      int            `hcl:"id"`
	Unit    string         `hcl:"unit,optional"`
	Cluster int            `hcl:"cluster,optional"`
	Cost    string         `hcl:"cost,optional"`
	Inputs  hcl.Expression `hcl:"inputs"`
	Then    *scopeBlock    `hcl:"then,block"`
	Else    *scopeBlock    `hcl:"else,block"`
}

type scopeBlock struct {
	Vertices []*vertexBlock  `hcl:"vertex,block"`
	Branches []*branchBlock  `hcl:"branch,block"`
	Connects []*connectBlock `hcl:"connect,block"`
	Begins   []*beginBlock   `hcl:"begin,block"`
	Ends     []*endBlock     `hcl:"end,block"`
}

type connectBlock struct {
	From  string `hcl:"from"`
	Slot  int    `hcl:"slot,optional"`
	To    string `hcl:"to"`
	Input int    `hcl:"input,optional"`
}

type beginBlock struct {
	Slot  int    `hcl:"slot"`
	To    string `hcl:"to"`
	Input int    `hcl:"input,optional"`
}

type endBlock struct {
	From string `hcl:"from"`
	Slot int    `hcl:"slot,optional"`
	Edge int    `hcl:"edge"`
}

// edgeBlock.Input is either a number or the keyword "condition".
type edgeBlock struct {
	From  string         `hcl:"from"`
	Slot  int            `hcl:"slot,optional"`
	To    string         `hcl:"to"`
	Input hcl.Expression `hcl:"input,optional"`
}
