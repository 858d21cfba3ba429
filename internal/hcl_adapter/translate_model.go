// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
)

func translateMesh(m *meshBlock) (*config.Mesh, error) {
	hop, err := parseDuration("hop_latency", m.HopLatency)
	if err != nil {
		return nil, err
	}
	routing, err := parseDuration("routing_latency", m.RoutingLatency)
	if err != nil {
		return nil, err
	}
	return &config.Mesh{
		Width:          m.Width,
		Height:         m.Height,
		HopLatency:     hop,
		RoutingLatency: routing,
		Diagonal:       m.Diagonal,
	}, nil
}

func translateMemory(ctx context.Context, m *memoryBlock) (*config.Memory, error) {
	logger := ctxlog.FromContext(ctx).With("memory", m.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL memory to internal config model.")

	mem := &config.Memory{Name: m.Name, ID: m.ID, Unit: m.Unit}
	for _, v := range m.Values {
		kind, err := typeExprToKind(ctx, v.Type)
		if err != nil {
			return nil, fmt.Errorf("memory %q value %q: %w", m.Name, v.Name, err)
		}
		init, err := initExprToValue(ctx, v.Init, kind)
		if err != nil {
			return nil, fmt.Errorf("memory %q value %q init: %w", m.Name, v.Name, err)
		}
		mem.Values = append(mem.Values, &config.MemoryValue{Name: v.Name, ID: v.ID, Kind: kind, Init: init})
	}
	for _, r := range m.Results {
		kind, err := typeExprToKind(ctx, r.Type)
		if err != nil {
			return nil, fmt.Errorf("memory %q result %q: %w", m.Name, r.Name, err)
		}
		mem.Results = append(mem.Results, &config.MemoryResult{Name: r.Name, ID: r.ID, Kind: kind})
	}
	return mem, nil
}

// translateVertex converts a vertex block. Vertices inside a branch scope
// inherit the unit of the branch.
func translateVertex(v *vertexBlock, unit string) (*config.Vertex, error) {
	cost, err := parseDuration("cost", v.Cost)
	if err != nil {
		return nil, fmt.Errorf("vertex %q: %w", v.Name, err)
	}
	if v.Unit != "" {
		unit = v.Unit
	}
	return &config.Vertex{
		Kind:    v.Kind,
		Name:    v.Name,
		ID:      v.ID,
		Unit:    unit,
		Cluster: v.Cluster,
		Cost:    cost,
	}, nil
}

func translateBranch(ctx context.Context, b *branchBlock, unit string) (*config.Branch, error) {
	logger := ctxlog.FromContext(ctx).With("branch", b.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Debug("Translating HCL branch to internal config model.")

	cost, err := parseDuration("cost", b.Cost)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", b.Name, err)
	}
	kinds, err := inputsExprToKinds(ctx, b.Inputs)
	if err != nil {
		return nil, fmt.Errorf("branch %q: %w", b.Name, err)
	}
	if b.Unit != "" {
		unit = b.Unit
	}

	br := &config.Branch{
		Name:    b.Name,
		ID:      b.ID,
		Unit:    unit,
		Cluster: b.Cluster,
		Cost:    cost,
		Inputs:  kinds,
	}
	if br.Then, err = translateScope(ctx, b.Then, unit); err != nil {
		return nil, fmt.Errorf("branch %q then: %w", b.Name, err)
	}
	if br.Else, err = translateScope(ctx, b.Else, unit); err != nil {
		return nil, fmt.Errorf("branch %q else: %w", b.Name, err)
	}
	return br, nil
}

// translateScope converts a then/else body. An omitted body is an empty scope.
func translateScope(ctx context.Context, s *scopeBlock, unit string) (*config.Scope, error) {
	scope := &config.Scope{}
	if s == nil {
		return scope, nil
	}
	for _, v := range s.Vertices {
		vtx, err := translateVertex(v, unit)
		if err != nil {
			return nil, err
		}
		scope.Vertices = append(scope.Vertices, vtx)
	}
	for _, b := range s.Branches {
		br, err := translateBranch(ctx, b, unit)
		if err != nil {
			return nil, err
		}
		scope.Branches = append(scope.Branches, br)
	}
	for _, c := range s.Connects {
		scope.Connects = append(scope.Connects, &config.Connect{From: c.From, Slot: c.Slot, To: c.To, Input: c.Input})
	}
	for _, b := range s.Begins {
		scope.Begins = append(scope.Begins, &config.Begin{Slot: b.Slot, To: b.To, Input: b.Input})
	}
	for _, e := range s.Ends {
		scope.Ends = append(scope.Ends, &config.End{From: e.From, Slot: e.Slot, Edge: e.Edge})
	}
	return scope, nil
}

func translateEdge(ctx context.Context, e *edgeBlock) (*config.Edge, error) {
	input, err := inputExprToIndex(ctx, e.Input)
	if err != nil {
		return nil, fmt.Errorf("edge %s -> %s: %w", e.From, e.To, err)
	}
	return &config.Edge{From: e.From, Slot: e.Slot, To: e.To, Input: input}, nil
}
