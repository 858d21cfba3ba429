package builder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dfsim/internal/config"
	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/memory"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/value"
	"github.com/specialistvlad/dfsim/internal/vertex"
)

type recorder struct {
	got []memory.Snapshot
}

func (r *recorder) Report(_ context.Context, s memory.Snapshot) error {
	r.got = append(r.got, s)
	return nil
}

func testContext() context.Context {
	return ctxlog.Discard(context.Background())
}

func run(t *testing.T, model *config.Model) (*Simulation, *recorder) {
	t.Helper()
	rec := &recorder{}
	sim, err := Build(testContext(), model, rec)
	require.NoError(t, err)
	_, err = sim.Kernel.Run(testContext(), 0)
	require.NoError(t, err)
	return sim, rec
}

func TestBuild_CrossUnitSubtraction(t *testing.T) {
	// --- Arrange ---
	model := &config.Model{
		Mesh:  &config.Mesh{Width: 2, Height: 1, HopLatency: 2 * time.Nanosecond, RoutingLatency: time.Nanosecond},
		Units: []*config.Unit{{Name: "pu1", ID: 1, X: 1}, {Name: "pu0", ID: 0}},
		Memories: []*config.Memory{{
			Name: "mem", ID: 0, Unit: "pu0",
			Values: []*config.MemoryValue{
				{Name: "a", ID: 0, Kind: value.Int, Init: 12},
				{Name: "b", ID: 1, Kind: value.Int, Init: 10},
			},
			Results: []*config.MemoryResult{{Name: "r", ID: 0, Kind: value.Int}},
		}},
		Vertices: []*config.Vertex{{Kind: "sub", Name: "s", ID: 1, Unit: "pu1", Cost: 4 * time.Nanosecond}},
		Edges: []*config.Edge{
			{From: "mem.a", To: "s", Input: 0},
			{From: "mem.b", To: "s", Input: 1},
			{From: "s", To: "mem.r"},
		},
	}

	// --- Act ---
	sim, rec := run(t, model)

	// --- Assert ---
	require.Len(t, rec.got, 1)
	assert.Equal(t, int64(2), rec.got[0].Values[0].Value)
	assert.Equal(t, "pu0.mem[0]", rec.got[0].Memory)
	assert.Greater(t, rec.got[0].Time, 4*time.Nanosecond, "both transfers and the compute take time")

	require.Len(t, sim.Units, 2)
	assert.Equal(t, "pu0", sim.Units[0].Name(), "units are ordered by id")

	var routed uint64
	for _, ic := range sim.Mesh.Interconnects() {
		routed += ic.Stats().Routed
		assert.Zero(t, ic.Pool().Outstanding(), ic.Name())
	}
	assert.Equal(t, uint64(3), routed)

	edges := sim.Topology.Edges(testContext())
	require.Len(t, edges, 3)
	for _, e := range edges {
		assert.True(t, e.Remote)
	}
	entry, ok := sim.Topology.Resolve(testContext(), nodeid.MustParse("pu1.s[1]"))
	require.True(t, ok)
	assert.Equal(t, "sub", entry.Class)
}

func branchModel(flag bool) *config.Model {
	var init int64
	if flag {
		init = 1
	}
	return &config.Model{
		Units: []*config.Unit{{Name: "pu0", ID: 0}},
		Memories: []*config.Memory{{
			Name: "mem", ID: 0, Unit: "pu0",
			Values: []*config.MemoryValue{
				{Name: "x", ID: 0, Kind: value.Int, Init: 7},
				{Name: "y", ID: 1, Kind: value.Int, Init: 3},
				{Name: "flag", ID: 2, Kind: value.Bool, Init: init},
			},
			Results: []*config.MemoryResult{{Name: "r", ID: 0, Kind: value.Int}},
		}},
		Branches: []*config.Branch{{
			Name: "if1", ID: 1, Unit: "pu0",
			Inputs: []value.Kind{value.Int, value.Int},
			Then: &config.Scope{
				Vertices: []*config.Vertex{{Kind: "add", Name: "sum", ID: 2, Unit: "pu0", Cost: time.Nanosecond}},
				Begins: []*config.Begin{
					{Slot: 0, To: "sum", Input: 0},
					{Slot: 1, To: "sum", Input: 1},
				},
				Ends: []*config.End{{From: "sum", Edge: 0}},
			},
			Else: &config.Scope{},
		}},
		Edges: []*config.Edge{
			{From: "mem.x", To: "if1", Input: 0},
			{From: "mem.y", To: "if1", Input: 1},
			{From: "mem.flag", To: "if1", Input: config.ConditionInput},
			{From: "if1", To: "mem.r"},
		},
	}
}

func TestBuild_Branch(t *testing.T) {
	testCases := []struct {
		name string
		flag bool
		want int64
	}{
		{name: "then adds", flag: true, want: 10},
		{name: "empty else passes through", flag: false, want: 7},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sim, rec := run(t, branchModel(tc.flag))

			require.Len(t, rec.got, 1)
			assert.Equal(t, tc.want, rec.got[0].Values[0].Value)

			require.Len(t, sim.Branches, 1)
			stats := sim.Branches[0].Stats()
			assert.Equal(t, uint64(1), stats.Then+stats.Else)

			_, ok := sim.Topology.Resolve(testContext(), nodeid.MustParse("pu0.if1[1].then.sum[2]"))
			assert.True(t, ok, "scope members are registered under the branch")
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	base := func() *config.Model {
		return &config.Model{
			Units:    []*config.Unit{{Name: "pu0", ID: 0}},
			Vertices: []*config.Vertex{{Kind: "pass", Name: "p", ID: 1, Unit: "pu0"}},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(m *config.Model)
		wantErr error
		wantMsg string
	}{
		{
			name:    "no units",
			mutate:  func(m *config.Model) { m.Units = nil },
			wantMsg: "no units declared",
		},
		{
			name:    "unknown unit",
			mutate:  func(m *config.Model) { m.Vertices[0].Unit = "pu9" },
			wantMsg: `unknown unit "pu9"`,
		},
		{
			name: "duplicate id",
			mutate: func(m *config.Model) {
				m.Vertices = append(m.Vertices, &config.Vertex{Kind: "pass", Name: "q", ID: 1, Unit: "pu0"})
			},
			wantErr: node.ErrDuplicateID,
		},
		{
			name: "duplicate name",
			mutate: func(m *config.Model) {
				m.Vertices = append(m.Vertices, &config.Vertex{Kind: "pass", Name: "p", ID: 2, Unit: "pu0"})
			},
			wantMsg: `node name "p" declared twice`,
		},
		{
			name:    "unknown kind",
			mutate:  func(m *config.Model) { m.Vertices[0].Kind = "mul" },
			wantErr: vertex.ErrUnknownKind,
		},
		{
			name:    "unknown endpoint",
			mutate:  func(m *config.Model) { m.Edges = []*config.Edge{{From: "p", To: "ghost"}} },
			wantErr: node.ErrUnknownNode,
		},
		{
			name:    "not a memory",
			mutate:  func(m *config.Model) { m.Edges = []*config.Edge{{From: "p.x", To: "p"}} },
			wantMsg: "p is not a memory",
		},
		{
			name:    "bad slot",
			mutate:  func(m *config.Model) { m.Edges = []*config.Edge{{From: "p", Slot: 3, To: "p"}} },
			wantErr: node.ErrUnknownSlot,
		},
		{
			name: "number into a bool input",
			mutate: func(m *config.Model) {
				m.Memories = []*config.Memory{{
					Name: "mem", ID: 0, Unit: "pu0",
					Values: []*config.MemoryValue{{Name: "n", ID: 0, Kind: value.Int, Init: 1}},
				}}
				m.Vertices = append(m.Vertices, &config.Vertex{Kind: "lor", Name: "or", ID: 2, Unit: "pu0"})
				m.Edges = []*config.Edge{{From: "mem.n", To: "or"}}
			},
			wantErr: node.ErrKindMismatch,
			wantMsg: "slot 0 carries number, input 0 takes bool",
		},
		{
			name: "bool scope result into a number edge",
			mutate: func(m *config.Model) {
				m.Branches = []*config.Branch{{
					Name: "if1", ID: 2, Unit: "pu0",
					Inputs: []value.Kind{value.Int, value.Int},
					Then: &config.Scope{
						Vertices: []*config.Vertex{{Kind: "geq", Name: "ge", ID: 3, Unit: "pu0"}},
						Ends:     []*config.End{{From: "ge", Edge: 0}},
					},
				}}
			},
			wantErr: node.ErrKindMismatch,
			wantMsg: "end ge",
		},
		{
			name: "unit outside the mesh",
			mutate: func(m *config.Model) {
				m.Mesh = &config.Mesh{Width: 1, Height: 1}
				m.Units[0].X = 4
			},
			wantMsg: "outside the 1x1 grid",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := base()
			tc.mutate(m)

			_, err := Build(testContext(), m, nil)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}
