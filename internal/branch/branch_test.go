package branch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/scheduler"
	"github.com/specialistvlad/dfsim/internal/value"
)

type sink struct {
	k   *kernel.Kernel
	got []int64
	at  []time.Duration
}

func (s *sink) Notify(data []byte) {
	s.got = append(s.got, value.Int64(data))
	s.at = append(s.at, s.k.Now())
}

func binary(t *testing.T, k *kernel.Kernel, core node.Core, id int, name string, f func(a, b int64) int64) *node.Operator {
	t.Helper()
	op, err := node.NewOperator(k, core, node.OperatorSpec{
		ID: id, Name: name, Cost: 2 * time.Nanosecond, Class: name,
		Inputs:  []value.Kind{value.Int, value.Int},
		Outputs: []value.Kind{value.Int},
		Compute: func(in, out [][]byte) {
			value.PutInt(out[0], f(value.Int64(in[0]), value.Int64(in[1])))
		},
	})
	require.NoError(t, err)
	return op
}

type fixture struct {
	k   *kernel.Kernel
	b   *Node
	add *node.Operator
	sub *node.Operator
	out [2]*sink
}

// newFixture builds if (cond) { e0 = a + b } else { e0 = a - b }, e1 = b.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	k := kernel.New()
	core := scheduler.New(k, "core")
	b, err := New(k, Config{ID: 10, Name: "if1", Inputs: []value.Kind{value.Int, value.Int}})
	require.NoError(t, err)

	f := &fixture{k: k, b: b}
	f.add = binary(t, k, core, 11, "add", func(a, b int64) int64 { return a + b })
	f.sub = binary(t, k, core, 12, "sub", func(a, b int64) int64 { return a - b })

	for side, op := range map[Side]*node.Operator{Then: f.add, Else: f.sub} {
		require.NoError(t, b.AddNode(side, op))
		require.NoError(t, b.BindBegin(side, op.ID(), 0, 0))
		require.NoError(t, b.BindBegin(side, op.ID(), 1, 1))
		require.NoError(t, b.BindEnd(side, op.ID(), 0, 0))
	}
	for i := range f.out {
		f.out[i] = &sink{k: k}
		b.Register(f.out[i], i)
	}
	return f
}

func (f *fixture) feed(t *testing.T, cond bool, a, b int64) {
	t.Helper()
	for i, v := range []int64{a, b} {
		obs, err := f.b.Input(i)
		require.NoError(t, err)
		obs.Notify(value.Encode(value.Int, v))
	}
	c, err := f.b.Input(node.ConditionInput)
	require.NoError(t, err)
	c.Notify(value.Encode(value.Bool, map[bool]int64{true: 1, false: 0}[cond]))
}

func TestBranch_ActivatesExactlyOneScope(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		cond      bool
		want      int64
		wantStats Stats
	}{
		{name: "condition true runs then", cond: true, want: 10, wantStats: Stats{Then: 1}},
		{name: "condition false runs else", cond: false, want: 4, wantStats: Stats{Else: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			f := newFixture(t)
			f.feed(t, tc.cond, 7, 3)

			// --- Act ---
			_, err := f.k.Run(ctxlog.Discard(context.Background()), 0)
			require.NoError(t, err)

			// --- Assert ---
			assert.Equal(t, []int64{tc.want}, f.out[0].got)
			assert.Equal(t, []int64{3}, f.out[1].got, "unbound edges pass their input through")
			assert.Equal(t, f.out[0].at, f.out[1].at, "all end values are republished together")
			assert.Equal(t, tc.wantStats, f.b.Stats())

			if tc.cond {
				assert.Equal(t, uint64(1), f.add.Activations())
				assert.Zero(t, f.sub.Activations(), "the inactive scope must never run")
			} else {
				assert.Equal(t, uint64(1), f.sub.Activations())
				assert.Zero(t, f.add.Activations(), "the inactive scope must never run")
			}
		})
	}
}

func TestBranch_WaitsForConditionAndAllInputs(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	obs, err := f.b.Input(0)
	require.NoError(t, err)
	obs.Notify(value.Encode(value.Int, 1))
	c, err := f.b.Input(node.ConditionInput)
	require.NoError(t, err)
	c.Notify(value.Encode(value.Bool, 1))

	_, err = f.k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)
	assert.Empty(t, f.out[0].got)
	assert.Equal(t, Stats{}, f.b.Stats())
}

func TestBranch_EmptyScopePassesThrough(t *testing.T) {
	t.Parallel()

	k := kernel.New()
	b, err := New(k, Config{ID: 1, Name: "if0", Inputs: []value.Kind{value.Int}})
	require.NoError(t, err)
	out := &sink{k: k}
	b.Register(out, 0)

	in, err := b.Input(0)
	require.NoError(t, err)
	in.Notify(value.Encode(value.Int, 5))
	c, err := b.Input(node.ConditionInput)
	require.NoError(t, err)
	c.Notify(value.Encode(value.Bool, 0))

	_, err = k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, out.got)
	assert.Equal(t, []time.Duration{0}, out.at)
	assert.Equal(t, Stats{Else: 1}, b.Stats())
}

func TestBranch_Nested(t *testing.T) {
	t.Parallel()

	// outer: if (c0) { inner: if (c1) { e0 = a + b } else { e0 = a - b } } else { e0 = a }
	k := kernel.New()
	core := scheduler.New(k, "core")
	outer, err := New(k, Config{ID: 1, Name: "outer", Inputs: []value.Kind{value.Int, value.Int, value.Bool}})
	require.NoError(t, err)
	inner, err := New(k, Config{ID: 2, Name: "inner", Inputs: []value.Kind{value.Int, value.Int}})
	require.NoError(t, err)
	add := binary(t, k, core, 3, "add", func(a, b int64) int64 { return a + b })
	sub := binary(t, k, core, 4, "sub", func(a, b int64) int64 { return a - b })

	require.NoError(t, inner.AddNode(Then, add))
	require.NoError(t, inner.AddNode(Else, sub))
	for side, op := range map[Side]*node.Operator{Then: add, Else: sub} {
		require.NoError(t, inner.BindBegin(side, op.ID(), 0, 0))
		require.NoError(t, inner.BindBegin(side, op.ID(), 1, 1))
		require.NoError(t, inner.BindEnd(side, op.ID(), 0, 0))
	}

	require.NoError(t, outer.AddNode(Then, inner))
	require.NoError(t, outer.BindBegin(Then, inner.ID(), 0, 0))
	require.NoError(t, outer.BindBegin(Then, inner.ID(), 1, 1))
	require.NoError(t, outer.BindBegin(Then, inner.ID(), node.ConditionInput, 2))
	require.NoError(t, outer.BindEnd(Then, inner.ID(), 0, 0))

	out := &sink{k: k}
	outer.Register(out, 0)

	for i, v := range []int64{20, 5} {
		obs, err := outer.Input(i)
		require.NoError(t, err)
		obs.Notify(value.Encode(value.Int, v))
	}
	c1, err := outer.Input(2)
	require.NoError(t, err)
	c1.Notify(value.Encode(value.Bool, 0))
	c0, err := outer.Input(node.ConditionInput)
	require.NoError(t, err)
	c0.Notify(value.Encode(value.Bool, 1))

	_, err = k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)
	assert.Equal(t, []int64{15}, out.got)
	assert.Equal(t, Stats{Then: 1}, outer.Stats())
	assert.Equal(t, Stats{Else: 1}, inner.Stats())
	assert.Len(t, outer.Members(Then), 1)
	assert.Empty(t, outer.Members(Else))
}

func TestBranch_AssemblyErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	defer f.k.Shutdown()

	testCases := []struct {
		name   string
		run    func() error
		wantIs error
	}{
		{name: "duplicate member", run: func() error { return f.b.AddNode(Then, f.add) }, wantIs: node.ErrDuplicateID},
		{name: "connect unknown member", run: func() error { return f.b.Connect(Then, 11, 0, 12, 0) }, wantIs: node.ErrUnknownNode},
		{name: "bind begin unknown member", run: func() error { return f.b.BindBegin(Else, 11, 0, 0) }, wantIs: node.ErrUnknownNode},
		{name: "bind begin bad slot", run: func() error { return f.b.BindBegin(Then, 11, 0, 2) }, wantIs: node.ErrUnknownSlot},
		{name: "bind end bad edge", run: func() error { return f.b.BindEnd(Then, 11, 0, 5) }, wantIs: node.ErrUnknownSlot},
		{name: "bind end bad output", run: func() error { return f.b.BindEnd(Then, 11, 1, 0) }, wantIs: node.ErrUnknownSlot},
		{name: "bind end unknown member", run: func() error { return f.b.BindEnd(Else, 99, 0, 0) }, wantIs: node.ErrUnknownNode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.run(), tc.wantIs)
		})
	}

	_, err := New(f.k, Config{Name: "empty"})
	assert.EqualError(t, err, "branch empty: no inputs")
}
