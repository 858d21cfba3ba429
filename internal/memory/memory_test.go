package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/observer"
	"github.com/specialistvlad/dfsim/internal/scheduler"
	"github.com/specialistvlad/dfsim/internal/value"
	"github.com/specialistvlad/dfsim/internal/vertex"
)

type stubReporter struct {
	got []Snapshot
	err error
}

func (r *stubReporter) Report(_ context.Context, s Snapshot) error {
	r.got = append(r.got, s)
	return r.err
}

func TestMemory_PublishesValuesAndReportsResults(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	k := kernel.New()
	core := scheduler.New(k, "core")
	mem := New(k, node.Attrs{ID: 0, Name: "mem"})
	require.NoError(t, mem.AddValue(0, "a", value.Int, 0))
	require.NoError(t, mem.AddValue(1, "b", value.Int, 0b1100))
	require.NoError(t, mem.Set(0, 0b1010))
	require.NoError(t, mem.AddResult(0, "r", value.Int))

	and, err := vertex.New(k, core, "bitand", node.Attrs{ID: 1, Name: "and1", Cost: 5 * time.Nanosecond})
	require.NoError(t, err)
	require.NoError(t, node.Link(mem, 0, and, 0))
	require.NoError(t, node.Link(mem, 1, and, 1))
	require.NoError(t, node.Link(and, 0, mem, 0))

	rep := &stubReporter{err: errors.New("offline")}
	mem.Start(rep)

	// --- Act ---
	_, err = k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)

	// --- Assert ---
	want := []Snapshot{{
		Memory: "mem",
		Time:   5 * time.Nanosecond,
		Values: []Result{{ID: 0, Name: "r", Kind: value.Int, Value: 0b1000}},
	}}
	opt := cmp.FilterPath(func(p cmp.Path) bool { return p.Last().String() == ".Delta" }, cmp.Ignore())
	if diff := cmp.Diff(want, mem.Snapshots(), opt); diff != "" {
		t.Errorf("snapshots mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, rep.got, 1, "a failing reporter does not stop collection")
	assert.NotZero(t, mem.Snapshots()[0].Delta)
}

func TestMemory_AssemblyErrors(t *testing.T) {
	t.Parallel()

	k := kernel.New()
	mem := New(k, node.Attrs{Name: "mem"})
	require.NoError(t, mem.AddValue(3, "a", value.Int, 1))
	require.NoError(t, mem.AddResult(0, "r", value.Bool))

	assert.ErrorIs(t, mem.AddValue(3, "again", value.Int, 0), node.ErrDuplicateID)
	assert.ErrorIs(t, mem.AddResult(0, "again", value.Int), node.ErrDuplicateID)
	assert.ErrorIs(t, mem.Set(9, 1), ErrUnknownValue)
	_, err := mem.Value(9)
	assert.ErrorIs(t, err, ErrUnknownValue)
	_, err = mem.Input(4)
	assert.ErrorIs(t, err, observer.ErrNotFound)

	v, err := mem.Value(3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, 4, mem.Outputs())
	assert.True(t, mem.HasValue(3))
	assert.False(t, mem.HasValue(0))
	assert.Equal(t, "memory", mem.Class())
}

func TestMemory_ResultsWaitForEveryWriter(t *testing.T) {
	t.Parallel()

	k := kernel.New()
	mem := New(k, node.Attrs{Name: "mem"})
	require.NoError(t, mem.AddResult(0, "x", value.Int))
	require.NoError(t, mem.AddResult(1, "y", value.Int))
	mem.Start(nil)

	x, err := mem.Input(0)
	require.NoError(t, err)
	x.Notify(value.Encode(value.Int, 1))

	_, err = k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)
	assert.Empty(t, mem.Snapshots())
}
