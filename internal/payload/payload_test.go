package payload

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ReusesBeforeGrowing(t *testing.T) {
	t.Parallel()

	p := NewPool("pu0")
	a := p.Allocate()
	b := p.Allocate()
	assert.Equal(t, 2, p.HighWater())
	assert.Equal(t, 2, p.Outstanding())

	a.Release()
	assert.Equal(t, 1, p.NumFree())
	assert.Equal(t, 1, p.Outstanding())

	c := p.Allocate()
	assert.Same(t, a, c, "a freed transaction is reused before a new one is created")
	assert.Equal(t, 2, p.HighWater())

	b.Release()
	c.Release()
	assert.Zero(t, p.Outstanding())
	assert.Equal(t, 2, p.NumFree())
}

func TestPool_FreeResetsEveryField(t *testing.T) {
	t.Parallel()

	p := NewPool("pu0")
	tx := p.Allocate()
	ext := p.AllocateExtension()
	ext.DX, ext.DY = 2, -1
	tx.SetExtension(ext)
	tx.Command = CommandRead
	tx.Address = 7
	tx.Data = []byte{1, 2, 3}
	tx.StreamingWidth = 3
	tx.ByteEnable = []byte{0xff}
	tx.DMIAllowed = true
	tx.Status = StatusOK

	tx.Release()

	want := Transaction{Command: CommandIgnore, Status: StatusIncomplete}
	if diff := cmp.Diff(want, *tx, cmpopts.IgnoreUnexported(Transaction{})); diff != "" {
		t.Errorf("freed transaction mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, tx.Extension())
	assert.Zero(t, tx.Refs())

	created, free := p.Extensions()
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, free)
	again := p.AllocateExtension()
	assert.Same(t, ext, again)
	assert.Equal(t, RoutingExtension{}, *again)
}

func TestTransaction_RefCounting(t *testing.T) {
	t.Parallel()

	p := NewPool("pu0")
	tx := p.Allocate()
	require.Equal(t, 1, tx.Refs())

	tx.Acquire()
	tx.Release()
	assert.Equal(t, 1, p.Outstanding(), "still referenced")

	tx.Release()
	assert.Zero(t, p.Outstanding())
	assert.Panics(t, tx.Release)
}

func TestRoutingExtension_Step(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		start RoutingExtension
		x, y  bool
		want  RoutingExtension
	}{
		{name: "east hop", start: RoutingExtension{DX: 2, DY: 1}, x: true, want: RoutingExtension{DX: 1, DY: 1}},
		{name: "west hop", start: RoutingExtension{DX: -2}, x: true, want: RoutingExtension{DX: -1}},
		{name: "down hop", start: RoutingExtension{DY: 1}, y: true, want: RoutingExtension{}},
		{name: "up hop", start: RoutingExtension{DX: 3, DY: -3}, y: true, want: RoutingExtension{DX: 3, DY: -2}},
		{name: "diagonal hop", start: RoutingExtension{DX: -1, DY: 4}, x: true, y: true, want: RoutingExtension{DX: 0, DY: 3}},
		{name: "never overshoots", start: RoutingExtension{DY: 2}, x: true, y: true, want: RoutingExtension{DY: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := tc.start
			e.Step(tc.x, tc.y)
			assert.Equal(t, tc.want, e)
		})
	}
}

func TestRoutingExtension_CloneAndTarget(t *testing.T) {
	t.Parallel()

	e := &RoutingExtension{DX: 1}
	c := e.Clone()
	c.Step(true, false)
	assert.True(t, c.TargetReached())
	assert.False(t, e.TargetReached(), "clones are independent")

	e.CopyFrom(c)
	assert.True(t, e.TargetReached())
}

func TestPool_FreeTwicePanics(t *testing.T) {
	t.Parallel()

	p := NewPool("pu0")
	tx := p.Allocate()
	p.Free(tx)

	assert.PanicsWithValue(t, "payload pu0: transaction freed twice", func() { p.Free(tx) })
	assert.Equal(t, 1, p.NumFree(), "the rejected free leaves the pool untouched")

	a := p.Allocate()
	b := p.Allocate()
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, p.HighWater())
	assert.Equal(t, 2, p.Outstanding())

	a.Release()
	assert.Panics(t, func() { p.Free(a) }, "a released transaction is already back in the pool")
	b.Release()
	assert.Zero(t, p.Outstanding())
}
