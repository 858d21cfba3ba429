package inmemorytopology

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/nodeid"
	"github.com/specialistvlad/dfsim/internal/topologystore"
)

func entry(id int, raw string) topologystore.Entry {
	return topologystore.Entry{ID: id, Address: nodeid.MustParse(raw), Class: "pass", Unit: "pu0"}
}

func TestRegisterAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, entry(1, "pu0.a[1]")))
	require.NoError(t, s.Register(ctx, entry(0, "pu0.mem[0]")))

	got, ok := s.Lookup(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "pu0.a[1]", got.Address.String())

	got, ok = s.Resolve(ctx, nodeid.MustParse("pu0.mem[0]"))
	require.True(t, ok)
	assert.Equal(t, 0, got.ID)

	_, ok = s.Lookup(ctx, 9)
	assert.False(t, ok)

	all := s.All(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, 0, all[0].ID)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, entry(1, "pu0.a[1]")))

	err := s.Register(ctx, entry(1, "pu0.b[1]"))
	assert.ErrorIs(t, err, node.ErrDuplicateID)
	assert.ErrorContains(t, err, "already used by pu0.a[1]")

	err = s.Register(ctx, entry(2, "pu0.a[1]"))
	assert.ErrorIs(t, err, node.ErrDuplicateID)
}

func TestEdges(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, entry(1, "pu0.a[1]")))
	require.NoError(t, s.Register(ctx, entry(2, "pu1.b[2]")))

	e := topologystore.Edge{From: nodeid.MustParse("pu0.a[1]"), To: nodeid.MustParse("pu1.b[2]"), Remote: true}
	require.NoError(t, s.AddEdge(ctx, e))

	err := s.AddEdge(ctx, topologystore.Edge{From: nodeid.MustParse("pu0.a[1]"), To: nodeid.MustParse("pu9.x")})
	assert.ErrorIs(t, err, topologystore.ErrNotFound)

	edges := s.Edges(ctx)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Remote)
}

func TestConcurrentRegister(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = s.Register(ctx, topologystore.Entry{ID: id, Address: nodeid.New(nodeid.WithID("n", id))})
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.All(ctx), 50)
}
