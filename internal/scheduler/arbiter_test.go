package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
)

const ns = time.Nanosecond

type timeline struct {
	granted  map[string]time.Duration
	finished map[string]time.Duration
	queued   map[string]bool
}

func newTimeline() *timeline {
	return &timeline{
		granted:  map[string]time.Duration{},
		finished: map[string]time.Duration{},
		queued:   map[string]bool{},
	}
}

// coreUser requests the core, computes for cost and releases it.
func coreUser(k *kernel.Kernel, a *Arbiter, tl *timeline, name string, cost time.Duration) {
	grant := k.NewSignal(name + ".grant")
	b := k.NewBarrier(name, grant)
	k.Spawn(name, func(p *kernel.Process) {
		tl.queued[name] = a.Request(grant)
		p.Wait(b)
		tl.granted[name] = k.Now()
		a.Release(cost)
		tl.finished[name] = k.Now()
	})
}

func TestArbiter_ReleaseGrantsInArrivalOrder(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	k := kernel.New()
	core := New(k, "core")
	tl := newTimeline()
	coreUser(k, core, tl, "A", 5*ns)
	coreUser(k, core, tl, "B", 5*ns)
	coreUser(k, core, tl, "C", 5*ns)

	// --- Act ---
	_, err := k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, map[string]time.Duration{"A": 0, "B": 5 * ns, "C": 10 * ns}, tl.granted)
	assert.Equal(t, map[string]bool{"A": false, "B": true, "C": true}, tl.queued)
	// Handing over to a waiter charges the waiter; only the last user blocks.
	assert.Equal(t, map[string]time.Duration{"A": 0, "B": 5 * ns, "C": 15 * ns}, tl.finished)
	assert.False(t, core.Busy())
	assert.Equal(t, 0, core.Waiting())

	stats := core.Stats()
	assert.Equal(t, uint64(3), stats.Grants)
	assert.Equal(t, uint64(2), stats.Queued)
	assert.Equal(t, 2, stats.MaxQueue)
	assert.Equal(t, 15*ns, stats.BusyTime)
}

func TestArbiter_ReleaseWithoutWaiterBlocksCaller(t *testing.T) {
	t.Parallel()

	k := kernel.New()
	core := New(k, "core")
	tl := newTimeline()
	coreUser(k, core, tl, "solo", 7*ns)

	stats, err := k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), tl.granted["solo"])
	assert.Equal(t, 7*ns, tl.finished["solo"])
	assert.Equal(t, 7*ns, stats.Now)
}

func TestArbiter_HandoffGrantsNextAfterHolderLatency(t *testing.T) {
	t.Parallel()

	k := kernel.New()
	link := New(k, "link.east")
	tl := newTimeline()

	hold := func(name string, start, latency time.Duration) {
		grant := k.NewSignal(name + ".grant")
		b := k.NewBarrier(name, grant)
		k.Spawn(name, func(p *kernel.Process) {
			p.BlockFor(start)
			tl.queued[name] = link.Request(grant)
			p.Wait(b)
			tl.granted[name] = k.Now()
			p.BlockFor(latency)
			link.Charge(latency)
			link.Handoff()
			tl.finished[name] = k.Now()
		})
	}
	hold("A", 2*ns, 4*ns)
	hold("B", 3*ns, 4*ns)

	_, err := k.Run(ctxlog.Discard(context.Background()), 0)
	require.NoError(t, err)

	assert.Equal(t, 2*ns, tl.granted["A"])
	assert.Equal(t, 6*ns, tl.granted["B"], "B is granted when A's hop completes")
	assert.True(t, tl.queued["B"])
	assert.Equal(t, 10*ns, tl.finished["B"])
	assert.False(t, link.Busy())
	assert.Equal(t, 8*ns, link.Stats().BusyTime)
}
