package scheduler

import (
	"time"

	"github.com/specialistvlad/dfsim/internal/kernel"
)

// Stats counts what an arbiter did during a run.
type Stats struct {
	Grants   uint64
	Queued   uint64
	MaxQueue int
	BusyTime time.Duration
}

// Arbiter grants a shared resource to one routine at a time, first come
// first served.
type Arbiter struct {
	name    string
	k       *kernel.Kernel
	busy    bool
	waiters []*kernel.Signal
	stats   Stats
}

// New returns a free arbiter.
func New(k *kernel.Kernel, name string) *Arbiter {
	return &Arbiter{name: name, k: k}
}

// Name returns the arbiter's name.
func (a *Arbiter) Name() string { return a.name }

// Busy reports whether the resource is held.
func (a *Arbiter) Busy() bool { return a.busy }

// Waiting returns the number of queued requests.
func (a *Arbiter) Waiting() int { return len(a.waiters) }

// Stats returns the counters collected so far.
func (a *Arbiter) Stats() Stats { return a.stats }

// Request asks for the resource on behalf of the routine waiting on grant. It
// reports whether the request was queued behind a holder.
func (a *Arbiter) Request(grant *kernel.Signal) (queued bool) {
	if !a.busy {
		a.busy = true
		a.stats.Grants++
		a.k.Fire(grant, 0)
		return false
	}
	a.waiters = append(a.waiters, grant)
	a.stats.Queued++
	if len(a.waiters) > a.stats.MaxQueue {
		a.stats.MaxQueue = len(a.waiters)
	}
	return true
}

// Release gives the resource back after a computation that took cost. The
// next waiter is granted after cost; with no waiter the resource is freed and
// the calling process blocks for cost.
func (a *Arbiter) Release(cost time.Duration) {
	a.stats.BusyTime += cost
	if next, ok := a.pop(); ok {
		a.stats.Grants++
		a.k.Fire(next, cost)
		return
	}
	a.busy = false
	a.k.BlockFor(cost)
}

// Handoff grants the resource to the next waiter without delay, or frees it.
func (a *Arbiter) Handoff() {
	if next, ok := a.pop(); ok {
		a.stats.Grants++
		a.k.Fire(next, 0)
		return
	}
	a.busy = false
}

// Charge records busy time spent by a holder that releases with Handoff.
func (a *Arbiter) Charge(d time.Duration) {
	a.stats.BusyTime += d
}

func (a *Arbiter) pop() (*kernel.Signal, bool) {
	if len(a.waiters) == 0 {
		return nil, false
	}
	next := a.waiters[0]
	a.waiters[0] = nil
	a.waiters = a.waiters[1:]
	return next, true
}
