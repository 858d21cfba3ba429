package kernel

import (
	"fmt"
	"time"
)

// Signal is a single-shot wakeup. It carries no value; components pair it
// with their own storage.
type Signal struct {
	name  string
	k     *Kernel
	links []memberLink

	// deltaArmed is set while a zero-delay notification is queued.
	deltaArmed bool
	// timedArmed/timedAt describe the earliest queued timed notification.
	timedArmed bool
	timedAt    time.Duration
}

type memberLink struct {
	b   *Barrier
	idx int
}

// NewSignal creates a signal owned by the caller.
func (k *Kernel) NewSignal(name string) *Signal {
	return &Signal{name: name, k: k}
}

// Name returns the signal's debug name.
func (s *Signal) Name() string {
	return s.name
}

// Fire notifies the signal after delay. A zero delay fires in the next delta
// cycle of the current tick. A pending notification that is due earlier
// wins over a later one, so firing twice never triggers twice.
func (s *Signal) Fire(delay time.Duration) {
	s.k.Fire(s, delay)
}

// trigger marks the signal in all barriers it belongs to.
func (s *Signal) trigger() {
	s.deltaArmed = false
	s.timedArmed = false
	for _, l := range s.links {
		l.b.mark(l.idx)
	}
}

// Barrier combines signals: it is complete once every member fired since it
// was last consumed by its waiter.
type Barrier struct {
	name    string
	k       *Kernel
	members []*Signal
	fired   []bool
	count   int
	waiter  *Process
}

// NewBarrier creates a barrier over the given signals. More members can be
// added with Add until the kernel starts running.
func (k *Kernel) NewBarrier(name string, signals ...*Signal) *Barrier {
	b := &Barrier{name: name, k: k}
	for _, s := range signals {
		b.Add(s)
	}
	return b
}

// Add makes s a member of the barrier. Adding the same signal twice is a
// no-op. It panics once the kernel has started.
func (b *Barrier) Add(s *Signal) {
	if b.k.started {
		panic(fmt.Sprintf("kernel: barrier %q modified after the simulation started", b.name))
	}
	if s.k != b.k {
		panic(fmt.Sprintf("kernel: signal %q belongs to another kernel", s.name))
	}
	for _, m := range b.members {
		if m == s {
			return
		}
	}
	s.links = append(s.links, memberLink{b: b, idx: len(b.members)})
	b.members = append(b.members, s)
	b.fired = append(b.fired, false)
}

// Name returns the barrier's debug name.
func (b *Barrier) Name() string {
	return b.name
}

// Len returns the number of member signals.
func (b *Barrier) Len() int {
	return len(b.members)
}

// Complete reports whether all members fired since the last consumption.
func (b *Barrier) Complete() bool {
	return len(b.members) > 0 && b.count == len(b.members)
}

// Pending returns the number of members that fired since the last consumption.
func (b *Barrier) Pending() int {
	return b.count
}

func (b *Barrier) mark(idx int) {
	if !b.fired[idx] {
		b.fired[idx] = true
		b.count++
	}
	if b.waiter != nil && b.Complete() {
		p := b.waiter
		b.waiter = nil
		b.consume()
		b.k.makeRunnable(p)
	}
}

func (b *Barrier) consume() {
	for i := range b.fired {
		b.fired[i] = false
	}
	b.count = 0
}
