package kernel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/petermattis/goid"
	"github.com/pkg/errors"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
)

// ErrShutdown is returned by Run once the kernel has been shut down.
var ErrShutdown = errors.New("kernel: shut down")

// Stats summarizes a run.
type Stats struct {
	Now         time.Duration
	Deltas      uint64
	Activations uint64
	Processes   int
}

// Kernel is a virtual-time scheduler for cooperative processes.
type Kernel struct {
	ctx     context.Context
	now     time.Duration
	deltas  uint64
	started bool

	procs    []*Process
	runnable []*Process

	deltaSignals []*Signal
	deltaProcs   []*Process
	timed        timedQueue
	seq          uint64

	yield    chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	byGID    sync.Map

	failure     error
	activations uint64
}

// New returns an idle kernel at time zero.
func New() *Kernel {
	return &Kernel{
		ctx:   context.Background(),
		yield: make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Now returns the current virtual time.
func (k *Kernel) Now() time.Duration {
	return k.now
}

// Delta returns the number of delta cycles executed so far.
func (k *Kernel) Delta() uint64 {
	return k.deltas
}

// Started reports whether Run has been called.
func (k *Kernel) Started() bool {
	return k.started
}

// Spawn registers a process. Processes spawned before Run start in the first
// evaluation phase; later ones start in the current one.
func (k *Kernel) Spawn(name string, fn func(p *Process)) *Process {
	p := &Process{
		name:   name,
		k:      k,
		fn:     fn,
		resume: make(chan struct{}),
	}
	k.procs = append(k.procs, p)
	k.runnable = append(k.runnable, p)
	go p.main()
	return p
}

// Current returns the process running on the calling goroutine, or nil.
func (k *Kernel) Current() *Process {
	if v, ok := k.byGID.Load(goid.Get()); ok {
		return v.(*Process)
	}
	return nil
}

func (k *Kernel) mustCurrent(op string) *Process {
	p := k.Current()
	if p == nil {
		panic(fmt.Sprintf("kernel: %s called outside of a process", op))
	}
	return p
}

// Wait suspends the calling process until b is complete.
func (k *Kernel) Wait(b *Barrier) {
	k.mustCurrent("Wait").Wait(b)
}

// BlockFor suspends the calling process for d of virtual time.
func (k *Kernel) BlockFor(d time.Duration) {
	k.mustCurrent("BlockFor").BlockFor(d)
}

// Fire schedules a notification of sig after delay. A zero-delay
// notification overrides any pending timed one; a timed notification is
// dropped when an earlier one is already pending.
func (k *Kernel) Fire(sig *Signal, delay time.Duration) {
	if sig.deltaArmed {
		return
	}
	if delay <= 0 {
		sig.deltaArmed = true
		k.deltaSignals = append(k.deltaSignals, sig)
		return
	}
	at := k.now + delay
	if sig.timedArmed && sig.timedAt <= at {
		return
	}
	sig.timedArmed = true
	sig.timedAt = at
	k.schedule(timedEntry{at: at, sig: sig})
}

func (k *Kernel) schedule(e timedEntry) {
	k.seq++
	e.seq = k.seq
	k.timed.push(e)
}

func (k *Kernel) makeRunnable(p *Process) {
	k.runnable = append(k.runnable, p)
}

// Run executes the simulation until nothing is left to do, virtual time
// would pass until (zero means no limit), a process panics, or ctx is done.
// The kernel is shut down when Run returns.
func (k *Kernel) Run(ctx context.Context, until time.Duration) (Stats, error) {
	select {
	case <-k.done:
		return k.stats(), ErrShutdown
	default:
	}
	defer k.Shutdown()

	logger := ctxlog.FromContext(ctx)
	k.ctx = ctx
	k.started = true
	logger.Debug("Simulation started.", "processes", len(k.procs), "until", until)

	for {
		if err := ctx.Err(); err != nil {
			return k.stats(), errors.Wrapf(err, "kernel: interrupted at %v", k.now)
		}

		// Evaluate.
		for len(k.runnable) > 0 {
			p := k.runnable[0]
			k.runnable = k.runnable[1:]
			k.resume(p)
			if k.failure != nil {
				return k.stats(), k.failure
			}
		}

		// Delta update.
		if len(k.deltaSignals) > 0 || len(k.deltaProcs) > 0 {
			k.deltas++
			sigs := k.deltaSignals
			k.deltaSignals = nil
			for _, s := range sigs {
				s.trigger()
			}
			k.runnable = append(k.runnable, k.deltaProcs...)
			k.deltaProcs = nil
			continue
		}

		// Advance time.
		if k.timed.Len() == 0 {
			break
		}
		next := k.timed.peek().at
		if until > 0 && next > until {
			k.now = until
			break
		}
		k.now = next
		for k.timed.Len() > 0 && k.timed.peek().at == next {
			e := k.timed.pop()
			switch {
			case e.proc != nil:
				k.runnable = append(k.runnable, e.proc)
			case e.sig.timedArmed && e.sig.timedAt == e.at:
				e.sig.trigger()
			}
		}
	}

	logger.Debug("Simulation finished.", "now", k.now, "deltas", k.deltas, "activations", k.activations)
	return k.stats(), nil
}

func (k *Kernel) resume(p *Process) {
	if p.finished {
		return
	}
	k.activations++
	p.resume <- struct{}{}
	<-k.yield
}

func (k *Kernel) stats() Stats {
	return Stats{
		Now:         k.now,
		Deltas:      k.deltas,
		Activations: k.activations,
		Processes:   len(k.procs),
	}
}

// Shutdown releases every suspended process goroutine. It is safe to call
// more than once.
func (k *Kernel) Shutdown() {
	k.stopOnce.Do(func() {
		close(k.done)
	})
}
