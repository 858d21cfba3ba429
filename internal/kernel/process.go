package kernel

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/petermattis/goid"
	"github.com/pkg/errors"
)

// Process is a perpetual routine registered with the kernel.
type Process struct {
	name     string
	k        *Kernel
	fn       func(p *Process)
	resume   chan struct{}
	finished bool
}

// Name returns the process name.
func (p *Process) Name() string {
	return p.name
}

// Context returns the context the simulation is running under. It carries
// the logger (see ctxlog).
func (p *Process) Context() context.Context {
	return p.k.ctx
}

// Kernel returns the kernel the process belongs to.
func (p *Process) Kernel() *Kernel {
	return p.k
}

// Wait suspends the process until b is complete, then consumes it.
func (p *Process) Wait(b *Barrier) {
	if b.Len() == 0 {
		panic(fmt.Sprintf("kernel: process %q waits on empty barrier %q", p.name, b.name))
	}
	if b.waiter != nil && b.waiter != p {
		panic(fmt.Sprintf("kernel: barrier %q already has waiter %q", b.name, b.waiter.name))
	}
	if b.Complete() {
		b.consume()
		return
	}
	b.waiter = p
	p.suspend()
}

// BlockFor suspends the process for d of virtual time. A zero duration
// yields for one delta cycle.
func (p *Process) BlockFor(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if d == 0 {
		p.k.deltaProcs = append(p.k.deltaProcs, p)
	} else {
		p.k.schedule(timedEntry{at: p.k.now + d, proc: p})
	}
	p.suspend()
}

// suspend hands control back to the kernel and blocks until resumed. When the
// kernel shuts down, the goroutine exits instead.
func (p *Process) suspend() {
	p.k.yield <- struct{}{}
	select {
	case <-p.resume:
	case <-p.k.done:
		runtime.Goexit()
	}
}

// main is the goroutine body of a process.
func (p *Process) main() {
	select {
	case <-p.resume:
	case <-p.k.done:
		return
	}
	gid := goid.Get()
	p.k.byGID.Store(gid, p)

	defer func() {
		r := recover()
		p.k.byGID.Delete(gid)
		select {
		case <-p.k.done:
			return
		default:
		}
		if r != nil {
			p.k.failure = errors.Errorf("kernel: process %q panicked at %v: %v", p.name, p.k.now, r)
		}
		p.finished = true
		p.k.yield <- struct{}{}
	}()

	p.fn(p)
}
