package payload

import "fmt"

// Pool recycles transactions and routing extensions. It never shrinks;
// every object it ever created stays in its audit list.
type Pool struct {
	name    string
	all     []*Transaction
	free    []*Transaction
	allExt  int
	freeExt []*RoutingExtension
}

// NewPool returns an empty pool.
func NewPool(name string) *Pool {
	return &Pool{name: name}
}

// Name returns the pool's name.
func (p *Pool) Name() string { return p.name }

// Allocate returns a reset transaction holding one reference.
func (p *Pool) Allocate() *Transaction {
	var tx *Transaction
	if n := len(p.free); n > 0 {
		tx = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		tx = &Transaction{pool: p}
		p.all = append(p.all, tx)
	}
	tx.refs = 1
	tx.free = false
	return tx
}

// AllocateExtension returns a zeroed routing extension.
func (p *Pool) AllocateExtension() *RoutingExtension {
	if n := len(p.freeExt); n > 0 {
		e := p.freeExt[n-1]
		p.freeExt[n-1] = nil
		p.freeExt = p.freeExt[:n-1]
		return e
	}
	p.allExt++
	return &RoutingExtension{}
}

// Free resets every field of tx and returns it, and its extension, to the
// pool. Transactions normally come back through Release. Freeing a
// transaction that is already in the pool panics.
func (p *Pool) Free(tx *Transaction) {
	if tx.free {
		panic(fmt.Sprintf("payload %s: transaction freed twice", p.name))
	}
	if e := tx.ext; e != nil {
		*e = RoutingExtension{}
		p.freeExt = append(p.freeExt, e)
	}
	tx.reset()
	tx.free = true
	p.free = append(p.free, tx)
}

// HighWater returns the number of transactions ever created.
func (p *Pool) HighWater() int { return len(p.all) }

// NumFree returns the number of transactions ready for reuse.
func (p *Pool) NumFree() int { return len(p.free) }

// Outstanding returns the number of transactions still in use.
func (p *Pool) Outstanding() int { return len(p.all) - len(p.free) }

// Extensions returns the number of extensions ever created and the number
// ready for reuse.
func (p *Pool) Extensions() (created, free int) { return p.allExt, len(p.freeExt) }
