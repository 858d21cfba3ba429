package node

import "github.com/specialistvlad/dfsim/internal/observer"

type registration struct {
	obs  observer.Observer
	slot int
}

// Publisher fans a value slot out to its registered observers. It does not
// own the observers.
type Publisher struct {
	regs []registration
}

// Register subscribes obs to slot. Registering the same pair twice is a no-op.
func (p *Publisher) Register(obs observer.Observer, slot int) {
	for _, r := range p.regs {
		if r.obs == obs && r.slot == slot {
			return
		}
	}
	p.regs = append(p.regs, registration{obs: obs, slot: slot})
}

// Unregister removes the first matching pair, if any.
func (p *Publisher) Unregister(obs observer.Observer, slot int) {
	for i, r := range p.regs {
		if r.obs == obs && r.slot == slot {
			p.regs = append(p.regs[:i], p.regs[i+1:]...)
			return
		}
	}
}

// Notify hands data to every observer registered on slot, in registration
// order.
func (p *Publisher) Notify(slot int, data []byte) {
	for _, r := range p.regs {
		if r.slot == slot {
			r.obs.Notify(data)
		}
	}
}

// Subscribers returns the number of observers registered on slot.
func (p *Publisher) Subscribers(slot int) int {
	n := 0
	for _, r := range p.regs {
		if r.slot == slot {
			n++
		}
	}
	return n
}
