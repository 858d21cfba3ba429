// Package noc models the on-chip mesh between process units. Every unit has
// an interconnect that picks up values bound for other units, packs them into
// pooled transactions and forwards them link by link, one transaction per
// link at a time.
package noc

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/observer"
	"github.com/specialistvlad/dfsim/internal/payload"
	"github.com/specialistvlad/dfsim/internal/scheduler"
)

var (
	// ErrNoExtension is returned when a transaction has no routing extension.
	ErrNoExtension = errors.New("transaction has no routing extension")
	// ErrNoTable is returned when the interconnect has no routes yet.
	ErrNoTable = errors.New("transmission table not initialized")
	// ErrNoRoute is returned when the mesh has no path between two units.
	ErrNoRoute = errors.New("no route")
)

// Descriptor tells an interconnect where an observed value goes.
type Descriptor struct {
	Link     Direction
	DX, DY   int
	DestSlot int
}

// Stats counts the traffic an interconnect originated.
type Stats struct {
	Routed   uint64
	Rejected uint64
	Hops     uint64
}

// Interconnect is the network port of one unit. As a publisher it delivers
// arriving values to local observers under their destination slot.
type Interconnect struct {
	node.Publisher

	name string
	x, y int
	k    *kernel.Kernel
	mesh *Mesh

	links   []*scheduler.Arbiter
	routes  *observer.Pool[*observer.Routing]
	pending map[int]*[]byte
	table   map[int]Descriptor
	slots   int
	pool    *payload.Pool
	stats   Stats
}

func newInterconnect(m *Mesh, name string, x, y int) *Interconnect {
	n := 4
	if m.cfg.Diagonal {
		n = 8
	}
	ic := &Interconnect{
		name:    name,
		x:       x,
		y:       y,
		k:       m.k,
		mesh:    m,
		routes:  observer.NewPool[*observer.Routing](),
		pending: make(map[int]*[]byte),
		pool:    payload.NewPool(name),
	}
	for d := Direction(0); int(d) < n; d++ {
		ic.links = append(ic.links, scheduler.New(m.k, fmt.Sprintf("%s.%s", name, d)))
	}
	return ic
}

// Name returns the interconnect name.
func (ic *Interconnect) Name() string { return ic.name }

// Position returns the mesh coordinates.
func (ic *Interconnect) Position() (x, y int) { return ic.x, ic.y }

// Pool returns the transaction pool.
func (ic *Interconnect) Pool() *payload.Pool { return ic.pool }

// Stats returns the traffic counters.
func (ic *Interconnect) Stats() Stats { return ic.stats }

// Link returns the arbiter of an outgoing link.
func (ic *Interconnect) Link(d Direction) (*scheduler.Arbiter, error) {
	if d < 0 || int(d) >= len(ic.links) {
		return nil, fmt.Errorf("%s: no %s link", ic.name, d)
	}
	return ic.links[d], nil
}

// RequestLink asks for the outgoing link on behalf of the routine waiting on
// grant and reports whether the request was queued.
func (ic *Interconnect) RequestLink(grant *kernel.Signal, d Direction) (queued bool) {
	link, err := ic.Link(d)
	if err != nil {
		panic(err.Error())
	}
	return link.Request(grant)
}

// reserveSlot returns a fresh destination slot on this interconnect.
func (ic *Interconnect) reserveSlot() int {
	s := ic.slots
	ic.slots++
	return s
}

// AddRoute creates a routing observer for a value described by desc and
// spawns the routine that ships it. The observer is returned so the caller
// can register it on the producing node.
func (ic *Interconnect) AddRoute(desc Descriptor) (int, *observer.Routing) {
	if ic.table == nil {
		ic.table = make(map[int]Descriptor)
	}
	slot := new([]byte)
	id := ic.routes.NextID()
	sig := ic.k.NewSignal(fmt.Sprintf("%s.route%d", ic.name, id))
	obs := observer.NewRouting(sig, slot, 0)
	ic.routes.Add(obs)
	ic.pending[id] = slot
	ic.table[id] = desc

	ready := ic.k.NewBarrier(sig.Name(), sig)
	grant := ic.k.NewSignal(sig.Name() + ".grant")
	granted := ic.k.NewBarrier(grant.Name(), grant)
	ic.k.Spawn(sig.Name(), func(p *kernel.Process) {
		for {
			p.Wait(ready)
			ic.ship(p, id, grant, granted)
		}
	})
	return id, obs
}

// Descriptor returns the descriptor of a route.
func (ic *Interconnect) Descriptor(id int) (Descriptor, error) {
	if ic.table == nil {
		return Descriptor{}, fmt.Errorf("%s: %w", ic.name, ErrNoTable)
	}
	d, ok := ic.table[id]
	if !ok {
		return Descriptor{}, fmt.Errorf("%s: route %d: %w", ic.name, id, observer.ErrNotFound)
	}
	return d, nil
}

// Pack fills tx with the pending value of route id and returns the first
// link to take.
func (ic *Interconnect) Pack(tx *payload.Transaction, id int) (Direction, error) {
	desc, err := ic.Descriptor(id)
	if err != nil {
		return Target, err
	}
	ext := tx.Extension()
	if ext == nil {
		return Target, fmt.Errorf("%s: %w", ic.name, ErrNoExtension)
	}
	data := *ic.pending[id]
	tx.Data = data
	tx.StreamingWidth = len(data)
	tx.Command = payload.CommandRead
	tx.Address = desc.DestSlot
	ext.DX, ext.DY = desc.DX, desc.DY
	return desc.Link, nil
}

// Validate rejects features the interconnect does not model and sets the
// response status accordingly.
func (ic *Interconnect) Validate(tx *payload.Transaction) bool {
	switch {
	case len(tx.Data) > tx.StreamingWidth:
		tx.Status = payload.StatusGenericError
		return false
	case tx.ByteEnable != nil:
		tx.Status = payload.StatusByteEnableError
		return false
	default:
		tx.Status = payload.StatusOK
		return true
	}
}

// ship moves the pending value of route id to its destination.
func (ic *Interconnect) ship(p *kernel.Process, id int, grant *kernel.Signal, granted *kernel.Barrier) {
	tx := ic.pool.Allocate()
	tx.SetExtension(ic.pool.AllocateExtension())
	link, err := ic.Pack(tx, id)
	if err != nil {
		panic(err.Error())
	}
	ic.forward(p, tx, link, grant, granted)
}

// forward validates a packed transaction and walks it from this unit to its
// target, starting on link. The interconnect drops its reference to tx in
// both cases.
func (ic *Interconnect) forward(p *kernel.Process, tx *payload.Transaction, link Direction, grant *kernel.Signal, granted *kernel.Barrier) {
	logger := ctxlog.FromContext(p.Context())

	if !ic.Validate(tx) {
		logger.Info("Transaction rejected.", "interconnect", ic.name, "slot", tx.Address, "status", tx.Status)
		ic.stats.Rejected++
		tx.Release()
		return
	}

	at := ic
	ext := tx.Extension()
	for link != Target {
		at.RequestLink(grant, link)
		p.Wait(granted)
		p.BlockFor(ic.mesh.cfg.HopLatency)
		arb := at.links[link]
		arb.Charge(ic.mesh.cfg.HopLatency)
		arb.Handoff()

		dx, dy := link.Offset()
		ext.Step(dx != 0, dy != 0)
		next := ic.mesh.at(at.x+dx, at.y+dy)
		if next == nil {
			panic(fmt.Sprintf("%s: hop %s leaves the mesh", at.name, link))
		}
		ic.stats.Hops++
		at = next
		link = NextHop(ext.DX, ext.DY, ic.mesh.cfg.Diagonal)
	}

	p.BlockFor(ic.mesh.cfg.RoutingLatency)
	logger.Debug("Transaction delivered.", "from", ic.name, "to", at.name, "slot", tx.Address, "bytes", len(tx.Data), "at", p.Kernel().Now())
	at.Notify(tx.Address, tx.Data)
	ic.stats.Routed++
	tx.Release()
}
