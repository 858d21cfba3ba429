// Package observer holds the sinks a publisher writes into: value observers
// that copy into a fixed buffer, routing observers that only remember where
// the payload lives, and the id-keyed pool that owns them.
package observer

import (
	"fmt"

	"github.com/specialistvlad/dfsim/internal/kernel"
)

// Observer receives a published value.
type Observer interface {
	Notify(data []byte)
}

// Signaler is implemented by observers that raise a kernel signal on notify.
type Signaler interface {
	Observer
	Signal() *kernel.Signal
}

// Value copies every notification into its destination buffer and fires its
// signal in the next delta cycle.
type Value struct {
	signal *kernel.Signal
	dest   []byte
}

// NewValue returns an observer writing into dest. The length of dest is the
// capacity of the observer.
func NewValue(signal *kernel.Signal, dest []byte) *Value {
	return &Value{signal: signal, dest: dest}
}

// Notify copies data into the destination and fires the signal. Data larger
// than the destination is a protocol violation.
func (v *Value) Notify(data []byte) {
	if len(data) > len(v.dest) {
		panic(fmt.Sprintf("observer %s: %d bytes published into a %d byte slot", v.signal.Name(), len(data), len(v.dest)))
	}
	copy(v.dest, data)
	v.signal.Fire(0)
}

// Signal returns the signal raised on every notification.
func (v *Value) Signal() *kernel.Signal { return v.signal }

// Cap returns the size of the destination buffer.
func (v *Value) Cap() int { return len(v.dest) }

// Bytes returns the destination buffer.
func (v *Value) Bytes() []byte { return v.dest }

// Routing records a reference to the published bytes instead of copying
// them. The interconnect uses it to pick up payloads for transmission.
type Routing struct {
	signal  *kernel.Signal
	slot    *[]byte
	limit   int
	changed bool
}

// NewRouting returns an observer storing each notification in *slot. A
// positive limit caps the accepted payload size.
func NewRouting(signal *kernel.Signal, slot *[]byte, limit int) *Routing {
	return &Routing{signal: signal, slot: slot, limit: limit}
}

// Notify stores data by reference, marks the observer changed and fires.
func (r *Routing) Notify(data []byte) {
	if r.limit > 0 && len(data) > r.limit {
		panic(fmt.Sprintf("observer %s: %d bytes published into a %d byte slot", r.signal.Name(), len(data), r.limit))
	}
	*r.slot = data
	r.changed = true
	r.signal.Fire(0)
}

// Changed reports whether a notification arrived since the last reset and,
// when reset is true, clears the flag.
func (r *Routing) Changed(reset bool) bool {
	c := r.changed
	if reset {
		r.changed = false
	}
	return c
}

// ResetChanged clears the changed flag.
func (r *Routing) ResetChanged() { r.changed = false }

// Signal returns the signal raised on every notification.
func (r *Routing) Signal() *kernel.Signal { return r.signal }

// Data returns the last recorded payload.
func (r *Routing) Data() []byte { return *r.slot }
