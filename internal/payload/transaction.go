// Package payload provides the pooled transaction objects that carry values
// across the interconnect, together with their routing extension.
package payload

import "fmt"

// Command is the access kind of a transaction.
type Command int

const (
	CommandIgnore Command = iota
	CommandRead
	CommandWrite
)

func (c Command) String() string {
	switch c {
	case CommandRead:
		return "read"
	case CommandWrite:
		return "write"
	default:
		return "ignore"
	}
}

// Status is the response status of a transaction.
type Status int

const (
	StatusIncomplete Status = iota
	StatusOK
	StatusGenericError
	StatusAddressError
	StatusCommandError
	StatusBurstError
	StatusByteEnableError
)

func (s Status) String() string {
	switch s {
	case StatusIncomplete:
		return "incomplete"
	case StatusOK:
		return "ok"
	case StatusGenericError:
		return "generic error"
	case StatusAddressError:
		return "address error"
	case StatusCommandError:
		return "command error"
	case StatusBurstError:
		return "burst error"
	case StatusByteEnableError:
		return "byte enable error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Transaction is a pooled, reference-counted transfer of one value.
type Transaction struct {
	Command        Command
	Address        int
	Data           []byte
	StreamingWidth int
	ByteEnable     []byte
	DMIAllowed     bool
	Status         Status

	ext  *RoutingExtension
	refs int
	pool *Pool
	free bool
}

// Extension returns the routing extension, or nil.
func (t *Transaction) Extension() *RoutingExtension { return t.ext }

// SetExtension attaches e, replacing any previous extension.
func (t *Transaction) SetExtension(e *RoutingExtension) { t.ext = e }

// Refs returns the current reference count.
func (t *Transaction) Refs() int { return t.refs }

// Acquire adds a reference.
func (t *Transaction) Acquire() { t.refs++ }

// Release drops a reference. The last release returns the transaction to its
// pool.
func (t *Transaction) Release() {
	if t.refs <= 0 {
		panic("payload: release of a transaction without references")
	}
	t.refs--
	if t.refs == 0 && t.pool != nil {
		t.pool.Free(t)
	}
}

func (t *Transaction) reset() {
	t.Command = CommandIgnore
	t.Address = 0
	t.Data = nil
	t.StreamingWidth = 0
	t.ByteEnable = nil
	t.DMIAllowed = false
	t.Status = StatusIncomplete
	t.ext = nil
	t.refs = 0
}

// RoutingExtension counts the hops still to travel on each axis. Negative
// values point west/up, positive ones east/down.
type RoutingExtension struct {
	DX, DY int
}

// TargetReached reports whether no hop is left.
func (e *RoutingExtension) TargetReached() bool {
	return e.DX == 0 && e.DY == 0
}

// Clone returns a copy of e.
func (e *RoutingExtension) Clone() *RoutingExtension {
	c := *e
	return &c
}

// CopyFrom overwrites e with o.
func (e *RoutingExtension) CopyFrom(o *RoutingExtension) {
	*e = *o
}

// Step moves the counters of the traveled axes one unit toward zero.
func (e *RoutingExtension) Step(x, y bool) {
	if x {
		e.DX = towardZero(e.DX)
	}
	if y {
		e.DY = towardZero(e.DY)
	}
}

func towardZero(v int) int {
	switch {
	case v < 0:
		return v + 1
	case v > 0:
		return v - 1
	default:
		return 0
	}
}
