package nodeid

import (
	"slices"
	"strconv"
	"strings"
)

// Segment is one component of an address, e.g. `and3[5]`.
type Segment struct {
	Name string
	// ID is -1 when the segment carries no id.
	ID int
}

// Named returns a segment without an id.
func Named(name string) Segment {
	return Segment{Name: name, ID: -1}
}

// WithID returns a segment carrying id.
func WithID(name string, id int) Segment {
	return Segment{Name: name, ID: id}
}

// HasID reports whether the segment carries an id.
func (s Segment) HasID() bool {
	return s.ID != -1
}

func (s Segment) String() string {
	if !s.HasID() {
		return s.Name
	}
	return s.Name + "[" + strconv.Itoa(s.ID) + "]"
}

// Address is the path of a graph element.
type Address struct {
	Path []Segment
}

// New returns an address made of segments.
func New(segments ...Segment) Address {
	return Address{Path: slices.Clone(segments)}
}

// Child returns a copy of a extended by one named segment.
func (a Address) Child(name string) Address {
	return a.append(Named(name))
}

// Node returns a copy of a extended by a segment naming node id.
func (a Address) Node(name string, id int) Address {
	return a.append(WithID(name, id))
}

func (a Address) append(s Segment) Address {
	path := make([]Segment, len(a.Path), len(a.Path)+1)
	copy(path, a.Path)
	return Address{Path: append(path, s)}
}

// Parent returns the address without its last segment.
func (a Address) Parent() Address {
	if len(a.Path) == 0 {
		return a
	}
	return Address{Path: slices.Clone(a.Path[:len(a.Path)-1])}
}

// Last returns the final segment, or a zero segment for an empty address.
func (a Address) Last() Segment {
	if len(a.Path) == 0 {
		return Named("")
	}
	return a.Path[len(a.Path)-1]
}

// IsZero reports whether the address has no segments.
func (a Address) IsZero() bool {
	return len(a.Path) == 0
}

// String renders the canonical form.
func (a Address) String() string {
	parts := make([]string, len(a.Path))
	for i, s := range a.Path {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Equal compares two addresses segment by segment.
func (a Address) Equal(other Address) bool {
	return slices.Equal(a.Path, other.Path)
}
