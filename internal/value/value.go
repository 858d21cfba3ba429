// Package value encodes the scalar kinds that travel between vertices.
// Integers are 8 bytes little-endian, booleans a single byte.
package value

import (
	"encoding/binary"
	"fmt"
)

// Kind identifies the encoding of a value slot.
type Kind int

const (
	Int Kind = iota
	Bool
)

// Size returns the number of bytes a value of kind k occupies.
func (k Kind) Size() int {
	switch k {
	case Bool:
		return 1
	default:
		return 8
	}
}

func (k Kind) String() string {
	switch k {
	case Int:
		return "number"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a configuration type name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "number", "int":
		return Int, nil
	case "bool":
		return Bool, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", s)
	}
}

// New returns a zeroed buffer for kind k.
func New(k Kind) []byte {
	return make([]byte, k.Size())
}

// PutInt writes v into b.
func PutInt(b []byte, v int64) {
	binary.LittleEndian.PutUint64(b, uint64(v))
}

// Int64 reads an integer from b.
func Int64(b []byte) int64 {
	return int64(binary.LittleEndian.Uint64(b))
}

// PutBool writes v into b.
func PutBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}

// Truth reads a boolean from b. Any non-zero byte is true, which lets an
// integer slot drive a condition.
func Truth(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return true
		}
	}
	return false
}

// Encode returns a fresh buffer of kind k holding v.
func Encode(k Kind, v int64) []byte {
	b := New(k)
	switch k {
	case Bool:
		PutBool(b, v != 0)
	default:
		PutInt(b, v)
	}
	return b
}

// Decode reads b as kind k, booleans as 0 or 1.
func Decode(k Kind, b []byte) int64 {
	switch k {
	case Bool:
		if Truth(b) {
			return 1
		}
		return 0
	default:
		return Int64(b)
	}
}
