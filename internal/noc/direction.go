package noc

import "fmt"

// Direction names an outgoing link of an interconnect. Y grows downwards.
type Direction int

const (
	East Direction = iota
	West
	North
	South
	NorthEast
	NorthWest
	SouthEast
	SouthWest

	// Target marks a transaction that has arrived.
	Target Direction = -1
)

var directionNames = [...]string{"east", "west", "north", "south", "northeast", "northwest", "southeast", "southwest"}

func (d Direction) String() string {
	if d == Target {
		return "target"
	}
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Offset returns the position change of one hop in direction d.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case East:
		return 1, 0
	case West:
		return -1, 0
	case North:
		return 0, -1
	case South:
		return 0, 1
	case NorthEast:
		return 1, -1
	case NorthWest:
		return -1, -1
	case SouthEast:
		return 1, 1
	case SouthWest:
		return -1, 1
	default:
		return 0, 0
	}
}

// Diagonal reports whether d is one of the extended links.
func (d Direction) Diagonal() bool {
	return d >= NorthEast
}

// NextHop picks the link for the remaining distance: X before Y, or a
// diagonal link while both axes are pending and diagonals are enabled.
func NextHop(dx, dy int, diagonal bool) Direction {
	switch {
	case diagonal && dx > 0 && dy < 0:
		return NorthEast
	case diagonal && dx < 0 && dy < 0:
		return NorthWest
	case diagonal && dx > 0 && dy > 0:
		return SouthEast
	case diagonal && dx < 0 && dy > 0:
		return SouthWest
	case dx > 0:
		return East
	case dx < 0:
		return West
	case dy > 0:
		return South
	case dy < 0:
		return North
	default:
		return Target
	}
}
