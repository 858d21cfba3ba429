package nodeid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var segmentRegex = regexp.MustCompile(`^([a-zA-Z_][a-zA-Z0-9_-]*)(?:\[(\d+)\])?$`)

// Parse reads the canonical form produced by Address.String.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	var addr Address
	for _, part := range strings.Split(raw, ".") {
		if part == "" {
			return Address{}, fmt.Errorf("identifier %q contains an empty segment", raw)
		}
		m := segmentRegex.FindStringSubmatch(part)
		if m == nil {
			return Address{}, fmt.Errorf("invalid segment %q in %q", part, raw)
		}
		seg := Named(m[1])
		if m[2] != "" {
			id, err := strconv.Atoi(m[2])
			if err != nil {
				return Address{}, fmt.Errorf("segment %q: %w", part, err)
			}
			seg.ID = id
		}
		addr.Path = append(addr.Path, seg)
	}
	return addr, nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(raw string) Address {
	a, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return a
}
