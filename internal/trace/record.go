package trace

import (
	"github.com/specialistvlad/dfsim/internal/memory"
	"github.com/specialistvlad/dfsim/internal/value"
)

// Record is the wire form of a snapshot.
type Record struct {
	Memory string         `json:"memory"`
	TimeNS int64          `json:"time_ns"`
	Delta  uint64         `json:"delta"`
	Values map[string]any `json:"values"`
}

// FromSnapshot converts a snapshot into a record. Bool results are emitted
// as booleans, everything else as integers.
func FromSnapshot(s memory.Snapshot) Record {
	r := Record{
		Memory: s.Memory,
		TimeNS: s.Time.Nanoseconds(),
		Delta:  s.Delta,
		Values: make(map[string]any, len(s.Values)),
	}
	for _, v := range s.Values {
		if v.Kind == value.Bool {
			r.Values[v.Name] = v.Value != 0
			continue
		}
		r.Values[v.Name] = v.Value
	}
	return r
}

// payload is the argument handed to the socket emitter.
func (r Record) payload() map[string]any {
	return map[string]any{
		"memory":  r.Memory,
		"time_ns": r.TimeNS,
		"delta":   r.Delta,
		"values":  r.Values,
	}
}
