// Package memory is the source and sink of a simulation. Values are
// published to their dependents when the run starts; results are collected
// and reported every time all of them have been written.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/dfsim/internal/ctxlog"
	"github.com/specialistvlad/dfsim/internal/kernel"
	"github.com/specialistvlad/dfsim/internal/node"
	"github.com/specialistvlad/dfsim/internal/observer"
	"github.com/specialistvlad/dfsim/internal/value"
)

// ErrUnknownValue is returned for a value id the memory does not hold.
var ErrUnknownValue = errors.New("unknown memory value")

// Result is one written value of a snapshot.
type Result struct {
	ID    int
	Name  string
	Kind  value.Kind
	Value int64
}

// Snapshot is the state of every result once all of them were written.
type Snapshot struct {
	Memory string
	Time   time.Duration
	Delta  uint64
	Values []Result
}

// Reporter receives snapshots.
type Reporter interface {
	Report(ctx context.Context, s Snapshot) error
}

type cell struct {
	id   int
	name string
	kind value.Kind
	buf  []byte
	obs  *observer.Value
}

// Memory publishes source values and records results.
type Memory struct {
	node.Task

	k       *kernel.Kernel
	sources map[int]*cell
	results map[int]*cell
	written *kernel.Barrier
	outputs int

	snapshots []Snapshot
	started   bool
}

// New returns an empty memory.
func New(k *kernel.Kernel, a node.Attrs) *Memory {
	a.Class = "memory"
	return &Memory{
		Task:    node.NewTask(a),
		k:       k,
		sources: make(map[int]*cell),
		results: make(map[int]*cell),
		written: k.NewBarrier(a.Name + ".results"),
	}
}

// AddValue declares a source value published under slot id.
func (m *Memory) AddValue(id int, name string, kind value.Kind, init int64) error {
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("memory %s: value %d (%s): %w", m.Name(), id, name, node.ErrDuplicateID)
	}
	m.sources[id] = &cell{id: id, name: name, kind: kind, buf: value.Encode(kind, init)}
	if id+1 > m.outputs {
		m.outputs = id + 1
	}
	return nil
}

// AddResult declares a result written through input id.
func (m *Memory) AddResult(id int, name string, kind value.Kind) error {
	if _, ok := m.results[id]; ok {
		return fmt.Errorf("memory %s: result %d (%s): %w", m.Name(), id, name, node.ErrDuplicateID)
	}
	buf := value.New(kind)
	sig := m.k.NewSignal(fmt.Sprintf("%s.%s", m.Name(), name))
	c := &cell{id: id, name: name, kind: kind, buf: buf, obs: observer.NewValue(sig, buf)}
	m.results[id] = c
	m.written.Add(sig)
	return nil
}

// Set changes a source value before the run starts.
func (m *Memory) Set(id int, v int64) error {
	c, ok := m.sources[id]
	if !ok {
		return fmt.Errorf("memory %s: value %d: %w", m.Name(), id, ErrUnknownValue)
	}
	copy(c.buf, value.Encode(c.kind, v))
	return nil
}

// Value returns the current content of a source value.
func (m *Memory) Value(id int) (int64, error) {
	c, ok := m.sources[id]
	if !ok {
		return 0, fmt.Errorf("memory %s: value %d: %w", m.Name(), id, ErrUnknownValue)
	}
	return value.Decode(c.kind, c.buf), nil
}

// Outputs returns the number of source slots.
func (m *Memory) Outputs() int { return m.outputs }

// HasValue reports whether slot id carries a source value.
func (m *Memory) HasValue(id int) bool {
	_, ok := m.sources[id]
	return ok
}

// Input returns the observer of result id.
func (m *Memory) Input(id int) (observer.Observer, error) {
	c, ok := m.results[id]
	if !ok {
		return nil, fmt.Errorf("memory %s: result %d: %w", m.Name(), id, observer.ErrNotFound)
	}
	return c.obs, nil
}

// Snapshots returns every snapshot taken so far.
func (m *Memory) Snapshots() []Snapshot { return m.snapshots }

// Start spawns the routines that publish the sources at time zero and
// collect the results. It must be called once, after assembly.
func (m *Memory) Start(r Reporter) {
	if m.started {
		panic(fmt.Sprintf("memory %s: started twice", m.Name()))
	}
	m.started = true

	m.k.Spawn(m.Name()+".publish", func(p *kernel.Process) {
		ctxlog.FromContext(p.Context()).Debug("Publishing memory values.", "memory", m.Name(), "values", len(m.sources))
		for _, id := range sortedIDs(m.sources) {
			m.Notify(id, m.sources[id].buf)
		}
	})

	if len(m.results) == 0 {
		return
	}
	m.k.Spawn(m.Name()+".collect", func(p *kernel.Process) {
		for {
			p.Wait(m.written)
			s := m.snapshot()
			m.snapshots = append(m.snapshots, s)
			if r == nil {
				continue
			}
			if err := r.Report(p.Context(), s); err != nil {
				ctxlog.FromContext(p.Context()).Warn("Failed to report snapshot.", "memory", m.Name(), "error", err)
			}
		}
	})
}

func (m *Memory) snapshot() Snapshot {
	s := Snapshot{Memory: m.Name(), Time: m.k.Now(), Delta: m.k.Delta()}
	for _, id := range sortedIDs(m.results) {
		c := m.results[id]
		s.Values = append(s.Values, Result{ID: id, Name: c.name, Kind: c.kind, Value: value.Decode(c.kind, c.buf)})
	}
	return s
}

func sortedIDs(cells map[int]*cell) []int {
	ids := make([]int, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
