package observer

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNotFound is returned when an observer id is not in the pool.
var ErrNotFound = errors.New("observer not found")

// Pool owns observers under stable integer ids. Ids start at 0, grow
// monotonically and are never reused while the pool lives.
type Pool[T Observer] struct {
	items  map[int]T
	nextID int
}

// NewPool returns an empty pool.
func NewPool[T Observer]() *Pool[T] {
	return &Pool[T]{items: make(map[int]T)}
}

// Add stores obs and returns its id.
func (p *Pool[T]) Add(obs T) int {
	id := p.nextID
	p.nextID++
	p.items[id] = obs
	return id
}

// Get returns the observer with the given id.
func (p *Pool[T]) Get(id int) (T, error) {
	obs, ok := p.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("id %d: %w", id, ErrNotFound)
	}
	return obs, nil
}

// Remove drops the observer. Removing an unknown id is a no-op.
func (p *Pool[T]) Remove(id int) {
	delete(p.items, id)
}

// Clear drops every observer. Ids keep growing from where they were.
func (p *Pool[T]) Clear() {
	clear(p.items)
}

// Len returns the number of live observers.
func (p *Pool[T]) Len() int { return len(p.items) }

// NextID returns the id the next Add will hand out.
func (p *Pool[T]) NextID() int { return p.nextID }

// IDs returns the live ids in ascending order.
func (p *Pool[T]) IDs() []int {
	ids := make([]int, 0, len(p.items))
	for id := range p.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
