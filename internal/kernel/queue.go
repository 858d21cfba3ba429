package kernel

import (
	"container/heap"
	"time"
)

// timedEntry is either a signal notification or a process wakeup.
type timedEntry struct {
	at   time.Duration
	seq  uint64
	sig  *Signal
	proc *Process
}

// timedQueue orders entries by time, then by insertion order.
type timedQueue []timedEntry

func (q timedQueue) Len() int { return len(q) }

func (q timedQueue) Less(i, j int) bool {
	if q[i].at != q[j].at {
		return q[i].at < q[j].at
	}
	return q[i].seq < q[j].seq
}

func (q timedQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *timedQueue) Push(x any) { *q = append(*q, x.(timedEntry)) }

func (q *timedQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}

func (q *timedQueue) push(e timedEntry) { heap.Push(q, e) }

func (q *timedQueue) pop() timedEntry { return heap.Pop(q).(timedEntry) }

func (q timedQueue) peek() timedEntry { return q[0] }
