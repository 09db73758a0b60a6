package scheduler

import "time"

// entry is one armed reminder in the queue.
type entry struct {
	id    uint
	due   time.Time
	seq   uint64 // arm order, breaks ties between equal due times
	index int    // position in the heap, maintained by the heap methods
}

// entryQueue is a min-heap of entries ordered by due time. It implements
// container/heap.Interface.
type entryQueue []*entry

func (q entryQueue) Len() int { return len(q) }

func (q entryQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q entryQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *entryQueue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}

func (q *entryQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// peek returns the earliest entry without removing it.
func (q entryQueue) peek() *entry {
	if len(q) == 0 {
		return nil
	}
	return q[0]
}
