package executor

import (
	"container/heap"

	"github.com/kbukum/ticksim/message"
)

// Entry is a pending request.
type Entry struct {
	// Earliest is the first tick at which the request may be examined.
	Earliest message.Tick
	Action   message.Action
	// Received is the tick at which the driver submitted the request.
	Received message.Tick

	seq uint64
}

// Queue orders entries by Earliest, then by submission order.
// It is owned by a single executor and is not safe for concurrent use.
type Queue struct {
	entries entryHeap
	next    uint64
}

// Push enqueues a new entry behind every entry with the same Earliest.
func (q *Queue) Push(earliest message.Tick, action message.Action, received message.Tick) {
	heap.Push(&q.entries, Entry{Earliest: earliest, Action: action, Received: received, seq: q.next})
	q.next++
}

// Requeue puts back an entry returned by Pop, keeping its original position
// among entries with the same Earliest.
func (q *Queue) Requeue(e Entry) {
	heap.Push(&q.entries, e)
}

// Peek returns the head entry without removing it.
func (q *Queue) Peek() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// Pop removes and returns the head entry.
func (q *Queue) Pop() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return heap.Pop(&q.entries).(Entry), true
}

// Len returns the number of pending entries.
func (q *Queue) Len() int { return len(q.entries) }

// Entries returns the pending entries in dequeue order.
func (q *Queue) Entries() []Entry {
	cp := make(entryHeap, len(q.entries))
	copy(cp, q.entries)
	out := make([]Entry, 0, len(cp))
	for len(cp) > 0 {
		out = append(out, heap.Pop(&cp).(Entry))
	}
	return out
}

type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Earliest != h[j].Earliest {
		return h[i].Earliest < h[j].Earliest
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(Entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
