// Package event provides collapsible change events and batched dispatch.
package event

import "fmt"

// Collapsible is an event that can merge with another pending event of the
// same identity to avoid redundant notifications.
type Collapsible interface {
	// Key returns the identity of the event. Two events with equal keys are
	// candidates for collapsing.
	Key() string

	// Collapse merges another event into this one. It returns false when the
	// other event turns out not to share this event's identity, in which case
	// neither event is modified.
	Collapse(other Collapsible) bool
}

// Queue is an ordered, keyed store of pending events. Offering an event whose
// key matches a pending one collapses the two; events with distinct keys keep
// their insertion order. Queue is not safe for concurrent use; callers
// provide their own locking.
type Queue struct {
	order   []string
	pending map[string]Collapsible
	seq     int
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[string]Collapsible)}
}

// Offer inserts the event or collapses it into a pending event with the same
// key. If collapsing fails despite matching keys, the event is kept alongside
// the existing one under a uniquified key rather than dropped.
func (q *Queue) Offer(e Collapsible) {
	key := e.Key()
	existing, ok := q.pending[key]
	if !ok {
		q.insert(key, e)
		return
	}
	if existing.Collapse(e) {
		return
	}
	// Identity mismatch detected late: keep both.
	q.seq++
	q.insert(fmt.Sprintf("%s#%d", key, q.seq), e)
}

func (q *Queue) insert(key string, e Collapsible) {
	q.order = append(q.order, key)
	q.pending[key] = e
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.order)
}

// Drain returns all pending events in insertion order and empties the queue.
func (q *Queue) Drain() []Collapsible {
	if len(q.order) == 0 {
		return nil
	}
	out := make([]Collapsible, 0, len(q.order))
	for _, key := range q.order {
		out = append(out, q.pending[key])
	}
	q.order = q.order[:0]
	q.pending = make(map[string]Collapsible)
	return out
}
