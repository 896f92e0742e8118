package event

import (
	"sync"
)

// Listener receives dispatched events.
type Listener func(e Collapsible)

// Dispatcher delivers events to registered listeners. Inside a Begin/End
// bracket events are queued and collapsed; the outermost End flushes the
// queue so a burst of mutations produces a single notification per event
// identity. Outside a bracket events are delivered immediately.
type Dispatcher struct {
	mu        sync.Mutex
	listeners []registration
	nextID    int
	queue     *Queue
	depth     int
}

type registration struct {
	id int
	l  Listener
}

// NewDispatcher creates a Dispatcher with an empty listener list.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{queue: NewQueue()}
}

// AddListener registers a listener and returns its registration id.
// Listeners are invoked in registration order.
func (d *Dispatcher) AddListener(l Listener) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.listeners = append(d.listeners, registration{id: d.nextID, l: l})
	return d.nextID
}

// RemoveListener deregisters the listener with the given id.
func (d *Dispatcher) RemoveListener(id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, reg := range d.listeners {
		if reg.id == id {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// RemoveAllListeners drops every registered listener.
func (d *Dispatcher) RemoveAllListeners() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = nil
}

// Begin opens an update bracket. Brackets nest; only the outermost End
// flushes queued events.
func (d *Dispatcher) Begin() {
	d.mu.Lock()
	d.depth++
	d.mu.Unlock()
}

// End closes an update bracket, flushing pending events when the outermost
// bracket closes. Safe to call from a defer: flushing happens even when the
// bracketed code panicked and the events were already queued.
func (d *Dispatcher) End() {
	d.mu.Lock()
	if d.depth > 0 {
		d.depth--
	}
	var drained []Collapsible
	var listeners []registration
	if d.depth == 0 {
		drained = d.queue.Drain()
		listeners = append([]registration(nil), d.listeners...)
	}
	d.mu.Unlock()

	for _, e := range drained {
		deliver(listeners, e)
	}
}

// Publish dispatches an event. Within a bracket the event is queued and may
// collapse with a pending event of the same identity; otherwise it is
// delivered immediately.
func (d *Dispatcher) Publish(e Collapsible) {
	d.mu.Lock()
	if d.depth > 0 {
		d.queue.Offer(e)
		d.mu.Unlock()
		return
	}
	listeners := append([]registration(nil), d.listeners...)
	d.mu.Unlock()

	deliver(listeners, e)
}

// Updating reports whether a bracket is currently open.
func (d *Dispatcher) Updating() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.depth > 0
}

// deliver invokes each listener, isolating the dispatcher from listener
// panics so one misbehaving listener cannot poison pending state.
func deliver(listeners []registration, e Collapsible) {
	for _, reg := range listeners {
		func() {
			defer func() { _ = recover() }()
			reg.l(e)
		}()
	}
}
