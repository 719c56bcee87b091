package hmr

import "sync"

// Emitter is the in-process fanout point described by §4.F: every HMR
// event reaches every subscriber, in event order.
type Emitter struct {
	mu          sync.Mutex
	subscribers map[int]func(Event)
	nextID      int
}

// NewEmitter constructs an empty Emitter.
func NewEmitter() *Emitter {
	return &Emitter{subscribers: make(map[int]func(Event))}
}

// Subscribe registers fn to receive every future event. The returned
// cancel func removes the subscription.
func (e *Emitter) Subscribe(fn func(Event)) (cancel func()) {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subscribers[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// Emit delivers evt to every current subscriber, in registration order is
// not guaranteed but delivery to all of them happens-before Emit returns.
func (e *Emitter) Emit(evt Event) {
	e.mu.Lock()
	fns := make([]func(Event), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}
