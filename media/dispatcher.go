package media

import "sync"

// Handler receives events of the kind it was subscribed for.
type Handler func(Event)

// Dispatcher keeps one ordered handler list per event kind.
// The zero value is ready to use.
type Dispatcher struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[EventKind][]subscription
}

type subscription struct {
	id      uint64
	handler Handler
}

// Subscribe registers h for kind and returns a function removing exactly that registration.
func (d *Dispatcher) Subscribe(kind EventKind, h Handler) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.handlers == nil {
		d.handlers = make(map[EventKind][]subscription)
	}
	d.nextID++
	id := d.nextID
	d.handlers[kind] = append(d.handlers[kind], subscription{id: id, handler: h})

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(kind, id) })
	}
}

func (d *Dispatcher) remove(kind EventKind, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[kind]
	for i, sub := range subs {
		if sub.id == id {
			d.handlers[kind] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Count reports how many handlers are registered for kind.
func (d *Dispatcher) Count(kind EventKind) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[kind])
}

// Emit calls every handler registered for ev.Kind. Handlers run outside the
// dispatcher lock so they may subscribe or unsubscribe.
func (d *Dispatcher) Emit(ev Event) {
	d.mu.RLock()
	subs := append([]subscription(nil), d.handlers[ev.Kind]...)
	d.mu.RUnlock()

	for _, sub := range subs {
		sub.handler(ev)
	}
}
