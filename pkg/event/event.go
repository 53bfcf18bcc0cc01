// Package event is a small synchronous publish/subscribe bus.
//
// The storefront session publishes its changes on a Bus so stores that
// depend on the signed-in user (cart, wishlist) refetch without the session
// knowing about them:
//
//	bus := event.NewBus()
//	unsubscribe := bus.Listen(SessionChanged, func(p any) { ... })
//	bus.Fire(SessionChanged, state)
package event

import "sync"

// Handler receives an event payload.
type Handler func(payload any)

// Bus dispatches events to listeners. The zero value is not usable; call
// NewBus.
type Bus struct {
	mu       sync.RWMutex
	next     int
	handlers map[string]map[int]Handler
	order    map[string][]int
}

func NewBus() *Bus {
	return &Bus{handlers: map[string]map[int]Handler{}, order: map[string][]int{}}
}

// Listen registers h for event and returns a func that removes it.
func (b *Bus) Listen(event string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	if b.handlers[event] == nil {
		b.handlers[event] = map[int]Handler{}
	}
	b.handlers[event][id] = h
	b.order[event] = append(b.order[event], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers[event], id)
			ids := b.order[event]
			for i, v := range ids {
				if v == id {
					b.order[event] = append(ids[:i:i], ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Fire calls every listener of event in registration order on the caller's
// goroutine. Listeners may Listen or unsubscribe while being called.
func (b *Bus) Fire(event string, payload any) {
	b.mu.RLock()
	hs := make([]Handler, 0, len(b.order[event]))
	for _, id := range b.order[event] {
		hs = append(hs, b.handlers[event][id])
	}
	b.mu.RUnlock()

	for _, h := range hs {
		h(payload)
	}
}

// Len returns the number of listeners for event.
func (b *Bus) Len(event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order[event])
}
