package selection

import (
	"sort"
	"sync"
)

// PointerBus fans document-level pointer-down events out to every control
// that subscribed in Init. It replaces a global click listener: each
// subscription is explicit and can be released on teardown.
type PointerBus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Element)
}

// NewPointerBus creates an empty bus
func NewPointerBus() *PointerBus {
	return &PointerBus{subs: make(map[int]func(Element))}
}

// Subscribe registers fn for every published pointer-down.
func (b *PointerBus) Subscribe(fn func(Element)) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[int]func(Element))
	}
	id := b.next
	b.next++
	b.subs[id] = fn
	return &Subscription{cancel: func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}}
}

// Publish delivers a pointer-down on target to all subscribers, in
// subscription order. Handlers run on the caller's goroutine.
func (b *PointerBus) Publish(target Element) {
	b.mu.Lock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	handlers := make([]func(Element), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(target)
	}
}

// Len returns the number of live subscriptions
func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Subscription is a handle on a bus listener. The zero value and nil are
// valid no-op subscriptions.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe releases the listener. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
