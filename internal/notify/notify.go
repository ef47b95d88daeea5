// Package notify provides a small synchronous observer list used for
// control value changes and the form-wide field change stream.
package notify

import (
	"sort"
	"sync"
)

// Observer receives emitted values.
type Observer[T any] func(T)

// Subscription represents an active observer subscription.
type Subscription struct {
	id     uint64
	cancel func(uint64)
}

// Unsubscribe removes this subscription. Calling it more than once is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.cancel == nil {
		return
	}
	s.cancel(s.id)
	s.cancel = nil
}

// Notifier delivers values to its observers in subscription order.
// The zero value is ready to use.
type Notifier[T any] struct {
	mu        sync.Mutex
	observers map[uint64]Observer[T]
	nextID    uint64
	closed    bool
}

// New creates an empty Notifier.
func New[T any]() *Notifier[T] {
	return &Notifier[T]{}
}

// Subscribe registers an observer. Subscribing to a closed notifier returns
// an inert subscription.
func (n *Notifier[T]) Subscribe(observer Observer[T]) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || observer == nil {
		return &Subscription{}
	}
	if n.observers == nil {
		n.observers = make(map[uint64]Observer[T])
	}
	n.nextID++
	id := n.nextID
	n.observers[id] = observer
	return &Subscription{id: id, cancel: n.unsubscribe}
}

func (n *Notifier[T]) unsubscribe(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.observers, id)
}

// Emit calls every observer with v. Observers may subscribe or unsubscribe
// during delivery; the change applies to the next Emit.
func (n *Notifier[T]) Emit(v T) {
	n.mu.Lock()
	ids := make([]uint64, 0, len(n.observers))
	for id := range n.observers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	observers := make([]Observer[T], 0, len(ids))
	for _, id := range ids {
		observers = append(observers, n.observers[id])
	}
	n.mu.Unlock()

	for _, o := range observers {
		o(v)
	}
}

// Len reports the number of active observers.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.observers)
}

// Close drops every observer and rejects future subscriptions.
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = nil
	n.closed = true
}
