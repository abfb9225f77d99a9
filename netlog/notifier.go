package netlog

import (
	"context"
	"sync"
)

// Notifier fans out items to subscribers that registered a match function.
//
// Subscribe registers synchronously: once it returns, every later Notify with a
// matching item reaches the subscriber. Each subscriber keeps its first
// SubscriberBufferSize matches; further matches are dropped until it reads.
type Notifier[T any] struct {
	mu          sync.RWMutex
	subscribers map[<-chan T]*subscription[T]
	bufferSize  int
	closed      bool
}

type subscription[T any] struct {
	ch    chan T
	match func(T) bool
}

// NotifierOptions configures a notifier
type NotifierOptions struct {
	// SubscriberBufferSize is the buffer size for each subscriber channel
	SubscriberBufferSize int
}

// DefaultNotifierOptions returns default options for a notifier
func DefaultNotifierOptions() NotifierOptions {
	return NotifierOptions{
		SubscriberBufferSize: 16,
	}
}

// NewNotifier creates a new notifier with default options
func NewNotifier[T any]() *Notifier[T] {
	return NewNotifierWithOptions[T](DefaultNotifierOptions())
}

// NewNotifierWithOptions creates a new notifier with specified options
func NewNotifierWithOptions[T any](options NotifierOptions) *Notifier[T] {
	if options.SubscriberBufferSize < 1 {
		options.SubscriberBufferSize = 1
	}
	return &Notifier[T]{
		subscribers: make(map[<-chan T]*subscription[T]),
		bufferSize:  options.SubscriberBufferSize,
	}
}

// Subscribe returns a channel receiving items for which match returns true.
// A nil match receives everything. The subscription ends when ctx is done.
func (n *Notifier[T]) Subscribe(ctx context.Context, match func(T) bool) <-chan T {
	ch := make(chan T, n.bufferSize)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch
	}
	n.subscribers[ch] = &subscription[T]{ch: ch, match: match}
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.Unsubscribe(ch)
	}()

	return ch
}

// Unsubscribe removes a subscription and closes its channel
func (n *Notifier[T]) Unsubscribe(ch <-chan T) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if sub, exists := n.subscribers[ch]; exists {
		delete(n.subscribers, ch)
		close(sub.ch)
	}
}

// Notify delivers item to all matching subscribers without blocking.
func (n *Notifier[T]) Notify(item T) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return
	}

	for _, sub := range n.subscribers {
		if sub.match != nil && !sub.match(item) {
			continue
		}
		select {
		case sub.ch <- item:
		default:
			// Subscriber buffer full
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (n *Notifier[T]) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

// Close closes the notifier and all subscriber channels
func (n *Notifier[T]) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true

	for _, sub := range n.subscribers {
		close(sub.ch)
	}
	n.subscribers = nil
}
