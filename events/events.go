// Package events provides a minimal generic publish/subscribe mechanism used to surface
// verification progress to interested callers such as the CLI.
package events

import (
	"sync"
)

// EventHandler defines a callback invoked with a published event of the generic type.
type EventHandler[T any] func(T)

// EventEmitter describes a provider to which EventHandler callbacks can subscribe, and
// through which events of the generic type are published to every subscriber.
type EventEmitter[T any] struct {
	// subscriptions defines the EventHandler callbacks invoked when an event is
	// published to this emitter.
	subscriptions []EventHandler[T]

	// subscriptionsLock synchronizes access to subscriptions so publishing and
	// subscribing from different goroutines cannot race.
	subscriptionsLock sync.RWMutex
}

// Subscribe adds an EventHandler to the emitter's subscription list. When an event is
// published, the callback is invoked with the event data.
func (e *EventEmitter[T]) Subscribe(callback EventHandler[T]) {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()
	e.subscriptions = append(e.subscriptions, callback)
}

// Publish emits the provided event by calling every subscribed EventHandler, in
// subscription order.
func (e *EventEmitter[T]) Publish(event T) {
	e.subscriptionsLock.RLock()
	callbacks := make([]EventHandler[T], len(e.subscriptions))
	copy(callbacks, e.subscriptions)
	e.subscriptionsLock.RUnlock()

	for _, callback := range callbacks {
		callback(event)
	}
}
