package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPublishReachesSubscribersInOrder ensures every subscriber sees every published
// event, in subscription order.
func TestPublishReachesSubscribersInOrder(t *testing.T) {
	emitter := &EventEmitter[int]{}

	var order []string
	emitter.Subscribe(func(event int) {
		order = append(order, "first")
		assert.EqualValues(t, 7, event)
	})
	emitter.Subscribe(func(event int) {
		order = append(order, "second")
	})

	emitter.Publish(7)
	assert.EqualValues(t, []string{"first", "second"}, order)
}

// TestEmittersAreIndependent ensures separate emitters of the same event type do not
// share subscribers.
func TestEmittersAreIndependent(t *testing.T) {
	first := &EventEmitter[int]{}
	second := &EventEmitter[int]{}

	var firstCount, secondCount int
	first.Subscribe(func(int) { firstCount++ })
	second.Subscribe(func(int) { secondCount++ })

	first.Publish(1)
	first.Publish(2)
	second.Publish(3)

	assert.EqualValues(t, 2, firstCount)
	assert.EqualValues(t, 1, secondCount)
}

// TestPublishWithoutSubscribers ensures publishing to an empty emitter is a no-op.
func TestPublishWithoutSubscribers(t *testing.T) {
	emitter := &EventEmitter[string]{}
	emitter.Publish("ignored")
}

// TestSubscribeDuringPublish ensures a handler may subscribe new handlers without
// affecting the in-flight publication.
func TestSubscribeDuringPublish(t *testing.T) {
	emitter := &EventEmitter[struct{}]{}

	var calls int
	emitter.Subscribe(func(struct{}) {
		calls++
		if calls == 1 {
			emitter.Subscribe(func(struct{}) { calls += 10 })
		}
	})

	emitter.Publish(struct{}{})
	assert.EqualValues(t, 1, calls)

	emitter.Publish(struct{}{})
	assert.EqualValues(t, 12, calls)
}
