package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInRegistrationOrder(t *testing.T) {
	n := NewNotifier()
	var calls []string

	n.Subscribe(func(_ context.Context, e Event) { calls = append(calls, "first:"+e.Type) })
	n.Subscribe(func(_ context.Context, e Event) { calls = append(calls, "second:"+e.Type) })

	n.Publish(context.Background(), Event{Type: "ItemBorrowed"})

	assert.Equal(t, []string{"first:ItemBorrowed", "second:ItemBorrowed"}, calls)
}

func TestUnsubscribeByHandle(t *testing.T) {
	n := NewNotifier()
	count := 0
	handler := func(context.Context, Event) { count++ }

	first := n.Subscribe(handler)
	second := n.Subscribe(handler)
	assert.NotEqual(t, first.ID(), second.ID())

	assert.True(t, n.Unsubscribe(first))
	assert.False(t, n.Unsubscribe(first), "second removal of the same handle")

	n.Publish(context.Background(), Event{Type: "ItemReturned"})
	assert.Equal(t, 1, count, "the other subscription of the same handler stays")
	assert.Equal(t, 1, n.Len())
}

func TestUnsubscribeUnknownHandle(t *testing.T) {
	n := NewNotifier()
	assert.False(t, n.Unsubscribe(Subscription{}))
}

func TestHandlerCanUnsubscribeItselfDuringPublish(t *testing.T) {
	n := NewNotifier()
	var calls []string
	var self Subscription

	self = n.Subscribe(func(context.Context, Event) {
		calls = append(calls, "once")
		n.Unsubscribe(self)
	})
	n.Subscribe(func(context.Context, Event) { calls = append(calls, "always") })

	n.Publish(context.Background(), Event{Type: "a"})
	n.Publish(context.Background(), Event{Type: "b"})

	assert.Equal(t, []string{"once", "always", "always"}, calls)
}
