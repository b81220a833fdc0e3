// internal/notify/notifier.go
package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a domain notification delivered to subscribers.
type Event struct {
	Type       string    `json:"type"`
	Data       any       `json:"data"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Handler receives published events.
type Handler func(ctx context.Context, event Event)

// Subscription identifies one registered handler. Two subscriptions of the
// same function are distinct.
type Subscription struct {
	id uuid.UUID
}

// ID returns the unique handle of the subscription.
func (s Subscription) ID() uuid.UUID {
	return s.id
}

type subscriber struct {
	id      uuid.UUID
	handler Handler
}

// Notifier fans events out to subscribers synchronously, in registration order.
type Notifier struct {
	mu          sync.RWMutex
	subscribers []subscriber
}

// NewNotifier creates a notifier with no subscribers.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler and returns its handle.
func (n *Notifier) Subscribe(handler Handler) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	sub := subscriber{id: uuid.New(), handler: handler}
	n.subscribers = append(n.subscribers, sub)
	return Subscription{id: sub.id}
}

// Unsubscribe removes the handler behind the handle. It reports false if the
// handle is unknown or was already removed.
func (n *Notifier) Unsubscribe(sub Subscription) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	idx := slices.IndexFunc(n.subscribers, func(s subscriber) bool { return s.id == sub.id })
	if idx < 0 {
		return false
	}
	n.subscribers = slices.Delete(slices.Clone(n.subscribers), idx, idx+1)
	return true
}

// Publish delivers the event to every current subscriber and returns once all
// of them have run. Handlers may subscribe or unsubscribe while being called;
// such changes apply to the next Publish. Concurrent calls to Publish do not
// order their events relative to each other.
func (n *Notifier) Publish(ctx context.Context, event Event) {
	n.mu.RLock()
	subscribers := n.subscribers
	n.mu.RUnlock()

	for _, s := range subscribers {
		s.handler(ctx, event)
	}
}

// Len reports the number of active subscriptions.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}
