// internal/catalog/registry.go
package catalog

import (
	"fmt"
	"sync"
)

// Registry holds every known item and its availability flag.
// Availability is changed only by the circulation ledger.
type Registry struct {
	mu    sync.RWMutex
	items map[string]*Item
	order []string
}

// NewRegistry creates an empty item registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[string]*Item),
	}
}

// Register stores a new item as available.
func (r *Registry) Register(item Item) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[item.ID]; exists {
		return Item{}, fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}

	stored := item
	stored.Available = true
	r.items[item.ID] = &stored
	r.order = append(r.order, item.ID)

	return stored, nil
}

// Get returns a copy of the item with the given ID.
func (r *Registry) Get(id string) (Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return *item, nil
}

// List returns a snapshot of all items in registration order.
func (r *Registry) List() []Item {
	return r.collect(func(Item) bool { return true })
}

// ListAvailable returns a snapshot of the items nobody currently holds.
func (r *Registry) ListAvailable() []Item {
	return r.collect(func(item Item) bool { return item.Available })
}

// SetAvailability flips the cached availability flag of an item.
func (r *Registry) SetAvailability(id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	item.Available = available
	return nil
}

// Len reports how many items are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) collect(keep func(Item) bool) []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		item := *r.items[id]
		if keep(item) {
			items = append(items, item)
		}
	}
	return items
}
