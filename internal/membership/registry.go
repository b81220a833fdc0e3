// internal/membership/registry.go
package membership

import (
	"fmt"
	"sync"
)

// Registry holds every known borrower. Borrowers are immutable once registered.
type Registry struct {
	mu        sync.RWMutex
	borrowers map[string]Borrower
	order     []string
}

// NewRegistry creates an empty borrower registry.
func NewRegistry() *Registry {
	return &Registry{
		borrowers: make(map[string]Borrower),
	}
}

// Register adds a borrower, failing if the member ID is taken.
func (r *Registry) Register(borrower Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.borrowers[borrower.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBorrower, borrower.ID)
	}
	r.borrowers[borrower.ID] = borrower
	r.order = append(r.order, borrower.ID)
	return nil
}

// Get retrieves a borrower by member ID.
func (r *Registry) Get(id string) (Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	borrower, ok := r.borrowers[id]
	if !ok {
		return Borrower{}, fmt.Errorf("%w: %s", ErrBorrowerNotFound, id)
	}
	return borrower, nil
}

// List returns all borrowers in registration order.
func (r *Registry) List() []Borrower {
	r.mu.RLock()
	defer r.mu.RUnlock()

	borrowers := make([]Borrower, 0, len(r.order))
	for _, id := range r.order {
		borrowers = append(borrowers, r.borrowers[id])
	}
	return borrowers
}
