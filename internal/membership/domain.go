// internal/membership/domain.go
package membership

import "errors"

var (
	ErrDuplicateBorrower = errors.New("borrower already registered")
	ErrBorrowerNotFound  = errors.New("borrower not found")
)

// Borrower represents a library member allowed to hold items.
type Borrower struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const EventBorrowerRegistered = "BorrowerRegistered"

// BorrowerRegisteredEvent is published when a new borrower registers.
type BorrowerRegisteredEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
