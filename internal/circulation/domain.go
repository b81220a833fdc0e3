// internal/circulation/domain.go
package circulation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrItemUnavailable     = errors.New("item is not available")
	ErrNotBorrowedByMember = errors.New("item is not held by this borrower")
	ErrInconsistentState   = errors.New("ledger and item availability disagree")
)

const (
	StatusActive   = "active"
	StatusReturned = "returned"
)

const (
	EventItemBorrowed = "ItemBorrowed"
	EventItemReturned = "ItemReturned"
)

// Checkout represents an item held by a borrower.
type Checkout struct {
	ID         uuid.UUID `json:"id"`
	BorrowerID string    `json:"borrower_id"`
	ItemID     string    `json:"item_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
	ReturnedAt time.Time `json:"returned_at,omitzero"`
	Status     string    `json:"status"`
}

// ItemBorrowedEvent is published when an item is borrowed.
type ItemBorrowedEvent struct {
	CheckoutID uuid.UUID `json:"checkout_id"`
	BorrowerID string    `json:"borrower_id"`
	ItemID     string    `json:"item_id"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

// ItemReturnedEvent is published when an item is returned.
type ItemReturnedEvent struct {
	CheckoutID uuid.UUID `json:"checkout_id"`
	BorrowerID string    `json:"borrower_id"`
	ItemID     string    `json:"item_id"`
	ReturnedAt time.Time `json:"returned_at"`
}
