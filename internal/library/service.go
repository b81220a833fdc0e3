// internal/library/service.go
package library

import (
	"context"

	"lendledger/internal/catalog"
	"lendledger/internal/membership"
	"lendledger/internal/notify"
)

// Service defines the single entry point to the checkout ledger.
type Service interface {
	RegisterItem(ctx context.Context, item catalog.Item) error
	RegisterBorrower(ctx context.Context, borrower membership.Borrower) error
	Borrow(ctx context.Context, borrowerID, itemID string) error
	Return(ctx context.Context, borrowerID, itemID string) error

	GetItem(ctx context.Context, itemID string) (catalog.Item, error)
	GetBorrower(ctx context.Context, borrowerID string) (membership.Borrower, error)
	ListAllItems(ctx context.Context) []catalog.Item
	ListAvailableItems(ctx context.Context) []catalog.Item
	ListBorrowers(ctx context.Context) []membership.Borrower
	ItemsHeldBy(ctx context.Context, borrowerID string) ([]catalog.Item, error)
	Verify(ctx context.Context) error

	// Subscribe registers a handler for events of successful operations.
	// Events are published after the transaction commits, so one caller sees
	// its own events in call order while events of concurrent transactions
	// may interleave. Handlers must be safe for concurrent use.
	Subscribe(handler notify.Handler) notify.Subscription
	Unsubscribe(sub notify.Subscription) bool
}
