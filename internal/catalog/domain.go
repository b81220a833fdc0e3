// internal/catalog/domain.go
package catalog

import "errors"

var (
	ErrDuplicateItem = errors.New("item already registered")
	ErrItemNotFound  = errors.New("item not found")
)

// Item represents a single lendable unit, identified by an ISBN-like ID.
type Item struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Available bool   `json:"available"`
}

// EventItemRegistered is the notification type for ItemRegisteredEvent.
const EventItemRegistered = "ItemRegistered"

// ItemRegisteredEvent is published when a new item enters the catalog.
type ItemRegisteredEvent struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}
