// internal/library/errors.go
package library

import (
	"lendledger/internal/catalog"
	"lendledger/internal/circulation"
	"lendledger/internal/membership"
)

// Errors returned by Service, re-exported so callers need only this package.
var (
	ErrDuplicateItem       = catalog.ErrDuplicateItem
	ErrItemNotFound        = catalog.ErrItemNotFound
	ErrDuplicateBorrower   = membership.ErrDuplicateBorrower
	ErrBorrowerNotFound    = membership.ErrBorrowerNotFound
	ErrItemUnavailable     = circulation.ErrItemUnavailable
	ErrNotBorrowedByMember = circulation.ErrNotBorrowedByMember
	ErrInconsistentState   = circulation.ErrInconsistentState
)
