package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Borrower{ID: "M001", Name: "Alice"}))

	got, err := r.Get("M001")
	require.NoError(t, err)
	assert.Equal(t, Borrower{ID: "M001", Name: "Alice"}, got)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Borrower{ID: "M001", Name: "Alice"}))

	err := r.Register(Borrower{ID: "M001", Name: "Mallory"})
	assert.ErrorIs(t, err, ErrDuplicateBorrower)

	got, err := r.Get("M001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestGetUnknown(t *testing.T) {
	_, err := NewRegistry().Get("nobody")
	assert.ErrorIs(t, err, ErrBorrowerNotFound)
}

func TestListKeepsRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Borrower{ID: "M002", Name: "Bob"}))
	require.NoError(t, r.Register(Borrower{ID: "M001", Name: "Alice"}))

	assert.Equal(t, []Borrower{{ID: "M002", Name: "Bob"}, {ID: "M001", Name: "Alice"}}, r.List())
}
