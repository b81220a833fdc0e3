package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMarksItemAvailable(t *testing.T) {
	r := NewRegistry()

	item, err := r.Register(Item{ID: "1234567890", Title: "1984", Author: "George Orwell", Available: false})
	require.NoError(t, err)
	assert.True(t, item.Available)

	got, err := r.Get("1234567890")
	require.NoError(t, err)
	assert.Equal(t, "1984", got.Title)
	assert.True(t, got.Available)
}

func TestRegisterRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(Item{ID: "I1", Title: "1984"})
	require.NoError(t, err)

	_, err = r.Register(Item{ID: "I1", Title: "Another"})
	assert.ErrorIs(t, err, ErrDuplicateItem)

	got, err := r.Get("I1")
	require.NoError(t, err)
	assert.Equal(t, "1984", got.Title, "original item must be untouched")
	assert.Equal(t, 1, r.Len())
}

func TestGetUnknownItem(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register(Item{ID: "I1", Title: "1984"})
	require.NoError(t, err)

	got, err := r.Get("I1")
	require.NoError(t, err)
	got.Available = false
	got.Title = "changed"

	again, err := r.Get("I1")
	require.NoError(t, err)
	assert.True(t, again.Available)
	assert.Equal(t, "1984", again.Title)
}

func TestListAvailableIsSnapshot(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"I1", "I2", "I3"} {
		_, err := r.Register(Item{ID: id})
		require.NoError(t, err)
	}
	require.NoError(t, r.SetAvailability("I2", false))

	available := r.ListAvailable()
	require.Len(t, available, 2)
	assert.Equal(t, "I1", available[0].ID)
	assert.Equal(t, "I3", available[1].ID)

	require.NoError(t, r.SetAvailability("I1", false))
	assert.Len(t, available, 2, "earlier snapshot must not change")
	assert.Len(t, r.ListAvailable(), 1)

	all := r.List()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"I1", "I2", "I3"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestSetAvailabilityUnknownItem(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.SetAvailability("missing", false), ErrItemNotFound)
}
