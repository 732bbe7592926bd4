package wishlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

func TestStore_Toggle(t *testing.T) {
	s := NewStore()
	p := catalog.Product{ID: "p1", Name: "Silk Midi Dress"}

	present := s.Toggle(p)
	assert.True(t, present)
	assert.True(t, s.Contains("p1"))

	present = s.Toggle(p)
	assert.False(t, present)
	assert.False(t, s.Contains("p1"))
}

func TestStore_ToggleIsInvolution(t *testing.T) {
	s := NewStore()
	p := catalog.Product{ID: "p1"}

	for range 4 {
		s.Toggle(p)
	}
	assert.False(t, s.Contains("p1"), "even number of toggles restores original state")

	for range 3 {
		s.Toggle(p)
	}
	assert.True(t, s.Contains("p1"))
}

func TestStore_DeduplicatesByProductID(t *testing.T) {
	s := NewStore()

	s.Toggle(catalog.Product{ID: "p1", Name: "first"})
	s.Toggle(catalog.Product{ID: "p2"})

	require.Equal(t, 2, s.Len())

	// Toggling p1 again removes it regardless of the other fields.
	s.Toggle(catalog.Product{ID: "p1", Name: "different snapshot"})
	assert.Equal(t, 1, s.Len())
	assert.False(t, s.Contains("p1"))
}

func TestStore_RemoveAndClear(t *testing.T) {
	s := NewStore()
	s.Toggle(catalog.Product{ID: "p1"})
	s.Toggle(catalog.Product{ID: "p2"})

	s.Remove("p1")
	assert.False(t, s.Contains("p1"))
	assert.True(t, s.Contains("p2"))

	// Absent id is a no-op.
	s.Remove("missing")
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestStore_ItemsKeepInsertionOrder(t *testing.T) {
	s := NewStore()
	s.Toggle(catalog.Product{ID: "b"})
	s.Toggle(catalog.Product{ID: "a"})
	s.Toggle(catalog.Product{ID: "c"})

	items := s.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}
