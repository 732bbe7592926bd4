// Package wishlist implements the session-scoped wishlist: boolean
// membership by product id, toggled on and off.
package wishlist

import (
	"sync"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

// Store holds the wishlist of a single shopper. Entries are deduplicated by
// product id and keep insertion order.
type Store struct {
	mu    sync.Mutex
	items []catalog.Product
}

// NewStore returns an empty wishlist.
func NewStore() *Store {
	return &Store{}
}

// Toggle adds the product when absent and removes it when present. Calling
// it twice with the same product restores the original state.
// It reports whether the product is present after the call.
func (s *Store) Toggle(p catalog.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == p.ID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return false
		}
	}
	s.items = append(s.items, p)
	return true
}

// Contains reports whether the product with the given id is wishlisted.
func (s *Store) Contains(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == productID {
			return true
		}
	}
	return false
}

// Remove deletes the product with the given id. Absent ids are a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// Clear empties the wishlist.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Items returns a copy of the wishlisted products in insertion order.
func (s *Store) Items() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.items...)
}

// Len returns the number of wishlisted products.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
