package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Store holds the line items of a single shopper. It keeps insertion order so
// the cart renders in the order items were added.
//
// A store belongs to one session, but HTTP handlers may touch it from
// concurrent requests, so all access goes through a mutex. Aggregates
// (Subtotal, Count) are computed on demand from current state; there is no
// cached derived state to go stale.
type Store struct {
	mu    sync.Mutex
	items []LineItem
}

// NewStore returns an empty cart.
func NewStore() *Store {
	return &Store{}
}

// Add inserts item into the cart. If a line item with the same
// (product, size, color) key exists its quantity is incremented by
// item.Quantity; otherwise the item is appended. Items with a non-positive
// quantity are rejected as a no-op.
func (s *Store) Add(item LineItem) {
	if item.Quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := item.Key()
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += item.Quantity
			return
		}
	}
	s.items = append(s.items, item)
}

// Remove deletes the line item with the given key. Removing an absent item
// is a no-op.
func (s *Store) Remove(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() == key {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// UpdateQuantity replaces the quantity of the line item with the given key.
// Quantities below 1 are rejected: the item keeps its current quantity and
// stays in the cart (removal is always explicit). Updating an absent item is
// a no-op.
func (s *Store) UpdateQuantity(key Key, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity = quantity
			return
		}
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
}

// Replace swaps the cart contents wholesale. Used when hydrating a session
// from a persisted snapshot; last write wins.
func (s *Store) Replace(items []LineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]LineItem(nil), items...)
}

// Items returns a copy of the current line items in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LineItem(nil), s.items...)
}

// Subtotal returns the sum of unit price times quantity over all line items.
// No discount is applied here; discounts are checkout-scoped.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := decimal.Zero
	for _, item := range s.items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// Count returns the total quantity across all line items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
