// Package cart implements the session-scoped shopping cart: a keyed
// collection of line items with merge-on-add semantics and synchronously
// derived aggregates.
package cart

import "github.com/shopspring/decimal"

// Key identifies a line item. Two additions with the same key merge by
// summing quantity; a different size or color yields a distinct line item
// even for the same product.
type Key struct {
	ProductID string
	Size      string
	Color     string
}

// LineItem is one cart entry. UnitPrice, Name and ImageURL are snapshots
// captured at add time; the cart never re-validates them against the live
// catalog.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageURL  string          `json:"imageUrl"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

// Key returns the identity of this line item.
func (li LineItem) Key() Key {
	return Key{ProductID: li.ProductID, Size: li.Size, Color: li.Color}
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}
