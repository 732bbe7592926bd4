package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
// Colors and Sizes list the variants a shopper can select; both are non-empty
// for purchasable products.
type Product struct {
	ID             string
	Name           string
	Description    string
	Price          decimal.Decimal
	CompareAtPrice *decimal.Decimal
	ImageURL       string
	ImageURLs      []string
	Category       string
	Subcategory    string
	Colors         []string
	Sizes          []string
	Rating         float64
	ReviewCount    int
	Featured       bool
	Trending       bool
	NewArrival     bool
	InStock        bool
	CreatedAt      time.Time
}

// Repository defines persistence operations for the product catalog.
// Filtering and sorting happen in-process over the full working set
// (see FilterAndSort); the repository only moves records.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
