package catalog

import (
	"context"
	"time"
)

// Review is a shopper-submitted product rating with an optional comment.
type Review struct {
	ID        string
	ProductID string
	Author    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// ValidRating reports whether r is on the 1 to 5 star scale.
func ValidRating(r int) bool {
	return r >= 1 && r <= 5
}

// ReviewRepository persists product reviews. Create also refreshes the
// reviewed product's aggregate rating and review count, so catalog listings
// reflect new reviews without a separate write.
type ReviewRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]Review, error)
	Create(ctx context.Context, rev *Review) error
}
