package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

const (
	listReviewsSQL = `SELECT id, product_id, author, rating, comment, created_at
		FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id`

	createReviewSQL = `INSERT INTO reviews (id, product_id, author, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	refreshProductRatingSQL = `UPDATE products SET
		rating       = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE product_id = $1),
		review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1)
		WHERE id = $1`
)

var _ catalog.ReviewRepository = (*ReviewRepository)(nil)

// ReviewRepository implements catalog.ReviewRepository backed by PostgreSQL.
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository returns a ReviewRepository that uses the given pool.
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByProduct returns the reviews for a product, newest first.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]catalog.Review, error) {
	rows, err := r.pool.Query(ctx, listReviewsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for %q: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// Create inserts a review and refreshes the product's aggregate rating and
// review count in the same transaction.
func (r *ReviewRepository) Create(ctx context.Context, rev *catalog.Review) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, createReviewSQL,
			rev.ID, rev.ProductID, rev.Author, rev.Rating, rev.Comment, rev.CreatedAt,
		); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, refreshProductRatingSQL, rev.ProductID)
		return err
	})
	if err != nil {
		return fmt.Errorf("creating review for %q: %w", rev.ProductID, err)
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (catalog.Review, error) {
	var rev catalog.Review
	err := row.Scan(&rev.ID, &rev.ProductID, &rev.Author, &rev.Rating, &rev.Comment, &rev.CreatedAt)
	return rev, err
}
