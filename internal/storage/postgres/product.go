package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/luxewear/storefront/internal/domain/catalog"
)

const (
	productColumns = `id, name, description, price, compare_at_price, image_url, image_urls,
		category, subcategory, colors, sizes, rating, review_count,
		featured, trending, new_arrival, in_stock, created_at`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY created_at, id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	createProductSQL = `INSERT INTO products (id, name, description, price, compare_at_price,
		image_url, image_urls, category, subcategory, colors, sizes, rating, review_count,
		featured, trending, new_arrival, in_stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4,
		compare_at_price = $5, image_url = $6, image_urls = $7, category = $8,
		subcategory = $9, colors = $10, sizes = $11, rating = $12, review_count = $13,
		featured = $14, trending = $15, new_arrival = $16, in_stock = $17
		WHERE id = $1`

	upsertProductSQL = createProductSQL + ` ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
			compare_at_price = EXCLUDED.compare_at_price, image_url = EXCLUDED.image_url,
			image_urls = EXCLUDED.image_urls, category = EXCLUDED.category,
			subcategory = EXCLUDED.subcategory, colors = EXCLUDED.colors, sizes = EXCLUDED.sizes,
			rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
			featured = EXCLUDED.featured, trending = EXCLUDED.trending,
			new_arrival = EXCLUDED.new_arrival, in_stock = EXCLUDED.in_stock`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ catalog.Repository = (*ProductRepository)(nil)

// ProductRepository implements catalog.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns the whole catalog in insertion order. Filtering and sorting
// happen in-process; the repository hands over the full working set.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
// Returns catalog.ErrNotFound when no matching product exists.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// Create inserts a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.CompareAtPrice,
		p.ImageURL, p.ImageURLs, p.Category, p.Subcategory, p.Colors, p.Sizes,
		p.Rating, p.ReviewCount, p.Featured, p.Trending, p.NewArrival, p.InStock,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// Upsert inserts or replaces a product, used by the seed tooling so re-runs
// are idempotent.
func (r *ProductRepository) Upsert(ctx context.Context, p *catalog.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.CompareAtPrice,
		p.ImageURL, p.ImageURLs, p.Category, p.Subcategory, p.Colors, p.Sizes,
		p.Rating, p.ReviewCount, p.Featured, p.Trending, p.NewArrival, p.InStock,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting product %q: %w", p.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of an existing product.
// Returns catalog.ErrNotFound when the product does not exist.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Price, p.CompareAtPrice,
		p.ImageURL, p.ImageURLs, p.Category, p.Subcategory, p.Colors, p.Sizes,
		p.Rating, p.ReviewCount, p.Featured, p.Trending, p.NewArrival, p.InStock,
	)
	if err != nil {
		return fmt.Errorf("updating product %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a product. Returns catalog.ErrNotFound when it does not exist.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CompareAtPrice,
		&p.ImageURL, &p.ImageURLs, &p.Category, &p.Subcategory, &p.Colors, &p.Sizes,
		&p.Rating, &p.ReviewCount,
		&p.Featured, &p.Trending, &p.NewArrival, &p.InStock, &p.CreatedAt,
	)
	return p, err
}
